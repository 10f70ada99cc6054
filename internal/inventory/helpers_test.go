package inventory_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"netinv/internal/database"
	"netinv/internal/inventory"
	"netinv/internal/model"
	"netinv/internal/objectstore"
	"netinv/internal/testutil"
)

const user = "ops@example.com"

var t0 = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	db      *database.SQLStore
	store   *testutil.FaultStore
	cache   *testutil.RecordingCache
	objects *objectstore.MemoryStore
	clock   *testutil.StubClock
	svc     *inventory.Service
}

func newFixture(t *testing.T, mode inventory.CascadeMode) *fixture {
	t.Helper()
	f := &fixture{
		db:      testutil.NewTestStore(t),
		cache:   &testutil.RecordingCache{},
		objects: testutil.NewTestObjectStore(),
		clock:   testutil.FixedClock(),
	}
	f.store = testutil.NewFaultStore(f.db)
	f.svc = inventory.NewService(f.store, f.objects, f.cache, nil, f.clock, testutil.NewStubIDGenerator(), mode)
	return f
}

func (f *fixture) site(t *testing.T, id string) model.Site {
	t.Helper()
	s, err := f.db.Sites().Insert(context.Background(), model.Site{ID: id, Name: "site " + id, CreatedAt: t0, UpdatedAt: t0, UserID: user})
	if err != nil {
		t.Fatalf("Insert(site %s) error = %v", id, err)
	}
	return s
}

func (f *fixture) equipment(t *testing.T, id, siteID string) model.Equipment {
	t.Helper()
	e, err := f.db.Equipment().Insert(context.Background(), model.Equipment{
		ID: id, Name: "sw-" + id, Type: "switch", Model: "EX2300", Manufacturer: "Juniper",
		Status: "active", SiteID: siteID, CreatedAt: t0, UpdatedAt: t0, UserID: user,
	})
	if err != nil {
		t.Fatalf("Insert(equipment %s) error = %v", id, err)
	}
	return e
}

func (f *fixture) connection(t *testing.T, id, siteID string) model.NetworkConnection {
	t.Helper()
	c, err := f.db.Connections().Insert(context.Background(), model.NetworkConnection{
		ID: id, SiteID: siteID, Type: "fiber", Provider: "Orange", Status: "active",
		CreatedAt: t0, UpdatedAt: t0, UserID: user,
	})
	if err != nil {
		t.Fatalf("Insert(connection %s) error = %v", id, err)
	}
	return c
}

func (f *fixture) ipRange(t *testing.T, id, siteID, cidr string) model.IPRange {
	t.Helper()
	r, err := f.db.IPRanges().Insert(context.Background(), model.IPRange{
		ID: id, SiteID: siteID, Range: cidr, CreatedAt: t0, UpdatedAt: t0, UserID: user,
	})
	if err != nil {
		t.Fatalf("Insert(ip range %s) error = %v", id, err)
	}
	return r
}

// populated creates site s1 with two records of every dependent kind, and
// one record of each kind on site s2.
func (f *fixture) populated(t *testing.T) {
	t.Helper()
	f.site(t, "s1")
	f.site(t, "s2")
	f.equipment(t, "e1", "s1")
	f.equipment(t, "e2", "s1")
	f.equipment(t, "e3", "s2")
	f.connection(t, "c1", "s1")
	f.connection(t, "c2", "s1")
	f.connection(t, "c3", "s2")
	f.ipRange(t, "r1", "s1", "10.0.1.0/24")
	f.ipRange(t, "r2", "s1", "10.0.2.0/24")
	f.ipRange(t, "r3", "s2", "10.0.3.0/24")
}

// countBySite returns the number of records of kind referencing siteID.
func (f *fixture) countBySite(t *testing.T, kind model.Kind, siteID string) int {
	t.Helper()
	ctx := context.Background()
	var n int
	var err error
	switch kind {
	case model.KindEquipment:
		var l []model.Equipment
		l, err = f.db.Equipment().FetchBySite(ctx, siteID)
		n = len(l)
	case model.KindConnection:
		var l []model.NetworkConnection
		l, err = f.db.Connections().FetchBySite(ctx, siteID)
		n = len(l)
	case model.KindIPRange:
		var l []model.IPRange
		l, err = f.db.IPRanges().FetchBySite(ctx, siteID)
		n = len(l)
	}
	if err != nil {
		t.Fatalf("FetchBySite(%s, %s) error = %v", kind, siteID, err)
	}
	return n
}

// writes filters recorded store calls down to the deletes and transaction
// boundaries.
func writes(calls []string) []string {
	var out []string
	for _, c := range calls {
		switch {
		case c == "tx.begin", c == "tx.commit", c == "tx.rollback":
			out = append(out, c)
		case strings.HasSuffix(c, ".DeleteBySite"), c == "sites.DeleteByID":
			out = append(out, c)
		}
	}
	return out
}
