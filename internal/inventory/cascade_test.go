package inventory_test

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"

	"netinv/internal/inventory"
	"netinv/internal/model"
	"netinv/internal/testutil"
)

var modes = []inventory.CascadeMode{inventory.CascadeTransactional, inventory.CascadeSequential}

var errUnavailable = errors.New("storage unavailable")

func TestService_CascadeDelete(t *testing.T) {
	ctx := context.Background()

	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			t.Run("removes the site and every dependent", func(t *testing.T) {
				f := newFixture(t, mode)
				f.populated(t)

				res, err := f.svc.CascadeDelete(ctx, "s1", user)
				if err != nil {
					t.Fatalf("CascadeDelete() error = %v", err)
				}

				want := []inventory.KindCount{
					{Kind: model.KindEquipment, Count: 2},
					{Kind: model.KindConnection, Count: 2},
					{Kind: model.KindIPRange, Count: 2},
				}
				if !reflect.DeepEqual(res.Deleted, want) {
					t.Errorf("Deleted = %v, want %v", res.Deleted, want)
				}
				for _, k := range model.DependentKinds {
					if n := f.countBySite(t, k, "s1"); n != 0 {
						t.Errorf("%s left on s1 = %d, want 0", k, n)
					}
					if n := f.countBySite(t, k, "s2"); n != 1 {
						t.Errorf("%s on s2 = %d, want 1", k, n)
					}
				}
				if _, err := f.db.Sites().FetchByID(ctx, "s1"); !errors.Is(err, inventory.ErrNotFound) {
					t.Errorf("FetchByID(s1) error = %v, want ErrNotFound", err)
				}
			})

			t.Run("deletes dependents before the site", func(t *testing.T) {
				f := newFixture(t, mode)
				f.populated(t)

				if _, err := f.svc.CascadeDelete(ctx, "s1", user); err != nil {
					t.Fatalf("CascadeDelete() error = %v", err)
				}

				want := []string{
					"equipment.DeleteBySite",
					"connections.DeleteBySite",
					"ip-ranges.DeleteBySite",
					"sites.DeleteByID",
				}
				if mode == inventory.CascadeTransactional {
					want = append(append([]string{"tx.begin"}, want...), "tx.commit")
				}
				if got := writes(f.store.Calls()); !reflect.DeepEqual(got, want) {
					t.Errorf("calls = %v, want %v", got, want)
				}
			})

			t.Run("site with equipment only", func(t *testing.T) {
				f := newFixture(t, mode)
				f.site(t, "s1")
				f.equipment(t, "e1", "s1")

				res, err := f.svc.CascadeDelete(ctx, "s1", user)
				if err != nil {
					t.Fatalf("CascadeDelete() error = %v", err)
				}

				if _, err := f.db.Equipment().FetchByID(ctx, "e1"); !errors.Is(err, inventory.ErrNotFound) {
					t.Errorf("FetchByID(e1) error = %v, want ErrNotFound", err)
				}
				if _, err := f.db.Sites().FetchByID(ctx, "s1"); !errors.Is(err, inventory.ErrNotFound) {
					t.Errorf("FetchByID(s1) error = %v, want ErrNotFound", err)
				}
				want := []inventory.KindCount{{Kind: model.KindEquipment, Count: 1}}
				if !reflect.DeepEqual(res.Deleted, want) {
					t.Errorf("Deleted = %v, want %v", res.Deleted, want)
				}
				calls := writes(f.store.Calls())
				if slices.Contains(calls, "connections.DeleteBySite") || slices.Contains(calls, "ip-ranges.DeleteBySite") {
					t.Errorf("calls = %v, want empty kinds skipped", calls)
				}
			})

			t.Run("site without dependents", func(t *testing.T) {
				f := newFixture(t, mode)
				f.site(t, "s1")

				res, err := f.svc.CascadeDelete(ctx, "s1", user)
				if err != nil {
					t.Fatalf("CascadeDelete() error = %v", err)
				}
				if len(res.Deleted) != 0 {
					t.Errorf("Deleted = %v, want none", res.Deleted)
				}
			})

			t.Run("missing site", func(t *testing.T) {
				f := newFixture(t, mode)

				_, err := f.svc.CascadeDelete(ctx, "nope", user)
				if !errors.Is(err, inventory.ErrNotFound) {
					t.Errorf("CascadeDelete() error = %v, want ErrNotFound", err)
				}
			})

			t.Run("requires an acting user", func(t *testing.T) {
				f := newFixture(t, mode)
				f.site(t, "s1")

				_, err := f.svc.CascadeDelete(ctx, "s1", "")
				if !errors.Is(err, inventory.ErrNoSession) {
					t.Errorf("CascadeDelete() error = %v, want ErrNoSession", err)
				}
			})

			t.Run("fetch failure deletes nothing", func(t *testing.T) {
				f := newFixture(t, mode)
				f.populated(t)
				f.store.Fail(model.KindIPRange, testutil.OpFetchBySite, errUnavailable)

				_, err := f.svc.CascadeDelete(ctx, "s1", user)
				if !errors.Is(err, errUnavailable) {
					t.Fatalf("CascadeDelete() error = %v, want %v", err, errUnavailable)
				}
				if got := writes(f.store.Calls()); len(got) != 0 {
					t.Errorf("calls = %v, want no deletes", got)
				}
				for _, k := range model.DependentKinds {
					if n := f.countBySite(t, k, "s1"); n != 2 {
						t.Errorf("%s on s1 = %d, want 2", k, n)
					}
				}
			})
		})
	}
}

func TestService_CascadeDelete_PartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.CascadeSequential)
	f.populated(t)
	f.store.Fail(model.KindConnection, testutil.OpDeleteBySite, errUnavailable)

	_, err := f.svc.CascadeDelete(ctx, "s1", user)
	if !errors.Is(err, inventory.ErrPartialCascade) {
		t.Fatalf("CascadeDelete() error = %v, want ErrPartialCascade", err)
	}
	if !errors.Is(err, errUnavailable) {
		t.Errorf("CascadeDelete() error = %v, want it to wrap %v", err, errUnavailable)
	}

	var cerr *inventory.CascadeError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *CascadeError", err)
	}
	if cerr.Failed != model.KindConnection {
		t.Errorf("Failed = %s, want %s", cerr.Failed, model.KindConnection)
	}
	if cerr.RolledBack {
		t.Error("RolledBack = true in sequential mode")
	}
	wantDone := []inventory.KindCount{{Kind: model.KindEquipment, Count: 2}}
	if !reflect.DeepEqual(cerr.Completed, wantDone) {
		t.Errorf("Completed = %v, want %v", cerr.Completed, wantDone)
	}

	if _, err := f.db.Sites().FetchByID(ctx, "s1"); err != nil {
		t.Errorf("site s1 should remain, FetchByID() error = %v", err)
	}
	if n := f.countBySite(t, model.KindEquipment, "s1"); n != 0 {
		t.Errorf("equipment on s1 = %d, want 0", n)
	}
	if n := f.countBySite(t, model.KindConnection, "s1"); n != 2 {
		t.Errorf("connections on s1 = %d, want 2", n)
	}
	if n := f.countBySite(t, model.KindIPRange, "s1"); n != 2 {
		t.Errorf("ip ranges on s1 = %d, want 2", n)
	}
	if slices.Contains(f.store.Calls(), "ip-ranges.DeleteBySite") {
		t.Error("workflow continued past the failed kind")
	}

	// Listings of the removed kind are stale; the others are not.
	invalidated := f.cache.Invalidated()
	if !slices.Contains(invalidated, inventory.SiteScopedTopic(model.KindEquipment, "s1")) {
		t.Errorf("invalidated = %v, want equipment of s1", invalidated)
	}
	if slices.Contains(invalidated, inventory.SiteScopedTopic(model.KindConnection, "s1")) {
		t.Errorf("invalidated = %v, want connections of s1 kept", invalidated)
	}

	ops, err := f.svc.History(ctx, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("len(History()) = %d, want 1", len(ops))
	}
	if ops[0].Operation != "CascadeDelete" || ops[0].Status != inventory.StatusPartial || ops[0].UserID != user {
		t.Errorf("operation = %+v", ops[0])
	}
	if !strings.Contains(ops[0].Parameters, "equipment=2") {
		t.Errorf("Parameters = %q, want the completed kinds", ops[0].Parameters)
	}
}

// racingStore empties the site through db right after its equipment has been
// fetched, as a concurrent cascade of the same site would.
type racingStore struct {
	inventory.Store
	db   inventory.Store
	once sync.Once
}

func (r *racingStore) Equipment() inventory.DependentRepository[model.Equipment] {
	return racingEquipment{DependentRepository: r.Store.Equipment(), r: r}
}

type racingEquipment struct {
	inventory.DependentRepository[model.Equipment]
	r *racingStore
}

func (e racingEquipment) FetchBySite(ctx context.Context, siteID string) ([]model.Equipment, error) {
	recs, err := e.DependentRepository.FetchBySite(ctx, siteID)
	e.r.once.Do(func() {
		e.r.db.Equipment().DeleteBySite(ctx, siteID)
		e.r.db.Sites().DeleteByID(ctx, siteID)
	})
	return recs, err
}

func TestService_CascadeDelete_ConcurrentlyEmptied(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.CascadeSequential)
	f.site(t, "s1")
	f.equipment(t, "e1", "s1")
	svc := inventory.NewService(&racingStore{Store: f.store, db: f.db}, f.objects, f.cache, nil, f.clock,
		testutil.NewStubIDGenerator(), inventory.CascadeSequential)

	_, err := svc.CascadeDelete(ctx, "s1", user)

	if !errors.Is(err, inventory.ErrNotFound) {
		t.Fatalf("CascadeDelete() error = %v, want ErrNotFound", err)
	}
	if errors.Is(err, inventory.ErrPartialCascade) {
		t.Errorf("CascadeDelete() error = %v: nothing was removed, so it is not partial", err)
	}
	var cerr *inventory.CascadeError
	if errors.As(err, &cerr) && len(cerr.Completed) != 0 {
		t.Errorf("Completed = %v, want none", cerr.Completed)
	}
	ops, _ := svc.History(ctx, 0)
	if len(ops) != 1 || ops[0].Status != inventory.StatusError {
		t.Errorf("History() = %+v, want one error entry", ops)
	}
}

func TestService_CascadeDelete_FirstKindFails(t *testing.T) {
	f := newFixture(t, inventory.CascadeSequential)
	f.populated(t)
	f.store.Fail(model.KindEquipment, testutil.OpDeleteBySite, errUnavailable)

	_, err := f.svc.CascadeDelete(context.Background(), "s1", user)

	var cerr *inventory.CascadeError
	if !errors.As(err, &cerr) {
		t.Fatalf("CascadeDelete() error = %v, want *CascadeError", err)
	}
	if errors.Is(err, inventory.ErrPartialCascade) {
		t.Error("nothing was removed, error should not be a partial cascade")
	}
	if len(cerr.Completed) != 0 {
		t.Errorf("Completed = %v, want none", cerr.Completed)
	}
	ops, _ := f.svc.History(context.Background(), 0)
	if len(ops) != 1 || ops[0].Status != inventory.StatusError {
		t.Errorf("History() = %+v, want one error entry", ops)
	}
}

func TestService_CascadeDelete_TransactionalRollback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.CascadeTransactional)
	f.populated(t)
	f.store.Fail(model.KindConnection, testutil.OpDeleteBySite, errUnavailable)

	_, err := f.svc.CascadeDelete(ctx, "s1", user)

	var cerr *inventory.CascadeError
	if !errors.As(err, &cerr) {
		t.Fatalf("CascadeDelete() error = %v, want *CascadeError", err)
	}
	if !cerr.RolledBack {
		t.Error("RolledBack = false, want true")
	}
	if errors.Is(err, inventory.ErrPartialCascade) {
		t.Error("rolled back cascade reported as partial")
	}
	if cerr.Failed != model.KindConnection {
		t.Errorf("Failed = %s, want %s", cerr.Failed, model.KindConnection)
	}

	if _, err := f.db.Sites().FetchByID(ctx, "s1"); err != nil {
		t.Errorf("site s1 should remain, FetchByID() error = %v", err)
	}
	for _, k := range model.DependentKinds {
		if n := f.countBySite(t, k, "s1"); n != 2 {
			t.Errorf("%s on s1 = %d, want 2 after rollback", k, n)
		}
	}
	if got := writes(f.store.Calls()); got[len(got)-1] != "tx.rollback" {
		t.Errorf("calls = %v, want a rollback", got)
	}
	if inv := f.cache.Invalidated(); len(inv) != 0 {
		t.Errorf("invalidated = %v, want nothing after rollback", inv)
	}

	ops, _ := f.svc.History(ctx, 0)
	if len(ops) != 1 || ops[0].Status != inventory.StatusRolledBack {
		t.Errorf("History() = %+v, want one rolled_back entry", ops)
	}
}

func TestService_CascadeDelete_Invalidations(t *testing.T) {
	f := newFixture(t, inventory.CascadeTransactional)
	f.populated(t)

	if _, err := f.svc.CascadeDelete(context.Background(), "s1", user); err != nil {
		t.Fatalf("CascadeDelete() error = %v", err)
	}

	got := f.cache.Invalidated()
	want := []inventory.Topic{inventory.SitesTopic, inventory.SiteTopic("s1")}
	for _, k := range model.DependentKinds {
		want = append(want, inventory.KindTopic(k), inventory.SiteScopedTopic(k, "s1"))
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("invalidated = %v, want %v", got, want)
	}
}

func TestService_CascadeDelete_RemovesSiteObjects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.CascadeTransactional)
	f.site(t, "s1")

	if _, err := f.svc.UploadFloorplan(ctx, "s1", inventory.ObjectUpload{Name: "plan.png", Body: strings.NewReader("png"), Size: 3}, user); err != nil {
		t.Fatalf("UploadFloorplan() error = %v", err)
	}
	if _, err := f.svc.AddRackPhoto(ctx, "s1", inventory.ObjectUpload{Name: "rack.jpg", Body: strings.NewReader("jpeg"), Size: 4}, user); err != nil {
		t.Fatalf("AddRackPhoto() error = %v", err)
	}

	res, err := f.svc.CascadeDelete(ctx, "s1", user)
	if err != nil {
		t.Fatalf("CascadeDelete() error = %v", err)
	}
	if res.ObjectsDeleted != 2 {
		t.Errorf("ObjectsDeleted = %d, want 2", res.ObjectsDeleted)
	}
	if f.objects.Len() != 0 {
		t.Errorf("objects left = %d, want 0", f.objects.Len())
	}
}
