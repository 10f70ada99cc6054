package inventory_test

import (
	"reflect"
	"testing"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

func TestInvalidations(t *testing.T) {
	eq := model.KindEquipment
	tests := []struct {
		name string
		op   inventory.Op
		ev   inventory.Event
		want []inventory.Topic
	}{
		{
			name: "create site",
			op:   inventory.OpCreateSite,
			ev:   inventory.Event{Kind: model.KindSite, SiteID: "s1"},
			want: []inventory.Topic{"sites", "site/s1"},
		},
		{
			name: "update site",
			op:   inventory.OpUpdateSite,
			ev:   inventory.Event{Kind: model.KindSite, SiteID: "s1"},
			want: []inventory.Topic{"sites", "site/s1"},
		},
		{
			name: "delete site with two kinds",
			op:   inventory.OpDeleteSite,
			ev:   inventory.Event{Kind: model.KindSite, SiteID: "s1", Kinds: []model.Kind{eq, model.KindIPRange}},
			want: []inventory.Topic{"sites", "site/s1", "equipment", "equipment/site/s1", "ip-ranges", "ip-ranges/site/s1"},
		},
		{
			name: "create assigned record",
			op:   inventory.OpCreateRecord,
			ev:   inventory.Event{Kind: eq, RecordID: "e1", SiteID: "s1", PrevSiteID: "s1"},
			want: []inventory.Topic{"equipment", "equipment/e1", "equipment/site/s1", "site/s1"},
		},
		{
			name: "create unassigned record",
			op:   inventory.OpCreateRecord,
			ev:   inventory.Event{Kind: eq, RecordID: "e1"},
			want: []inventory.Topic{"equipment", "equipment/e1", "unassigned/equipment"},
		},
		{
			name: "assign from the pool",
			op:   inventory.OpAssign,
			ev:   inventory.Event{Kind: eq, RecordID: "e1", SiteID: "s2"},
			want: []inventory.Topic{"equipment", "equipment/e1", "unassigned/equipment", "equipment/site/s2", "site/s2"},
		},
		{
			name: "move between sites",
			op:   inventory.OpAssign,
			ev:   inventory.Event{Kind: eq, RecordID: "e1", SiteID: "s2", PrevSiteID: "s1"},
			want: []inventory.Topic{"equipment", "equipment/e1", "equipment/site/s1", "site/s1", "equipment/site/s2", "site/s2"},
		},
		{
			name: "unassign",
			op:   inventory.OpUnassign,
			ev:   inventory.Event{Kind: eq, RecordID: "e1", PrevSiteID: "s1"},
			want: []inventory.Topic{"equipment", "equipment/e1", "equipment/site/s1", "site/s1", "unassigned/equipment"},
		},
		{
			name: "import",
			op:   inventory.OpImport,
			want: []inventory.Topic{"sites", "equipment", "unassigned/equipment", "connections", "unassigned/connections", "ip-ranges", "unassigned/ip-ranges"},
		},
		{
			name: "unknown op",
			op:   inventory.Op("reindex"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inventory.Invalidations(tt.op, tt.ev)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Invalidations() = %v, want %v", got, tt.want)
			}
		})
	}
}
