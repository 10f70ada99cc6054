package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

func TestService_History(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.CascadeTransactional)

	for i := 0; i < 3; i++ {
		op, err := f.db.CreateOperation(ctx, inventory.Operation{
			Operation: fmt.Sprintf("Op%d", i), UserID: user, StartedAt: t0,
		})
		if err != nil {
			t.Fatalf("CreateOperation() error = %v", err)
		}
		if err := f.db.FinishOperation(ctx, op.ID, inventory.StatusSuccess, t0); err != nil {
			t.Fatalf("FinishOperation() error = %v", err)
		}
	}

	ops, err := f.svc.History(ctx, 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("len(History(2)) = %d, want 2", len(ops))
	}
	if ops[0].Operation != "Op2" || ops[1].Operation != "Op1" {
		t.Errorf("History() = %s, %s; want newest first", ops[0].Operation, ops[1].Operation)
	}
	if ops[0].Status != inventory.StatusSuccess || ops[0].FinishedAt == nil {
		t.Errorf("History()[0] = %+v, want a finished success", ops[0])
	}

	all, _ := f.svc.History(ctx, 0)
	if len(all) != 3 {
		t.Errorf("len(History(0)) = %d, want 3", len(all))
	}
}

func TestStatusFor(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, inventory.StatusSuccess},
		{"plain error", boom, inventory.StatusError},
		{"rolled back", &inventory.CascadeError{Failed: model.KindIPRange, RolledBack: true, Err: boom}, inventory.StatusRolledBack},
		{
			"partial",
			fmt.Errorf("wrapped: %w", &inventory.CascadeError{Completed: []inventory.KindCount{{Kind: model.KindEquipment, Count: 1}}, Failed: model.KindConnection, Err: boom}),
			inventory.StatusPartial,
		},
		{"failed before any delete", &inventory.CascadeError{Failed: model.KindEquipment, Err: boom}, inventory.StatusError},
		{
			"only empty kinds completed",
			&inventory.CascadeError{Completed: []inventory.KindCount{{Kind: model.KindEquipment, Count: 0}}, Failed: model.KindSite, Err: boom},
			inventory.StatusError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inventory.StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
