package app

import (
	"errors"
	"testing"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

func TestNewOperation(t *testing.T) {
	op := NewOperation("SiteDelete", "site=s1")

	if op.Operation != "SiteDelete" || op.Parameters != "site=s1" {
		t.Errorf("NewOperation() = %+v", op)
	}
	if op.Status != inventory.StatusSuccess {
		t.Errorf("Status = %q, want %q", op.Status, inventory.StatusSuccess)
	}
	if op.Persisted() {
		t.Error("Persisted() = true for a new operation")
	}
}

func TestOperation_Persisted(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want bool
	}{
		{name: "not persisted when ID is 0", id: 0, want: false},
		{name: "persisted when ID is positive", id: 1, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &Operation{ID: tt.id}
			if got := op.Persisted(); got != tt.want {
				t.Errorf("Persisted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOperation_Finish(t *testing.T) {
	partial := &inventory.CascadeError{
		SiteID:    "s1",
		Completed: []inventory.KindCount{{Kind: model.KindEquipment, Count: 2}},
		Failed:    model.KindConnection,
		Err:       errors.New("connection reset"),
	}

	tests := []struct {
		name string
		errs []error
		want string
	}{
		{name: "success", errs: []error{nil}, want: inventory.StatusSuccess},
		{name: "error", errs: []error{inventory.ErrNotFound}, want: inventory.StatusError},
		{name: "partial cascade", errs: []error{partial}, want: inventory.StatusPartial},
		{name: "failure is kept", errs: []error{inventory.ErrService, nil}, want: inventory.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation("Op", "")
			for _, err := range tt.errs {
				op.Finish(err)
			}
			if op.Status != tt.want {
				t.Errorf("Status = %q, want %q", op.Status, tt.want)
			}
		})
	}
}
