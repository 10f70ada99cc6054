package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

// FaultOp names a repository method that FaultStore can fail.
type FaultOp string

const (
	OpInsert       FaultOp = "Insert"
	OpUpdate       FaultOp = "Update"
	OpDeleteByID   FaultOp = "DeleteByID"
	OpFetchBySite  FaultOp = "FetchBySite"
	OpDeleteBySite FaultOp = "DeleteBySite"
	OpSetSite      FaultOp = "SetSite"
)

type faultState struct {
	mu     sync.Mutex
	faults map[string]error
	calls  []string
}

// FaultStore wraps an inventory.Store, failing chosen repository calls and
// recording every write and site query it forwards. Calls are recorded as
// "kind.Method", plus "tx.begin", "tx.commit" and "tx.rollback" around
// WithinTx. Stores passed to WithinTx callbacks share the same faults and
// recording.
type FaultStore struct {
	inventory.Store
	state *faultState
}

// NewFaultStore wraps store.
func NewFaultStore(store inventory.Store) *FaultStore {
	return &FaultStore{Store: store, state: &faultState{faults: map[string]error{}}}
}

// Fail makes every subsequent call of op on kind return err.
func (f *FaultStore) Fail(kind model.Kind, op FaultOp, err error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	f.state.faults[callName(kind, op)] = err
}

// Calls returns the recorded calls in order.
func (f *FaultStore) Calls() []string {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	return append([]string(nil), f.state.calls...)
}

// Reset clears the recorded calls. Faults stay in place.
func (f *FaultStore) Reset() {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	f.state.calls = nil
}

func callName(kind model.Kind, op FaultOp) string {
	return fmt.Sprintf("%s.%s", kind, op)
}

func (f *FaultStore) record(name string) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	f.state.calls = append(f.state.calls, name)
}

func (f *FaultStore) call(kind model.Kind, op FaultOp) error {
	name := callName(kind, op)
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	f.state.calls = append(f.state.calls, name)
	return f.state.faults[name]
}

func (f *FaultStore) Sites() inventory.Repository[model.Site] {
	return siteRepo{Repository: f.Store.Sites(), f: f}
}

func (f *FaultStore) Equipment() inventory.DependentRepository[model.Equipment] {
	return dependentRepo[model.Equipment]{DependentRepository: f.Store.Equipment(), f: f, kind: model.KindEquipment}
}

func (f *FaultStore) Connections() inventory.DependentRepository[model.NetworkConnection] {
	return dependentRepo[model.NetworkConnection]{DependentRepository: f.Store.Connections(), f: f, kind: model.KindConnection}
}

func (f *FaultStore) IPRanges() inventory.DependentRepository[model.IPRange] {
	return dependentRepo[model.IPRange]{DependentRepository: f.Store.IPRanges(), f: f, kind: model.KindIPRange}
}

func (f *FaultStore) WithinTx(ctx context.Context, fn func(tx inventory.Store) error) error {
	f.record("tx.begin")
	err := f.Store.WithinTx(ctx, func(tx inventory.Store) error {
		return fn(&FaultStore{Store: tx, state: f.state})
	})
	if err != nil {
		f.record("tx.rollback")
		return err
	}
	f.record("tx.commit")
	return nil
}

type siteRepo struct {
	inventory.Repository[model.Site]
	f *FaultStore
}

func (r siteRepo) Insert(ctx context.Context, v model.Site) (model.Site, error) {
	if err := r.f.call(model.KindSite, OpInsert); err != nil {
		return model.Site{}, err
	}
	return r.Repository.Insert(ctx, v)
}

func (r siteRepo) Update(ctx context.Context, id string, patch model.Patch, at time.Time) (model.Site, error) {
	if err := r.f.call(model.KindSite, OpUpdate); err != nil {
		return model.Site{}, err
	}
	return r.Repository.Update(ctx, id, patch, at)
}

func (r siteRepo) DeleteByID(ctx context.Context, id string) error {
	if err := r.f.call(model.KindSite, OpDeleteByID); err != nil {
		return err
	}
	return r.Repository.DeleteByID(ctx, id)
}

type dependentRepo[T model.DependentRecord] struct {
	inventory.DependentRepository[T]
	f    *FaultStore
	kind model.Kind
}

func (r dependentRepo[T]) Insert(ctx context.Context, v T) (T, error) {
	if err := r.f.call(r.kind, OpInsert); err != nil {
		var zero T
		return zero, err
	}
	return r.DependentRepository.Insert(ctx, v)
}

func (r dependentRepo[T]) Update(ctx context.Context, id string, patch model.Patch, at time.Time) (T, error) {
	if err := r.f.call(r.kind, OpUpdate); err != nil {
		var zero T
		return zero, err
	}
	return r.DependentRepository.Update(ctx, id, patch, at)
}

func (r dependentRepo[T]) DeleteByID(ctx context.Context, id string) error {
	if err := r.f.call(r.kind, OpDeleteByID); err != nil {
		return err
	}
	return r.DependentRepository.DeleteByID(ctx, id)
}

func (r dependentRepo[T]) FetchBySite(ctx context.Context, siteID string) ([]T, error) {
	if err := r.f.call(r.kind, OpFetchBySite); err != nil {
		return nil, err
	}
	return r.DependentRepository.FetchBySite(ctx, siteID)
}

func (r dependentRepo[T]) DeleteBySite(ctx context.Context, siteID string) (int64, error) {
	if err := r.f.call(r.kind, OpDeleteBySite); err != nil {
		return 0, err
	}
	return r.DependentRepository.DeleteBySite(ctx, siteID)
}

func (r dependentRepo[T]) SetSite(ctx context.Context, id, siteID string, at time.Time) (T, error) {
	if err := r.f.call(r.kind, OpSetSite); err != nil {
		var zero T
		return zero, err
	}
	return r.DependentRepository.SetSite(ctx, id, siteID, at)
}

var _ inventory.Store = (*FaultStore)(nil)
