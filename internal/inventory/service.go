package inventory

import (
	"context"
	"fmt"

	"netinv/internal/model"
)

// CascadeMode selects how a site delete removes its dependents.
type CascadeMode string

const (
	// CascadeTransactional removes dependents and the site in one
	// transaction.
	CascadeTransactional CascadeMode = "transactional"
	// CascadeSequential issues the deletes independently and may leave a
	// site with only some of its dependents removed.
	CascadeSequential CascadeMode = "sequential"
)

// ParseCascadeMode accepts the configured mode; empty means transactional.
func ParseCascadeMode(s string) (CascadeMode, error) {
	switch CascadeMode(s) {
	case "", CascadeTransactional:
		return CascadeTransactional, nil
	case CascadeSequential:
		return CascadeSequential, nil
	}
	return "", fmt.Errorf("unknown cascade mode: %s", s)
}

// Session identifies the acting user of a workflow.
type Session struct {
	UserID string
}

// Service is the orchestration layer over the record repositories. Every
// write publishes its invalidated topics to the cache.
type Service struct {
	store   Store
	objects ObjectStore
	cache   Cache
	logger  Logger
	clock   Clock
	idgen   IDGenerator
	mode    CascadeMode
}

// NewService creates a Service with the provided dependencies. objects may be
// nil when no object store is configured; cache and logger default to no-ops.
func NewService(store Store, objects ObjectStore, cache Cache, logger Logger, clock Clock, idgen IDGenerator, mode CascadeMode) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	if mode == "" {
		mode = CascadeTransactional
	}
	return &Service{
		store:   store,
		objects: objects,
		cache:   cache,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
		mode:    mode,
	}
}

// CascadeMode returns the configured cascade mode.
func (s *Service) CascadeMode() CascadeMode { return s.mode }

func (s *Service) invalidate(op Op, ev Event) {
	topics := Invalidations(op, ev)
	s.cache.Invalidate(topics...)
	s.logger.Debug("invalidated", "op", string(op), "topics", len(topics))
}

func requireUser(userID string) error {
	if userID == "" {
		return ErrNoSession
	}
	return nil
}

// dependentRepo is the kind-erased view of a DependentRepository used by the
// workflows that treat the three dependent kinds alike.
type dependentRepo interface {
	kind() model.Kind
	fetchAll(ctx context.Context) ([]model.DependentRecord, error)
	fetchByID(ctx context.Context, id string) (model.DependentRecord, error)
	fetchBySite(ctx context.Context, siteID string) ([]model.DependentRecord, error)
	fetchUnassigned(ctx context.Context) ([]model.DependentRecord, error)
	update(ctx context.Context, id string, patch model.Patch, s *Service) (model.DependentRecord, error)
	deleteByID(ctx context.Context, id string) error
	deleteBySite(ctx context.Context, siteID string) (int64, error)
	setSite(ctx context.Context, id, siteID string, s *Service) (model.DependentRecord, error)
}

type erased[T model.DependentRecord] struct {
	k    model.Kind
	repo DependentRepository[T]
}

func (e erased[T]) kind() model.Kind { return e.k }

func (e erased[T]) fetchAll(ctx context.Context) ([]model.DependentRecord, error) {
	list, err := e.repo.FetchAll(ctx)
	return widen(list, err)
}

func (e erased[T]) fetchByID(ctx context.Context, id string) (model.DependentRecord, error) {
	v, err := e.repo.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (e erased[T]) fetchBySite(ctx context.Context, siteID string) ([]model.DependentRecord, error) {
	list, err := e.repo.FetchBySite(ctx, siteID)
	return widen(list, err)
}

func (e erased[T]) fetchUnassigned(ctx context.Context) ([]model.DependentRecord, error) {
	list, err := e.repo.FetchUnassigned(ctx)
	return widen(list, err)
}

func (e erased[T]) update(ctx context.Context, id string, patch model.Patch, s *Service) (model.DependentRecord, error) {
	v, err := e.repo.Update(ctx, id, patch, s.clock.Now().UTC())
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (e erased[T]) deleteByID(ctx context.Context, id string) error {
	return e.repo.DeleteByID(ctx, id)
}

func (e erased[T]) deleteBySite(ctx context.Context, siteID string) (int64, error) {
	return e.repo.DeleteBySite(ctx, siteID)
}

func (e erased[T]) setSite(ctx context.Context, id, siteID string, s *Service) (model.DependentRecord, error) {
	v, err := e.repo.SetSite(ctx, id, siteID, s.clock.Now().UTC())
	if err != nil {
		return nil, err
	}
	return v, nil
}

func widen[T model.DependentRecord](list []T, err error) ([]model.DependentRecord, error) {
	if err != nil {
		return nil, err
	}
	out := make([]model.DependentRecord, len(list))
	for i, v := range list {
		out[i] = v
	}
	return out, nil
}

// dependents returns the kind-erased repository of k within st.
func dependents(st Store, k model.Kind) (dependentRepo, error) {
	switch k {
	case model.KindEquipment:
		return erased[model.Equipment]{k: k, repo: st.Equipment()}, nil
	case model.KindConnection:
		return erased[model.NetworkConnection]{k: k, repo: st.Connections()}, nil
	case model.KindIPRange:
		return erased[model.IPRange]{k: k, repo: st.IPRanges()}, nil
	}
	return nil, &ValidationError{Field: "kind", Reason: fmt.Sprintf("%q is not a dependent record kind", k)}
}
