package mcp

import (
	"context"

	"github.com/poferraz/motion-lite/internal/plan"
	"github.com/poferraz/motion-lite/internal/state"
)

// DataSource abstracts the data layer for MCP tools. Both StoreDataSource
// (local store) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Snapshot(ctx context.Context) (*state.Snapshot, error)
	Sessions(ctx context.Context) ([]plan.Session, error)
	ImportPlan(ctx context.Context, csvText string) (*plan.Result, error)
}

// StoreDataSource serves MCP tools straight from a local state store.
type StoreDataSource struct {
	store *state.Store
}

// Compile-time check: *StoreDataSource satisfies DataSource.
var _ DataSource = (*StoreDataSource)(nil)

// NewStoreDataSource wraps a store for local MCP mode.
func NewStoreDataSource(store *state.Store) *StoreDataSource {
	return &StoreDataSource{store: store}
}

func (s *StoreDataSource) Snapshot(ctx context.Context) (*state.Snapshot, error) {
	return s.store.Load(ctx)
}

func (s *StoreDataSource) Sessions(ctx context.Context) ([]plan.Session, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return plan.BuildSessions(snap.Rows, snap.SelectedSessions), nil
}

// ImportPlan parses the CSV text and, only when the document imports,
// replaces the stored plan. A document failure comes back as a Result with
// diagnostics and nothing persisted.
func (s *StoreDataSource) ImportPlan(ctx context.Context, csvText string) (*plan.Result, error) {
	res := plan.Parse(csvText)
	if !res.OK() {
		return res, nil
	}
	if _, err := s.store.SetCSVData(ctx, csvText, res); err != nil {
		return nil, err
	}
	return res, nil
}
