package store

import (
	"context"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  model.RunStatus `json:"status,omitempty"`
	PlaceID string          `json:"place_id,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for diagnosis runs.
type Store interface {
	CreateRun(ctx context.Context, lead model.Lead) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, decision *model.ObjectiveDecision) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// LatestDecisions returns the newest complete run for each lead,
	// which is what exports and the API surface report.
	LatestDecisions(ctx context.Context) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// leadKey groups runs belonging to the same practice. Place ID is the
// stable identity; the name is a fallback for leads entered by hand.
func leadKey(lead model.Lead) string {
	if lead.PlaceID != "" {
		return lead.PlaceID
	}
	return lead.Name
}
