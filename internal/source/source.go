// Package source provides record sources: read accessors over the CRM
// collections the analytics engine consumes. Implementations are backed by
// SQLite, Postgres, Salesforce, and YAML fixtures.
package source

import (
	"context"

	"github.com/sells-group/sales-analytics/internal/model"
)

// Source defines read access to CRM records. An empty accountID selects
// records for all accounts.
type Source interface {
	Accounts(ctx context.Context) ([]model.Account, error)
	Account(ctx context.Context, id string) (*model.Account, error)
	Opportunities(ctx context.Context, accountID string) ([]model.Opportunity, error)
	Communications(ctx context.Context, accountID string) ([]model.Communication, error)
	Telemetry(ctx context.Context, accountID string) ([]model.Telemetry, error)
	Close() error
}

// Writer is the write surface the import command loads records through.
// The SQLite and Postgres sources implement it; read-only sources do not.
type Writer interface {
	Migrate(ctx context.Context) error
	UpsertAccounts(ctx context.Context, accounts []model.Account) (int64, error)
	UpsertOpportunities(ctx context.Context, opps []model.Opportunity) (int64, error)
	UpsertCommunications(ctx context.Context, comms []model.Communication) (int64, error)
	InsertTelemetry(ctx context.Context, points []model.Telemetry) (int64, error)
}
