package source

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sales-analytics/internal/db"
	"github.com/sells-group/sales-analytics/internal/model"
)

// PostgresSource implements Source and Writer over a pgx pool.
type PostgresSource struct {
	pool db.Pool
}

// NewPostgres connects to Postgres at the given DSN.
func NewPostgres(ctx context.Context, dsn string) (*PostgresSource, error) {
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresSource{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. The caller keeps ownership of
// the pool's lifecycle in tests.
func NewPostgresFromPool(pool db.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS accounts (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	health_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
	churn_risk_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
	annual_revenue     DOUBLE PRECISION NOT NULL DEFAULT 0,
	lifetime_value     DOUBLE PRECISION NOT NULL DEFAULT 0,
	region             TEXT NOT NULL DEFAULT '',
	account_type       TEXT NOT NULL DEFAULT '',
	last_activity_date TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS opportunities (
	id            TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	stage         TEXT NOT NULL,
	value         DOUBLE PRECISION NOT NULL DEFAULT 0,
	probability   DOUBLE PRECISION NOT NULL DEFAULT 0,
	close_date    TEXT NOT NULL DEFAULT '',
	days_in_stage INTEGER NOT NULL DEFAULT 0,
	product_line  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS communications (
	id                 TEXT PRIMARY KEY,
	account_id         TEXT NOT NULL,
	date               TEXT NOT NULL DEFAULT '',
	sentiment          DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	content            TEXT NOT NULL DEFAULT '',
	direction          TEXT NOT NULL DEFAULT '',
	communication_type TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS telemetry (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	date       TEXT NOT NULL DEFAULT '',
	volume     DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_opportunities_account_id ON opportunities(account_id);
CREATE INDEX IF NOT EXISTS idx_communications_account_id ON communications(account_id);
CREATE INDEX IF NOT EXISTS idx_telemetry_account_id ON telemetry(account_id);
`

func (s *PostgresSource) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresSource) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list accounts")
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.HealthScore, &a.ChurnRiskScore,
			&a.AnnualRevenue, &a.LifetimeValue, &a.Region, &a.AccountType,
			&a.LastActivityDate); err != nil {
			return nil, eris.Wrap(err, "postgres: scan account")
		}
		accounts = append(accounts, a)
	}
	return accounts, eris.Wrap(rows.Err(), "postgres: list accounts iterate")
}

func (s *PostgresSource) Account(ctx context.Context, id string) (*model.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	var a model.Account
	err := row.Scan(&a.ID, &a.Name, &a.HealthScore, &a.ChurnRiskScore,
		&a.AnnualRevenue, &a.LifetimeValue, &a.Region, &a.AccountType,
		&a.LastActivityDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("account not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get account")
	}
	return &a, nil
}

func (s *PostgresSource) Opportunities(ctx context.Context, accountID string) ([]model.Opportunity, error) {
	query := `SELECT id, account_id, name, stage, value, probability, close_date,
		days_in_stage, product_line FROM opportunities`
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = $1`
		args = append(args, accountID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list opportunities")
	}
	defer rows.Close()

	var opps []model.Opportunity
	for rows.Next() {
		var o model.Opportunity
		if err := rows.Scan(&o.ID, &o.AccountID, &o.Name, &o.Stage, &o.Value,
			&o.Probability, &o.CloseDate, &o.DaysInStage, &o.ProductLine); err != nil {
			return nil, eris.Wrap(err, "postgres: scan opportunity")
		}
		opps = append(opps, o)
	}
	return opps, eris.Wrap(rows.Err(), "postgres: list opportunities iterate")
}

func (s *PostgresSource) Communications(ctx context.Context, accountID string) ([]model.Communication, error) {
	query := `SELECT id, account_id, date, sentiment, content, direction,
		communication_type FROM communications`
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = $1`
		args = append(args, accountID)
	}
	query += ` ORDER BY date DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list communications")
	}
	defer rows.Close()

	var comms []model.Communication
	for rows.Next() {
		var c model.Communication
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Date, &c.Sentiment,
			&c.Content, &c.Direction, &c.Type); err != nil {
			return nil, eris.Wrap(err, "postgres: scan communication")
		}
		comms = append(comms, c)
	}
	return comms, eris.Wrap(rows.Err(), "postgres: list communications iterate")
}

func (s *PostgresSource) Telemetry(ctx context.Context, accountID string) ([]model.Telemetry, error) {
	query := `SELECT account_id, date, volume FROM telemetry`
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = $1`
		args = append(args, accountID)
	}
	query += ` ORDER BY date`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list telemetry")
	}
	defer rows.Close()

	var points []model.Telemetry
	for rows.Next() {
		var p model.Telemetry
		if err := rows.Scan(&p.AccountID, &p.Date, &p.Volume); err != nil {
			return nil, eris.Wrap(err, "postgres: scan telemetry")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "postgres: list telemetry iterate")
}

// write surface

var accountUpsertColumns = []string{
	"id", "name", "health_score", "churn_risk_score", "annual_revenue",
	"lifetime_value", "region", "account_type", "last_activity_date",
}

func (s *PostgresSource) UpsertAccounts(ctx context.Context, accounts []model.Account) (int64, error) {
	rows := make([][]any, len(accounts))
	for i, a := range accounts {
		rows[i] = []any{a.ID, a.Name, a.HealthScore, a.ChurnRiskScore,
			a.AnnualRevenue, a.LifetimeValue, a.Region, a.AccountType,
			a.LastActivityDate}
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "accounts",
		Columns:      accountUpsertColumns,
		ConflictKeys: []string{"id"},
	}, rows)
}

var opportunityUpsertColumns = []string{
	"id", "account_id", "name", "stage", "value", "probability",
	"close_date", "days_in_stage", "product_line",
}

func (s *PostgresSource) UpsertOpportunities(ctx context.Context, opps []model.Opportunity) (int64, error) {
	rows := make([][]any, len(opps))
	for i, o := range opps {
		rows[i] = []any{o.ID, o.AccountID, o.Name, string(o.Stage), o.Value,
			o.Probability, o.CloseDate, o.DaysInStage, o.ProductLine}
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "opportunities",
		Columns:      opportunityUpsertColumns,
		ConflictKeys: []string{"id"},
	}, rows)
}

var communicationUpsertColumns = []string{
	"id", "account_id", "date", "sentiment", "content", "direction",
	"communication_type",
}

func (s *PostgresSource) UpsertCommunications(ctx context.Context, comms []model.Communication) (int64, error) {
	rows := make([][]any, len(comms))
	for i, c := range comms {
		rows[i] = []any{c.ID, c.AccountID, c.Date, c.Sentiment, c.Content,
			c.Direction, c.Type}
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "communications",
		Columns:      communicationUpsertColumns,
		ConflictKeys: []string{"id"},
	}, rows)
}

// InsertTelemetry appends usage points via COPY; telemetry has no natural key
// so rows are never updated in place.
func (s *PostgresSource) InsertTelemetry(ctx context.Context, points []model.Telemetry) (int64, error) {
	rows := make([][]any, len(points))
	for i, p := range points {
		rows[i] = []any{uuid.New().String(), p.AccountID, p.Date, p.Volume}
	}
	return db.CopyFrom(ctx, s.pool, "telemetry",
		[]string{"id", "account_id", "date", "volume"}, rows)
}
