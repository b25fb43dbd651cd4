package source

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/sales-analytics/internal/model"
)

// SQLiteSource implements Source and Writer using modernc.org/sqlite.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteSource{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS accounts (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	health_score       REAL NOT NULL DEFAULT 0,
	churn_risk_score   REAL NOT NULL DEFAULT 0,
	annual_revenue     REAL NOT NULL DEFAULT 0,
	lifetime_value     REAL NOT NULL DEFAULT 0,
	region             TEXT NOT NULL DEFAULT '',
	account_type       TEXT NOT NULL DEFAULT '',
	last_activity_date TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS opportunities (
	id            TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	stage         TEXT NOT NULL,
	value         REAL NOT NULL DEFAULT 0,
	probability   REAL NOT NULL DEFAULT 0,
	close_date    TEXT NOT NULL DEFAULT '',
	days_in_stage INTEGER NOT NULL DEFAULT 0,
	product_line  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS communications (
	id                 TEXT PRIMARY KEY,
	account_id         TEXT NOT NULL,
	date               TEXT NOT NULL DEFAULT '',
	sentiment          REAL NOT NULL DEFAULT 0.5,
	content            TEXT NOT NULL DEFAULT '',
	direction          TEXT NOT NULL DEFAULT '',
	communication_type TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS telemetry (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	date       TEXT NOT NULL DEFAULT '',
	volume     REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_opportunities_account_id ON opportunities(account_id);
CREATE INDEX IF NOT EXISTS idx_communications_account_id ON communications(account_id);
CREATE INDEX IF NOT EXISTS idx_telemetry_account_id ON telemetry(account_id);
`

func (s *SQLiteSource) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

const accountColumns = `id, name, health_score, churn_risk_score, annual_revenue,
	lifetime_value, region, account_type, last_activity_date`

func (s *SQLiteSource) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list accounts")
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, eris.Wrap(rows.Err(), "sqlite: list accounts iterate")
}

func (s *SQLiteSource) Account(ctx context.Context, id string) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	var a model.Account
	err := scanAccount(row, &a)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("account not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteSource) Opportunities(ctx context.Context, accountID string) ([]model.Opportunity, error) {
	query := `SELECT id, account_id, name, stage, value, probability, close_date,
		days_in_stage, product_line FROM opportunities`
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list opportunities")
	}
	defer rows.Close()

	var opps []model.Opportunity
	for rows.Next() {
		var o model.Opportunity
		if err := rows.Scan(&o.ID, &o.AccountID, &o.Name, &o.Stage, &o.Value,
			&o.Probability, &o.CloseDate, &o.DaysInStage, &o.ProductLine); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan opportunity")
		}
		opps = append(opps, o)
	}
	return opps, eris.Wrap(rows.Err(), "sqlite: list opportunities iterate")
}

func (s *SQLiteSource) Communications(ctx context.Context, accountID string) ([]model.Communication, error) {
	query := `SELECT id, account_id, date, sentiment, content, direction,
		communication_type FROM communications`
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list communications")
	}
	defer rows.Close()

	var comms []model.Communication
	for rows.Next() {
		var c model.Communication
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Date, &c.Sentiment,
			&c.Content, &c.Direction, &c.Type); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan communication")
		}
		comms = append(comms, c)
	}
	return comms, eris.Wrap(rows.Err(), "sqlite: list communications iterate")
}

func (s *SQLiteSource) Telemetry(ctx context.Context, accountID string) ([]model.Telemetry, error) {
	query := `SELECT account_id, date, volume FROM telemetry`
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list telemetry")
	}
	defer rows.Close()

	var points []model.Telemetry
	for rows.Next() {
		var p model.Telemetry
		if err := rows.Scan(&p.AccountID, &p.Date, &p.Volume); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan telemetry")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "sqlite: list telemetry iterate")
}

// write surface

func (s *SQLiteSource) UpsertAccounts(ctx context.Context, accounts []model.Account) (int64, error) {
	var n int64
	for _, a := range accounts {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO accounts (`+accountColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				health_score = excluded.health_score,
				churn_risk_score = excluded.churn_risk_score,
				annual_revenue = excluded.annual_revenue,
				lifetime_value = excluded.lifetime_value,
				region = excluded.region,
				account_type = excluded.account_type,
				last_activity_date = excluded.last_activity_date`,
			a.ID, a.Name, a.HealthScore, a.ChurnRiskScore, a.AnnualRevenue,
			a.LifetimeValue, a.Region, a.AccountType, a.LastActivityDate,
		)
		if err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert account %s", a.ID)
		}
		n++
	}
	return n, nil
}

func (s *SQLiteSource) UpsertOpportunities(ctx context.Context, opps []model.Opportunity) (int64, error) {
	var n int64
	for _, o := range opps {
		if o.ID == "" {
			o.ID = uuid.New().String()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO opportunities (id, account_id, name, stage, value,
				probability, close_date, days_in_stage, product_line)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				account_id = excluded.account_id,
				name = excluded.name,
				stage = excluded.stage,
				value = excluded.value,
				probability = excluded.probability,
				close_date = excluded.close_date,
				days_in_stage = excluded.days_in_stage,
				product_line = excluded.product_line`,
			o.ID, o.AccountID, o.Name, string(o.Stage), o.Value,
			o.Probability, o.CloseDate, o.DaysInStage, o.ProductLine,
		)
		if err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert opportunity %s", o.ID)
		}
		n++
	}
	return n, nil
}

func (s *SQLiteSource) UpsertCommunications(ctx context.Context, comms []model.Communication) (int64, error) {
	var n int64
	for _, c := range comms {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO communications (id, account_id, date, sentiment,
				content, direction, communication_type)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				account_id = excluded.account_id,
				date = excluded.date,
				sentiment = excluded.sentiment,
				content = excluded.content,
				direction = excluded.direction,
				communication_type = excluded.communication_type`,
			c.ID, c.AccountID, c.Date, c.Sentiment, c.Content, c.Direction, c.Type,
		)
		if err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert communication %s", c.ID)
		}
		n++
	}
	return n, nil
}

func (s *SQLiteSource) InsertTelemetry(ctx context.Context, points []model.Telemetry) (int64, error) {
	var n int64
	for _, p := range points {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO telemetry (id, account_id, date, volume) VALUES (?, ?, ?, ?)`,
			uuid.New().String(), p.AccountID, p.Date, p.Volume,
		)
		if err != nil {
			return n, eris.Wrapf(err, "sqlite: insert telemetry for %s", p.AccountID)
		}
		n++
	}
	return n, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAccount(row scannable, a *model.Account) error {
	err := row.Scan(&a.ID, &a.Name, &a.HealthScore, &a.ChurnRiskScore,
		&a.AnnualRevenue, &a.LifetimeValue, &a.Region, &a.AccountType,
		&a.LastActivityDate)
	if err == sql.ErrNoRows {
		return err
	}
	return eris.Wrap(err, "sqlite: scan account")
}
