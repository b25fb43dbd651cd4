package source

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/sales-analytics/internal/model"
)

// FixtureSource implements Source over a YAML file. It exists for demos and
// integration tests where a database is overkill.
type FixtureSource struct {
	accounts       []model.Account
	opportunities  []model.Opportunity
	communications []model.Communication
	telemetry      []model.Telemetry
}

type fixtureFile struct {
	Accounts       []model.Account       `yaml:"accounts"`
	Opportunities  []model.Opportunity   `yaml:"opportunities"`
	Communications []model.Communication `yaml:"communications"`
	Telemetry      []model.Telemetry     `yaml:"telemetry"`
}

// NewFixture loads all records from a YAML file into memory.
func NewFixture(path string) (*FixtureSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fixture: read %s", path)
	}

	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "fixture: parse %s", path)
	}

	return &FixtureSource{
		accounts:       f.Accounts,
		opportunities:  f.Opportunities,
		communications: f.Communications,
		telemetry:      f.Telemetry,
	}, nil
}

func (s *FixtureSource) Close() error {
	return nil
}

func (s *FixtureSource) Accounts(ctx context.Context) ([]model.Account, error) {
	return s.accounts, nil
}

func (s *FixtureSource) Account(ctx context.Context, id string) (*model.Account, error) {
	for _, a := range s.accounts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, eris.Errorf("account not found: %s", id)
}

func (s *FixtureSource) Opportunities(ctx context.Context, accountID string) ([]model.Opportunity, error) {
	if accountID == "" {
		return s.opportunities, nil
	}
	var opps []model.Opportunity
	for _, o := range s.opportunities {
		if o.AccountID == accountID {
			opps = append(opps, o)
		}
	}
	return opps, nil
}

func (s *FixtureSource) Communications(ctx context.Context, accountID string) ([]model.Communication, error) {
	if accountID == "" {
		return s.communications, nil
	}
	var comms []model.Communication
	for _, c := range s.communications {
		if c.AccountID == accountID {
			comms = append(comms, c)
		}
	}
	return comms, nil
}

func (s *FixtureSource) Telemetry(ctx context.Context, accountID string) ([]model.Telemetry, error) {
	if accountID == "" {
		return s.telemetry, nil
	}
	var points []model.Telemetry
	for _, p := range s.telemetry {
		if p.AccountID == accountID {
			points = append(points, p)
		}
	}
	return points, nil
}
