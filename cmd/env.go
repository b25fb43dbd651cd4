package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/sales-analytics/internal/analytics"
	"github.com/sells-group/sales-analytics/internal/source"
	"github.com/sells-group/sales-analytics/pkg/advisor"
	sfpkg "github.com/sells-group/sales-analytics/pkg/salesforce"
)

// money renders currency and large counts with thousands separators.
var money = message.NewPrinter(language.AmericanEnglish)

// newEngine validates the configured thresholds and builds the engine.
func newEngine() (*analytics.Engine, error) {
	if err := analytics.ValidateConfig(cfg.Analytics); err != nil {
		return nil, err
	}
	return analytics.New(cfg.Analytics), nil
}

// initSource opens the record source selected by --source or config.
func initSource(ctx context.Context, cmd *cobra.Command) (source.Source, error) {
	driver := cfg.Store.Driver
	if flag, _ := cmd.Flags().GetString("source"); flag != "" {
		driver = flag
	}

	switch driver {
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "sales-analytics.db"
		}
		return source.NewSQLite(path)
	case "postgres":
		return source.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "salesforce":
		client, err := initSalesforce()
		if err != nil {
			return nil, err
		}
		return source.NewSalesforce(client), nil
	case "fixture":
		return source.NewFixture(cfg.Store.FixturePath)
	default:
		return nil, eris.Errorf("unsupported source driver: %s", driver)
	}
}

// initWriter opens an import target. Only database-backed sources accept
// writes.
func initWriter(ctx context.Context, cmd *cobra.Command) (source.Writer, func() error, error) {
	driver := cfg.Store.Driver
	if flag, _ := cmd.Flags().GetString("source"); flag != "" {
		driver = flag
	}

	switch driver {
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "sales-analytics.db"
		}
		s, err := source.NewSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres":
		s, err := source.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, eris.Errorf("import requires a sqlite or postgres source (got %s)", driver)
	}
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (SALES_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Salesforce.RateLimit)), nil
}

// printJSON writes an indented report to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode report")
}

// narrate prints optional advisor commentary after a report when --narrate is
// set. Failures are already swallowed inside the advisor.
func narrate(ctx context.Context, cmd *cobra.Command, reportName string, report any) {
	if on, _ := cmd.Flags().GetBool("narrate"); !on {
		return
	}

	a := advisor.New(cfg.Advisor)
	if !a.Enabled() {
		fmt.Fprintln(os.Stderr, "narration requested but no advisor key configured")
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if text := a.Narrate(ctx, reportName, string(data)); text != "" {
		fmt.Printf("\n%s\n", text)
	}
}
