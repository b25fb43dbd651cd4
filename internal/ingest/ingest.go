// Package ingest reads CRM export files (CSV, XLSX) and maps their rows to
// model records for the import command. Record kinds are inferred from header
// columns; malformed cells degrade to zero values, they never abort a load.
package ingest

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sales-analytics/internal/analytics"
	"github.com/sells-group/sales-analytics/internal/model"
)

// RecordSet holds every record parsed from one export file.
type RecordSet struct {
	Accounts       []model.Account
	Opportunities  []model.Opportunity
	Communications []model.Communication
	Telemetry      []model.Telemetry
}

// Merge appends all records from other into r.
func (r *RecordSet) Merge(other RecordSet) {
	r.Accounts = append(r.Accounts, other.Accounts...)
	r.Opportunities = append(r.Opportunities, other.Opportunities...)
	r.Communications = append(r.Communications, other.Communications...)
	r.Telemetry = append(r.Telemetry, other.Telemetry...)
}

// Total returns the number of records across all kinds.
func (r *RecordSet) Total() int {
	return len(r.Accounts) + len(r.Opportunities) + len(r.Communications) + len(r.Telemetry)
}

// ReadFile dispatches on the file extension.
func ReadFile(path string) (*RecordSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, eris.Errorf("ingest: unsupported file type %s", filepath.Ext(path))
	}
}

type recordKind int

const (
	kindUnknown recordKind = iota
	kindAccount
	kindOpportunity
	kindCommunication
	kindTelemetry
)

// kindFromHeader infers what kind of records a table holds from its columns.
func kindFromHeader(header []string) recordKind {
	cols := map[string]bool{}
	for _, h := range header {
		cols[normalizeHeader(h)] = true
	}

	switch {
	case cols["stage"]:
		return kindOpportunity
	case cols["sentiment"] || cols["content"]:
		return kindCommunication
	case cols["volume"]:
		return kindTelemetry
	case cols["name"] || cols["health_score"]:
		return kindAccount
	default:
		return kindUnknown
	}
}

// normalizeHeader lowercases and squashes spaces so "Health Score",
// "health_score", and "HealthScore " all match.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	return strings.ReplaceAll(h, " ", "_")
}

// indexHeader maps normalized column name to position.
func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func numCell(row []string, idx map[string]int, col string) float64 {
	return analytics.ParseNumber(cell(row, idx, col), 0)
}

// mapRows converts a header plus data rows into typed records.
func mapRows(kind recordKind, header []string, rows [][]string) RecordSet {
	idx := indexHeader(header)
	var set RecordSet

	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		switch kind {
		case kindAccount:
			set.Accounts = append(set.Accounts, model.Account{
				ID:               cell(row, idx, "id"),
				Name:             cell(row, idx, "name"),
				HealthScore:      numCell(row, idx, "health_score"),
				ChurnRiskScore:   numCell(row, idx, "churn_risk_score"),
				AnnualRevenue:    numCell(row, idx, "annual_revenue"),
				LifetimeValue:    numCell(row, idx, "lifetime_value"),
				Region:           cell(row, idx, "region"),
				AccountType:      cell(row, idx, "account_type"),
				LastActivityDate: cell(row, idx, "last_activity_date"),
			})
		case kindOpportunity:
			set.Opportunities = append(set.Opportunities, model.Opportunity{
				ID:          cell(row, idx, "id"),
				AccountID:   cell(row, idx, "account_id"),
				Name:        cell(row, idx, "name"),
				Stage:       model.Stage(cell(row, idx, "stage")),
				Value:       numCell(row, idx, "value"),
				Probability: numCell(row, idx, "probability"),
				CloseDate:   cell(row, idx, "close_date"),
				DaysInStage: int(numCell(row, idx, "days_in_stage")),
				ProductLine: cell(row, idx, "product_line"),
			})
		case kindCommunication:
			set.Communications = append(set.Communications, model.Communication{
				ID:        cell(row, idx, "id"),
				AccountID: cell(row, idx, "account_id"),
				Date:      cell(row, idx, "date"),
				Sentiment: numCell(row, idx, "sentiment"),
				Content:   cell(row, idx, "content"),
				Direction: cell(row, idx, "direction"),
				Type:      cell(row, idx, "communication_type"),
			})
		case kindTelemetry:
			set.Telemetry = append(set.Telemetry, model.Telemetry{
				AccountID: cell(row, idx, "account_id"),
				Date:      cell(row, idx, "date"),
				Volume:    numCell(row, idx, "volume"),
			})
		}
	}

	return set
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
