package source

import (
	"context"

	"github.com/sells-group/sales-analytics/internal/model"
	sfpkg "github.com/sells-group/sales-analytics/pkg/salesforce"
)

// SalesforceSource implements Source over live Salesforce data via SOQL.
// It is read-only; imports never target Salesforce.
type SalesforceSource struct {
	client sfpkg.Client
}

// NewSalesforce wraps a configured Salesforce client.
func NewSalesforce(client sfpkg.Client) *SalesforceSource {
	return &SalesforceSource{client: client}
}

func (s *SalesforceSource) Close() error {
	return nil
}

func (s *SalesforceSource) Accounts(ctx context.Context) ([]model.Account, error) {
	records, err := sfpkg.FetchAccounts(ctx, s.client)
	if err != nil {
		return nil, err
	}

	accounts := make([]model.Account, len(records))
	for i, r := range records {
		accounts[i] = mapAccount(r)
	}
	return accounts, nil
}

func (s *SalesforceSource) Account(ctx context.Context, id string) (*model.Account, error) {
	record, err := sfpkg.FetchAccountByID(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	a := mapAccount(*record)
	return &a, nil
}

func (s *SalesforceSource) Opportunities(ctx context.Context, accountID string) ([]model.Opportunity, error) {
	records, err := sfpkg.FetchOpportunities(ctx, s.client, accountID)
	if err != nil {
		return nil, err
	}

	opps := make([]model.Opportunity, len(records))
	for i, r := range records {
		opps[i] = model.Opportunity{
			ID:          r.ID,
			AccountID:   r.AccountID,
			Name:        r.Name,
			Stage:       model.Stage(r.StageName),
			Value:       r.Amount,
			Probability: r.Probability,
			CloseDate:   r.CloseDate,
			DaysInStage: r.DaysInStage,
			ProductLine: r.ProductLine,
		}
	}
	return opps, nil
}

func (s *SalesforceSource) Communications(ctx context.Context, accountID string) ([]model.Communication, error) {
	records, err := sfpkg.FetchTasks(ctx, s.client, accountID)
	if err != nil {
		return nil, err
	}

	comms := make([]model.Communication, len(records))
	for i, r := range records {
		comms[i] = model.Communication{
			ID:        r.ID,
			AccountID: r.WhatID,
			Date:      r.ActivityDate,
			Sentiment: r.Sentiment,
			Content:   r.Description,
			Direction: r.Direction,
			Type:      r.TaskSubtype,
		}
	}
	return comms, nil
}

// Telemetry always returns nothing: usage data is not tracked in Salesforce.
// The volume-trend analyzer reports "Unknown" for accounts without points.
func (s *SalesforceSource) Telemetry(ctx context.Context, accountID string) ([]model.Telemetry, error) {
	return nil, nil
}

func mapAccount(r sfpkg.Account) model.Account {
	return model.Account{
		ID:               r.ID,
		Name:             r.Name,
		HealthScore:      r.HealthScore,
		ChurnRiskScore:   r.ChurnRiskScore,
		AnnualRevenue:    r.AnnualRevenue,
		LifetimeValue:    r.LifetimeValue,
		Region:           r.BillingState,
		AccountType:      r.Type,
		LastActivityDate: r.LastActivityDate,
	}
}
