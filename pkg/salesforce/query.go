package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Account represents a Salesforce Account record with the customer-success
// custom fields the analytics engine consumes.
type Account struct {
	ID               string  `json:"Id" salesforce:"Id"`
	Name             string  `json:"Name" salesforce:"Name"`
	Type             string  `json:"Type" salesforce:"Type"`
	AnnualRevenue    float64 `json:"AnnualRevenue" salesforce:"AnnualRevenue"`
	BillingState     string  `json:"BillingState" salesforce:"BillingState"`
	LastActivityDate string  `json:"LastActivityDate" salesforce:"LastActivityDate"`
	HealthScore      float64 `json:"Health_Score__c" salesforce:"Health_Score__c"`
	ChurnRiskScore   float64 `json:"Churn_Risk_Score__c" salesforce:"Churn_Risk_Score__c"`
	LifetimeValue    float64 `json:"Lifetime_Value__c" salesforce:"Lifetime_Value__c"`
}

// Opportunity represents a Salesforce Opportunity record.
type Opportunity struct {
	ID          string  `json:"Id" salesforce:"Id"`
	AccountID   string  `json:"AccountId" salesforce:"AccountId"`
	Name        string  `json:"Name" salesforce:"Name"`
	StageName   string  `json:"StageName" salesforce:"StageName"`
	Amount      float64 `json:"Amount" salesforce:"Amount"`
	Probability float64 `json:"Probability" salesforce:"Probability"`
	CloseDate   string  `json:"CloseDate" salesforce:"CloseDate"`
	DaysInStage int     `json:"Days_In_Stage__c" salesforce:"Days_In_Stage__c"`
	ProductLine string  `json:"Product_Line__c" salesforce:"Product_Line__c"`
}

// Task represents a logged Salesforce activity used as a communication record.
type Task struct {
	ID           string  `json:"Id" salesforce:"Id"`
	WhatID       string  `json:"WhatId" salesforce:"WhatId"`
	ActivityDate string  `json:"ActivityDate" salesforce:"ActivityDate"`
	Subject      string  `json:"Subject" salesforce:"Subject"`
	Description  string  `json:"Description" salesforce:"Description"`
	TaskSubtype  string  `json:"TaskSubtype" salesforce:"TaskSubtype"`
	Sentiment    float64 `json:"Sentiment_Score__c" salesforce:"Sentiment_Score__c"`
	Direction    string  `json:"Direction__c" salesforce:"Direction__c"`
}

var accountFields = []string{
	"Id", "Name", "Type", "AnnualRevenue", "BillingState", "LastActivityDate",
	"Health_Score__c", "Churn_Risk_Score__c", "Lifetime_Value__c",
}

var opportunityFields = []string{
	"Id", "AccountId", "Name", "StageName", "Amount", "Probability",
	"CloseDate", "Days_In_Stage__c", "Product_Line__c",
}

var taskFields = []string{
	"Id", "WhatId", "ActivityDate", "Subject", "Description",
	"TaskSubtype", "Sentiment_Score__c", "Direction__c",
}

// FetchAccounts queries all Accounts.
func FetchAccounts(ctx context.Context, c Client) ([]Account, error) {
	soql := fmt.Sprintf("SELECT %s FROM Account ORDER BY Name", strings.Join(accountFields, ", "))

	var accounts []Account
	if err := c.Query(ctx, soql, &accounts); err != nil {
		return nil, eris.Wrap(err, "sf: fetch accounts")
	}
	return accounts, nil
}

// FetchAccountByID queries a single Account by its ID.
// Returns nil if no account is found.
func FetchAccountByID(ctx context.Context, c Client, id string) (*Account, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Account WHERE Id = '%s' LIMIT 1",
		strings.Join(accountFields, ", "),
		escapeSoql(id),
	)

	var accounts []Account
	if err := c.Query(ctx, soql, &accounts); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: fetch account %s", id))
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}

// FetchOpportunities queries Opportunities, optionally scoped to one account.
func FetchOpportunities(ctx context.Context, c Client, accountID string) ([]Opportunity, error) {
	soql := fmt.Sprintf("SELECT %s FROM Opportunity", strings.Join(opportunityFields, ", "))
	if accountID != "" {
		soql += fmt.Sprintf(" WHERE AccountId = '%s'", escapeSoql(accountID))
	}

	var opps []Opportunity
	if err := c.Query(ctx, soql, &opps); err != nil {
		return nil, eris.Wrap(err, "sf: fetch opportunities")
	}
	return opps, nil
}

// FetchTasks queries logged activities, optionally scoped to one account.
func FetchTasks(ctx context.Context, c Client, accountID string) ([]Task, error) {
	soql := fmt.Sprintf("SELECT %s FROM Task", strings.Join(taskFields, ", "))
	if accountID != "" {
		soql += fmt.Sprintf(" WHERE WhatId = '%s'", escapeSoql(accountID))
	}
	soql += " ORDER BY ActivityDate DESC"

	var tasks []Task
	if err := c.Query(ctx, soql, &tasks); err != nil {
		return nil, eris.Wrap(err, "sf: fetch tasks")
	}
	return tasks, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
