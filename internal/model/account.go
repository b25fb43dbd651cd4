// Package model defines the CRM record snapshots consumed by the analytics
// engine. Records are immutable value types supplied by a record source; the
// engine never creates or mutates them.
package model

// Account is a read-only snapshot of a CRM account.
//
// Date fields are kept as raw strings because CRM data is user-entered and
// inconsistently formatted; parsing happens in the analytics layer with
// explicit fallbacks.
type Account struct {
	ID               string  `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	HealthScore      float64 `json:"health_score" yaml:"health_score"`           // 0-100
	ChurnRiskScore   float64 `json:"churn_risk_score" yaml:"churn_risk_score"`   // 0-100
	AnnualRevenue    float64 `json:"annual_revenue" yaml:"annual_revenue"`
	LifetimeValue    float64 `json:"lifetime_value" yaml:"lifetime_value"`
	Region           string  `json:"region" yaml:"region"`
	AccountType      string  `json:"account_type" yaml:"account_type"`
	LastActivityDate string  `json:"last_activity_date" yaml:"last_activity_date"`
}

// Communication is a single logged interaction with an account.
type Communication struct {
	ID        string  `json:"id" yaml:"id"`
	AccountID string  `json:"account_id" yaml:"account_id"`
	Date      string  `json:"date" yaml:"date"`
	Sentiment float64 `json:"sentiment" yaml:"sentiment"` // 0.0 very negative .. 1.0 very positive
	Content   string  `json:"content" yaml:"content"`
	Direction string  `json:"direction" yaml:"direction"` // inbound / outbound
	Type      string  `json:"communication_type" yaml:"communication_type"`
}

// Telemetry is a usage data point for an account, used for volume-trend
// analysis only.
type Telemetry struct {
	AccountID string  `json:"account_id" yaml:"account_id"`
	Date      string  `json:"date" yaml:"date"`
	Volume    float64 `json:"volume" yaml:"volume"`
}
