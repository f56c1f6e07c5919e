package models

import "github.com/shopspring/decimal"

// Week is one of the four fixed periods of the tracked month
type Week int

// Weeks lists every tracked week in display order. The set never grows.
var Weeks = []Week{1, 2, 3, 4}

// Valid reports whether w belongs to the fixed week set
func (w Week) Valid() bool {
	return w >= 1 && w <= 4
}

// TransactionType represents the kind of amount recorded against a week
type TransactionType string

const (
	TransactionTypeLoan    TransactionType = "loan"    // Adds to AmountDue
	TransactionTypeSale    TransactionType = "sale"    // Adds to SalesValue
	TransactionTypeReceipt TransactionType = "receipt" // Adds to AmountReceived
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeLoan, TransactionTypeSale, TransactionTypeReceipt:
		return true
	}
	return false
}

// Status is the derived settlement state of a week entry
type Status string

const (
	StatusPaid                 Status = "Paid"
	StatusPending              Status = "Pending"
	StatusAwaitingConfirmation Status = "Awaiting Confirmation"
	StatusNoDebt               Status = "No Debt"
)

// PaymentEntry holds an agent's amounts for a single week.
// The zero value is the "no entry" state and is used wherever an entry is absent.
type PaymentEntry struct {
	AmountDue      decimal.Decimal `json:"amount_due"`      // Loans advanced
	AmountReceived decimal.Decimal `json:"amount_received"` // Receipts collected
	SalesValue     decimal.Decimal `json:"sales_value"`
	IsConfirmed    bool            `json:"is_confirmed"`
}

// Balance is SalesValue + AmountDue - AmountReceived. Negative means overpayment.
func (e PaymentEntry) Balance() decimal.Decimal {
	return e.SalesValue.Add(e.AmountDue).Sub(e.AmountReceived)
}

// HasActivity reports whether any raw amount is nonzero
func (e PaymentEntry) HasActivity() bool {
	return !e.SalesValue.IsZero() || !e.AmountDue.IsZero() || !e.AmountReceived.IsZero()
}

// Status derives the entry status; first match wins:
// confirmed, positive balance, any activity, nothing.
func (e PaymentEntry) Status() Status {
	switch {
	case e.IsConfirmed:
		return StatusPaid
	case e.Balance().IsPositive():
		return StatusPending
	case e.HasActivity():
		return StatusAwaitingConfirmation
	default:
		return StatusNoDebt
	}
}

// Row is the derived per-agent, per-week view shared by the API and every exporter
type Row struct {
	AgentID        string          `json:"agent_id"`
	Name           string          `json:"name"`
	Week           Week            `json:"week"`
	SalesValue     decimal.Decimal `json:"sales_value"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Balance        decimal.Decimal `json:"balance"`
	Status         Status          `json:"status"`
	IsConfirmed    bool            `json:"is_confirmed"`
}

// WeekSummary aggregates one week over a set of agents
type WeekSummary struct {
	Week          Week            `json:"week"`
	TotalReceived decimal.Decimal `json:"total_received"` // Confirmed entries only
	TotalPending  decimal.Decimal `json:"total_pending"`  // Unconfirmed entries with balance > 0
	// Unconfirmed entries with activity but no positive balance. Counted, not summed.
	AwaitingConfirmation int `json:"awaiting_confirmation"`
}

// MonthlySummary holds one WeekSummary per tracked week, in week order
type MonthlySummary struct {
	Weeks []WeekSummary `json:"weeks"`
}

// TransactionRequest is the body of a transaction recording call
type TransactionRequest struct {
	Type   TransactionType `json:"type" validate:"required,oneof=loan sale receipt"`
	Amount decimal.Decimal `json:"amount"` // Checked by the ledger, must be positive
}
