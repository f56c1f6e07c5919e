package models

import "time"

// LedgerEventType names a committed ledger mutation
type LedgerEventType string

const (
	LedgerEventGroupAdded          LedgerEventType = "group_added"
	LedgerEventAgentAdded          LedgerEventType = "agent_added"
	LedgerEventAgentRemoved        LedgerEventType = "agent_removed"
	LedgerEventTransactionRecorded LedgerEventType = "transaction_recorded"
	LedgerEventWeekConfirmed       LedgerEventType = "week_confirmed"
	LedgerEventWeekZeroed          LedgerEventType = "week_zeroed"
)

// LedgerEvent is pushed to connected clients so they can re-query their views
type LedgerEvent struct {
	Type    LedgerEventType `json:"type"`
	GroupID string          `json:"group_id,omitempty"`
	AgentID string          `json:"agent_id,omitempty"`
	Week    Week            `json:"week,omitempty"`
	At      time.Time       `json:"at"`
}
