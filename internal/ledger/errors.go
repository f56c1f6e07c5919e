package ledger

import "errors"

var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidWeek            = errors.New("week must be between 1 and 4")
	ErrInvalidTransactionType = errors.New("transaction type must be loan, sale or receipt")
	ErrInvalidStatusFilter    = errors.New("status filter must be all, paid or pending")
	ErrAgentNotFound          = errors.New("agent not found")
	ErrOutstandingBalance     = errors.New("week still has an outstanding balance")
	ErrInvalidSnapshot        = errors.New("invalid ledger snapshot")
)
