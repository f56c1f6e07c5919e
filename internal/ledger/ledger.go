// Package ledger owns the weekly payment records of groups and agents and
// derives balances, statuses and monthly summaries from them.
package ledger

import (
	"strconv"
	"sync"

	"cambistas-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is the single owner of the group set, the agent set and the
// week -> agent -> entry mapping. All mutations go through its methods and
// each one is applied atomically under the write lock.
type Ledger struct {
	mu     sync.RWMutex
	groups []models.Group
	agents []models.Agent
	weeks  map[models.Week]map[string]models.PaymentEntry

	// version counts committed changes; derived views carry it
	version uint64

	strictConfirmation bool
	newID              func() string
}

// Option configures a Ledger
type Option func(*Ledger)

// WithStrictConfirmation makes ConfirmWeek refuse weeks with a positive balance
func WithStrictConfirmation(strict bool) Option {
	return func(l *Ledger) {
		l.strictConfirmation = strict
	}
}

// WithIDGenerator replaces the UUID generator, mostly for tests
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) {
		l.newID = gen
	}
}

// New creates an empty ledger
func New(opts ...Option) *Ledger {
	l := &Ledger{
		weeks: newWeekMap(),
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newWeekMap() map[models.Week]map[string]models.PaymentEntry {
	weeks := make(map[models.Week]map[string]models.PaymentEntry, len(models.Weeks))
	for _, w := range models.Weeks {
		weeks[w] = make(map[string]models.PaymentEntry)
	}
	return weeks
}

// ParseWeek converts a path or query value into a Week
func ParseWeek(s string) (models.Week, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidWeek
	}
	w := models.Week(n)
	if !w.Valid() {
		return 0, ErrInvalidWeek
	}
	return w, nil
}

// AddGroup creates a group with a fresh id. Names are not required to be unique.
func (l *Ledger) AddGroup(name string) models.Group {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := models.Group{ID: l.newID(), Name: name}
	l.groups = append(l.groups, g)
	l.version++
	return g
}

// AddAgent creates an agent with a fresh id. Group ids are not checked.
func (l *Ledger) AddAgent(name string, groupIDs []string) models.Agent {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, len(groupIDs))
	copy(ids, groupIDs)

	a := models.Agent{ID: l.newID(), Name: name, GroupIDs: ids}
	l.agents = append(l.agents, a)
	l.version++
	return cloneAgent(a)
}

// RemoveAgent deletes the agent and its entry in every week.
// Returns false when the agent did not exist.
func (l *Ledger) RemoveAgent(agentID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOfAgent(agentID)
	if idx < 0 {
		return false
	}
	l.agents = append(l.agents[:idx], l.agents[idx+1:]...)
	for _, entries := range l.weeks {
		delete(entries, agentID)
	}
	l.version++
	return true
}

// RecordTransaction adds a positive amount to the field selected by the
// transaction type, creating the week entry on first use. The confirmation
// flag is left as it was.
func (l *Ledger) RecordTransaction(agentID string, week models.Week, t models.TransactionType, amount decimal.Decimal) (models.PaymentEntry, error) {
	if !amount.IsPositive() {
		return models.PaymentEntry{}, ErrInvalidAmount
	}
	if !t.Valid() {
		return models.PaymentEntry{}, ErrInvalidTransactionType
	}
	if !week.Valid() {
		return models.PaymentEntry{}, ErrInvalidWeek
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOfAgent(agentID) < 0 {
		return models.PaymentEntry{}, ErrAgentNotFound
	}

	entry := l.weeks[week][agentID]
	switch t {
	case models.TransactionTypeLoan:
		entry.AmountDue = entry.AmountDue.Add(amount)
	case models.TransactionTypeSale:
		entry.SalesValue = entry.SalesValue.Add(amount)
	case models.TransactionTypeReceipt:
		entry.AmountReceived = entry.AmountReceived.Add(amount)
	}
	l.weeks[week][agentID] = entry
	l.version++
	return entry, nil
}

// ConfirmWeek marks the week entry as settled. The balance is not checked
// unless the ledger was built with strict confirmation.
func (l *Ledger) ConfirmWeek(agentID string, week models.Week) (models.PaymentEntry, error) {
	if !week.Valid() {
		return models.PaymentEntry{}, ErrInvalidWeek
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOfAgent(agentID) < 0 {
		return models.PaymentEntry{}, ErrAgentNotFound
	}

	entry := l.weeks[week][agentID]
	if l.strictConfirmation && !entry.IsConfirmed && entry.Balance().IsPositive() {
		return entry, ErrOutstandingBalance
	}
	entry.IsConfirmed = true
	l.weeks[week][agentID] = entry
	l.version++
	return entry, nil
}

// ZeroOutWeek replaces the week entry with the zero, unconfirmed entry.
// The agent keeps appearing in the week with status No Debt.
func (l *Ledger) ZeroOutWeek(agentID string, week models.Week) (models.PaymentEntry, error) {
	if !week.Valid() {
		return models.PaymentEntry{}, ErrInvalidWeek
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOfAgent(agentID) < 0 {
		return models.PaymentEntry{}, ErrAgentNotFound
	}

	l.weeks[week][agentID] = models.PaymentEntry{}
	l.version++
	return models.PaymentEntry{}, nil
}

// Version returns the number of changes applied so far. Two reads that see
// the same version see the same state.
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// ListGroups returns groups in creation order
func (l *Ledger) ListGroups() []models.Group {
	l.mu.RLock()
	defer l.mu.RUnlock()

	groups := make([]models.Group, len(l.groups))
	copy(groups, l.groups)
	return groups
}

// ListAgents returns agents in creation order
func (l *Ledger) ListAgents() []models.Agent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	agents := make([]models.Agent, 0, len(l.agents))
	for _, a := range l.agents {
		agents = append(agents, cloneAgent(a))
	}
	return agents
}

// GetAgent returns a copy of the agent
func (l *Ledger) GetAgent(agentID string) (models.Agent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.indexOfAgent(agentID)
	if idx < 0 {
		return models.Agent{}, ErrAgentNotFound
	}
	return cloneAgent(l.agents[idx]), nil
}

// Entry returns the week entry of an agent; absent entries read as zero
func (l *Ledger) Entry(agentID string, week models.Week) (models.PaymentEntry, error) {
	if !week.Valid() {
		return models.PaymentEntry{}, ErrInvalidWeek
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.weeks[week][agentID], nil
}

// HasEntry reports whether an entry is stored for the pair. Reads never
// depend on this; it exists to observe the cascade and the zero-out semantics.
func (l *Ledger) HasEntry(agentID string, week models.Week) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.weeks[week][agentID]
	return ok
}

func (l *Ledger) indexOfAgent(agentID string) int {
	for i, a := range l.agents {
		if a.ID == agentID {
			return i
		}
	}
	return -1
}

func cloneAgent(a models.Agent) models.Agent {
	ids := make([]string, len(a.GroupIDs))
	copy(ids, a.GroupIDs)
	a.GroupIDs = ids
	return a
}
