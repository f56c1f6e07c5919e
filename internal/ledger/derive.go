package ledger

import (
	"cambistas-backend/internal/models"

	"github.com/shopspring/decimal"
)

// DeriveRow builds the view row of an agent for one week. It is the only
// place balance and status reach a consumer; listings and both exporters
// go through it.
func DeriveRow(agent models.Agent, week models.Week, entry models.PaymentEntry) models.Row {
	return models.Row{
		AgentID:        agent.ID,
		Name:           agent.Name,
		Week:           week,
		SalesValue:     entry.SalesValue,
		AmountDue:      entry.AmountDue,
		AmountReceived: entry.AmountReceived,
		Balance:        entry.Balance(),
		Status:         entry.Status(),
		IsConfirmed:    entry.IsConfirmed,
	}
}

// SummarizeWeek folds the entries of one week into its totals.
// Confirmed entries count their receipts, unconfirmed entries with a positive
// balance count their balance and everything else only adds to the awaiting count.
func SummarizeWeek(week models.Week, entries []models.PaymentEntry) models.WeekSummary {
	s := models.WeekSummary{
		Week:          week,
		TotalReceived: decimal.Zero,
		TotalPending:  decimal.Zero,
	}
	for _, e := range entries {
		switch e.Status() {
		case models.StatusPaid:
			s.TotalReceived = s.TotalReceived.Add(e.AmountReceived)
		case models.StatusPending:
			s.TotalPending = s.TotalPending.Add(e.Balance())
		case models.StatusAwaitingConfirmation:
			s.AwaitingConfirmation++
		}
	}
	return s
}

// DeriveRow returns the row of an existing agent for the given week
func (l *Ledger) DeriveRow(agentID string, week models.Week) (models.Row, error) {
	if !week.Valid() {
		return models.Row{}, ErrInvalidWeek
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.indexOfAgent(agentID)
	if idx < 0 {
		return models.Row{}, ErrAgentNotFound
	}
	return DeriveRow(l.agents[idx], week, l.weeks[week][agentID]), nil
}

// Rows derives the rows of the given agents for one week, keeping their order
func (l *Ledger) Rows(agents []models.Agent, week models.Week) ([]models.Row, error) {
	if !week.Valid() {
		return nil, ErrInvalidWeek
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rowsLocked(agents, week), nil
}

func (l *Ledger) rowsLocked(agents []models.Agent, week models.Week) []models.Row {
	rows := make([]models.Row, 0, len(agents))
	for _, a := range agents {
		rows = append(rows, DeriveRow(a, week, l.weeks[week][a.ID]))
	}
	return rows
}

// MonthlySummary computes one WeekSummary per tracked week over the given agents.
// Agents are taken as given; ids unknown to the ledger read as zero entries.
func (l *Ledger) MonthlySummary(agents []models.Agent) models.MonthlySummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.summaryLocked(agents)
}

func (l *Ledger) summaryLocked(agents []models.Agent) models.MonthlySummary {
	summary := models.MonthlySummary{Weeks: make([]models.WeekSummary, 0, len(models.Weeks))}
	for _, w := range models.Weeks {
		entries := make([]models.PaymentEntry, 0, len(agents))
		for _, a := range agents {
			entries = append(entries, l.weeks[w][a.ID])
		}
		summary.Weeks = append(summary.Weeks, SummarizeWeek(w, entries))
	}
	return summary
}
