package ledger

import (
	"sort"

	"cambistas-backend/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterAgents returns the agents matching the group and status filters,
// sorted by name under Brazilian Portuguese collation. Equal names fall back
// to the id so the order is total.
func (l *Ledger) FilterAgents(f models.AgentFilter) ([]models.Agent, error) {
	f, err := checkFilter(f)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	matched := l.filterLocked(f)
	l.mu.RUnlock()
	return matched, nil
}

// View is one consistent read of a filter: the selected week's rows, the
// month summary of the same agents and the version both were derived at.
type View struct {
	Version uint64
	Rows    []models.Row
	Summary models.MonthlySummary
}

// View filters and derives under a single read lock, so an agent removed
// concurrently is either fully present or fully absent. Rows stay empty
// when the filter names no valid week.
func (l *Ledger) View(f models.AgentFilter) (View, error) {
	f, err := checkFilter(f)
	if err != nil {
		return View{}, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	agents := l.filterLocked(f)
	v := View{Version: l.version, Summary: l.summaryLocked(agents)}
	if f.Week.Valid() {
		v.Rows = l.rowsLocked(agents, f.Week)
	}
	return v, nil
}

func checkFilter(f models.AgentFilter) (models.AgentFilter, error) {
	if f.GroupID == "" {
		f.GroupID = models.GroupAll
	}
	if f.Status == "" {
		f.Status = models.StatusFilterAll
	}
	if !f.Status.Valid() {
		return f, ErrInvalidStatusFilter
	}
	if f.Status != models.StatusFilterAll && !f.Week.Valid() {
		return f, ErrInvalidWeek
	}
	return f, nil
}

// filterLocked expects l.mu to be held
func (l *Ledger) filterLocked(f models.AgentFilter) []models.Agent {
	matched := make([]models.Agent, 0, len(l.agents))
	for _, a := range l.agents {
		if !a.InGroup(f.GroupID) {
			continue
		}
		if !matchesStatus(l.weeks[f.Week][a.ID], f.Status) {
			continue
		}
		matched = append(matched, cloneAgent(a))
	}
	SortAgents(matched)
	return matched
}

func matchesStatus(e models.PaymentEntry, status models.StatusFilter) bool {
	switch status {
	case models.StatusFilterPaid:
		return e.IsConfirmed
	case models.StatusFilterPending:
		return !e.IsConfirmed && e.Balance().IsPositive()
	default:
		return true
	}
}

// SortAgents orders agents by name for pt-BR readers, then by id.
// A Collator keeps internal buffers, so each call builds its own.
func SortAgents(agents []models.Agent) {
	c := collate.New(language.BrazilianPortuguese)
	sort.SliceStable(agents, func(i, j int) bool {
		if cmp := c.CompareString(agents[i].Name, agents[j].Name); cmp != 0 {
			return cmp < 0
		}
		return agents[i].ID < agents[j].ID
	})
}
