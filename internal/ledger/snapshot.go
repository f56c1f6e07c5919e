package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"

	"cambistas-backend/internal/models"
)

// SnapshotVersion is written into every encoded snapshot
const SnapshotVersion = 1

// Snapshot is a deep copy of the whole record set. Weeks are keyed by the
// week number as a string so the document stays plain JSON.
type Snapshot struct {
	Version int                                       `json:"version"`
	Groups  []models.Group                            `json:"groups"`
	Agents  []models.Agent                            `json:"agents"`
	Weeks   map[string]map[string]models.PaymentEntry `json:"weeks"`
}

// Snapshot copies the current state
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Snapshot{
		Version: SnapshotVersion,
		Groups:  make([]models.Group, len(l.groups)),
		Agents:  make([]models.Agent, 0, len(l.agents)),
		Weeks:   make(map[string]map[string]models.PaymentEntry, len(l.weeks)),
	}
	copy(s.Groups, l.groups)
	for _, a := range l.agents {
		s.Agents = append(s.Agents, cloneAgent(a))
	}
	for w, entries := range l.weeks {
		copied := make(map[string]models.PaymentEntry, len(entries))
		for id, e := range entries {
			copied[id] = e
		}
		s.Weeks[strconv.Itoa(int(w))] = copied
	}
	return s
}

// Restore replaces the current state with the snapshot. Entries of agents
// missing from the snapshot and weeks outside the fixed set are rejected so a
// restored ledger always satisfies the cascade rule.
func (l *Ledger) Restore(s Snapshot) error {
	weeks := newWeekMap()
	known := make(map[string]struct{}, len(s.Agents))
	agents := make([]models.Agent, 0, len(s.Agents))
	for _, a := range s.Agents {
		if _, dup := known[a.ID]; dup || a.ID == "" {
			return fmt.Errorf("%w: bad agent id %q", ErrInvalidSnapshot, a.ID)
		}
		known[a.ID] = struct{}{}
		agents = append(agents, cloneAgent(a))
	}

	for key, entries := range s.Weeks {
		w, err := ParseWeek(key)
		if err != nil {
			return fmt.Errorf("%w: week %q", ErrInvalidSnapshot, key)
		}
		for id, e := range entries {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("%w: entry for unknown agent %q", ErrInvalidSnapshot, id)
			}
			if e.AmountDue.IsNegative() || e.AmountReceived.IsNegative() || e.SalesValue.IsNegative() {
				return fmt.Errorf("%w: negative amount for agent %q", ErrInvalidSnapshot, id)
			}
			weeks[w][id] = e
		}
	}

	groups := make([]models.Group, len(s.Groups))
	copy(groups, s.Groups)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.groups = groups
	l.agents = agents
	l.weeks = weeks
	l.version++
	return nil
}

// EncodeSnapshot serializes a snapshot for a BlobStore
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	return json.Marshal(s)
}

// DecodeSnapshot parses a stored snapshot
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if s.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, s.Version)
	}
	return s, nil
}
