package models

// GroupAll selects every agent regardless of group membership
const GroupAll = "all"

// Group is a named cohort of agents
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Agent is a field operator ("cambista") tracked week by week.
// GroupIDs may be empty or reference groups that no longer exist.
type Agent struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	GroupIDs []string `json:"group_ids"`
}

// InGroup reports whether the agent matches a group tab
func (a Agent) InGroup(groupID string) bool {
	if groupID == GroupAll {
		return true
	}
	for _, id := range a.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// StatusFilter narrows an agent listing by the state of one week
type StatusFilter string

const (
	StatusFilterAll     StatusFilter = "all"
	StatusFilterPaid    StatusFilter = "paid"    // Confirmed entries
	StatusFilterPending StatusFilter = "pending" // Unconfirmed entries with a positive balance
)

// Valid reports whether f is a known status filter
func (f StatusFilter) Valid() bool {
	switch f {
	case StatusFilterAll, StatusFilterPaid, StatusFilterPending:
		return true
	}
	return false
}

// AgentFilter selects agents for listings, summaries and exports
type AgentFilter struct {
	GroupID string       `json:"group_id"`
	Status  StatusFilter `json:"status"`
	Week    Week         `json:"week"`
}

// CreateGroupRequest represents the request body for creating a group
type CreateGroupRequest struct {
	Name string `json:"name" validate:"notblank,max=120"`
}

// CreateAgentRequest represents the request body for creating an agent
type CreateAgentRequest struct {
	Name     string   `json:"name" validate:"notblank,max=120"`
	GroupIDs []string `json:"group_ids" validate:"omitempty,dive,notblank"`
}
