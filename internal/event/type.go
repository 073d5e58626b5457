package event

// ComputeEventsQueue receives a message after every daily or weekly
// computation so downstream BI jobs can refresh without polling.
const ComputeEventsQueue = "availability_compute_events"

const (
	ScopeDaily  = "daily"
	ScopeWeekly = "weekly"
)

// ComputeCompletedEvent describes one finished computation run.
type ComputeCompletedEvent struct {
	EventID       string `json:"event_id"`
	Scope         string `json:"scope"`
	Date          string `json:"date,omitempty"`
	WeekStart     string `json:"week_start,omitempty"`
	PolicyID      int64  `json:"policy_id"`
	PolicyVersion int    `json:"policy_version"`
	RowCount      int    `json:"row_count"`
	ComputedAt    string `json:"computed_at"`
}
