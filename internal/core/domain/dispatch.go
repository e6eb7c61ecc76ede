package domain

// DispatchStatus is the per-call result of routing.
type DispatchStatus string

const (
	DispatchPublished      DispatchStatus = "published"
	DispatchFailed         DispatchStatus = "failed"
	DispatchSkippedInvalid DispatchStatus = "skipped_invalid"
	DispatchNotRouted      DispatchStatus = "not_routed"
)

// DispatchOutcome records what happened to the tool call at Index.
type DispatchOutcome struct {
	Index   int            `json:"index"`
	Kind    ToolKind       `json:"kind"`
	Channel Channel        `json:"channel,omitempty"`
	Status  DispatchStatus `json:"status"`
	Err     error          `json:"-"`
	Error   string         `json:"error,omitempty"`
}

// DispatchReport holds one outcome per dispatched tool call, in order.
type DispatchReport struct {
	Outcomes []DispatchOutcome `json:"outcomes"`
}

// Count returns how many outcomes have the given status.
func (r DispatchReport) Count(status DispatchStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
