// Package status owns the application lifecycle state machine.
//
// The transition table lives here and nowhere else; everything that wants
// to move an application between statuses goes through the Tracker so the
// table cannot be bypassed or mutated.
package status

// Status values an application can hold.
const (
	Saved              = "saved"
	Applied            = "applied"
	Screening          = "screening"
	InterviewScheduled = "interview_scheduled"
	Interviewed        = "interviewed"
	Offer              = "offer"
	Rejected           = "rejected"
	Accepted           = "accepted"
	Withdrawn          = "withdrawn"
)

// transitions maps each status to the statuses it may move to.
// rejected and withdrawn are terminal.
var transitions = map[string][]string{
	Saved:              {Applied, Withdrawn},
	Applied:            {Screening, InterviewScheduled, Rejected, Withdrawn},
	Screening:          {InterviewScheduled, Rejected, Withdrawn},
	InterviewScheduled: {Interviewed, Rejected, Withdrawn},
	Interviewed:        {Offer, Rejected, Withdrawn},
	Offer:              {Accepted, Rejected, Withdrawn},
	Rejected:           {},
	Accepted:           {Withdrawn},
	Withdrawn:          {},
}

// All returns every known status, in lifecycle order.
func All() []string {
	return []string{
		Saved, Applied, Screening, InterviewScheduled,
		Interviewed, Offer, Rejected, Accepted, Withdrawn,
	}
}

// Known reports whether s is a status the engine recognises.
func Known(s string) bool {
	_, ok := transitions[s]
	return ok
}

// IsValidTransition reports whether moving from one status to another is
// allowed. Staying in the same status is always a valid no-op.
func IsValidTransition(from, to string) bool {
	if from == to {
		return Known(from)
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Available returns the statuses reachable from the current one.
func Available(from string) []string {
	next := transitions[from]
	out := make([]string, len(next))
	copy(out, next)
	return out
}
