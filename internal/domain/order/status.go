package order

// Status is the lifecycle state of an order.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
	StatusPending   Status = "PENDING"
)

// transitions is the full set of legal status edges. Completed and Canceled
// are terminal. Delivered -> Shipped allows a redelivery after a failed
// hand-off attempt.
var transitions = map[Status][]Status{
	StatusCreated:   {StatusCompleted, StatusCanceled, StatusShipped},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {StatusCompleted, StatusShipped},
}

// CanTransition reports whether moving from s to target is a legal edge.
func (s Status) CanTransition(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing edges.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}
