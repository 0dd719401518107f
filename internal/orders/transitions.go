package orders

import "github.com/sweetlayer/cakeshop/backend/internal/models"

// transitions is the only place a status change is allowed to be defined.
// Anything not listed here is rejected.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:   {models.StatusApproved, models.StatusRejected, models.StatusCancelled},
	models.StatusApproved:  {models.StatusPreparing},
	models.StatusPreparing: {models.StatusReady},
	models.StatusReady:     {models.StatusDelivered},
}

// reviewable lists the statuses in which a rating/review may be attached.
var reviewable = map[models.OrderStatus]bool{
	models.StatusApproved:  true,
	models.StatusPreparing: true,
	models.StatusReady:     true,
	models.StatusDelivered: true,
}

// CanTransition reports whether an order may move from one status to
// another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status transition is possible.
func IsTerminal(s models.OrderStatus) bool {
	return len(transitions[s]) == 0
}

// Reviewable reports whether a review may be attached in status s.
func Reviewable(s models.OrderStatus) bool {
	return reviewable[s]
}
