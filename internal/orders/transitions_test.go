package orders

import (
	"testing"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from models.OrderStatus
		to   models.OrderStatus
		want bool
	}{
		{models.StatusPending, models.StatusApproved, true},
		{models.StatusPending, models.StatusRejected, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusApproved, models.StatusPreparing, true},
		{models.StatusPreparing, models.StatusReady, true},
		{models.StatusReady, models.StatusDelivered, true},

		{models.StatusPending, models.StatusPreparing, false},
		{models.StatusPending, models.StatusDelivered, false},
		{models.StatusApproved, models.StatusDelivered, false},
		{models.StatusApproved, models.StatusPending, false},
		{models.StatusDelivered, models.StatusPending, false},
		{models.StatusCancelled, models.StatusApproved, false},
		{models.StatusRejected, models.StatusApproved, false},
		{models.StatusReady, models.StatusPreparing, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []models.OrderStatus{models.StatusRejected, models.StatusCancelled, models.StatusDelivered}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = false, want true", s)
		}
	}

	open := []models.OrderStatus{models.StatusPending, models.StatusApproved, models.StatusPreparing, models.StatusReady}
	for _, s := range open {
		if IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = true, want false", s)
		}
	}
}

func TestReviewable(t *testing.T) {
	allowed := []models.OrderStatus{models.StatusApproved, models.StatusPreparing, models.StatusReady, models.StatusDelivered}
	for _, s := range allowed {
		if !Reviewable(s) {
			t.Errorf("Reviewable(%s) = false, want true", s)
		}
	}

	denied := []models.OrderStatus{models.StatusPending, models.StatusRejected, models.StatusCancelled}
	for _, s := range denied {
		if Reviewable(s) {
			t.Errorf("Reviewable(%s) = true, want false", s)
		}
	}
}
