// Package dialogue drives the step-by-step booking conversation. The
// transition logic is pure; sessions add concurrency, timers and the call
// into the order service.
package dialogue

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
	"github.com/sweetlayer/cakeshop/backend/internal/pricing"
)

// Step identifies where the conversation currently is.
type Step string

const (
	StepIdle         Step = "idle"
	StepArea         Step = "area"
	StepSize         Step = "size"
	StepDeliveryType Step = "deliveryType"
	StepInstruction  Step = "instruction"
	StepDate         Step = "date"
	StepTime         Step = "time"
	StepAddress      Step = "address"
	StepPhone        Step = "phone"
	StepConfirm      Step = "confirm"
	StepBooked       Step = "booked"
)

// State is the full dialogue state: the current step plus everything
// collected so far. Transitions return a new State and never mutate the
// input.
type State struct {
	Step  Step
	Draft models.BookingDraft
}

const dateLayout = "2006-01-02"

// Start begins a conversation for the given product.
func Start(product models.Product) State {
	return State{
		Step: StepArea,
		Draft: models.BookingDraft{
			ProductID:   product.ID,
			ProductName: product.Name,
			PricePerKg:  product.Price,
		},
	}
}

// Advance feeds one user input into the conversation. It returns the next
// state and the reply to show. Invalid input keeps the state unchanged and
// the reply carries the validation message, so the user retries the same
// step without losing anything already collected.
func Advance(st State, input string, now time.Time) (State, string) {
	input = strings.TrimSpace(input)

	switch st.Step {
	case StepArea:
		if input == "" {
			return st, "Please tell me your area."
		}
		st.Draft.Area = input
		st.Step = StepSize
		return st, "How many kg should the cake be? (2-12)"

	case StepSize:
		size, err := strconv.Atoi(input)
		if err != nil || size < 2 || size > 12 {
			return st, "Size must be a whole number between 2 and 12 kg."
		}
		st.Draft.Size = size
		st.Step = StepDeliveryType
		return st, "Pickup or delivery?"

	case StepDeliveryType:
		t := models.DeliveryType(strings.ToLower(input))
		if !t.Valid() {
			return st, `Please answer "pickup" or "delivery".`
		}
		st.Draft.DeliveryType = t
		st.Step = StepInstruction
		return st, `Any special instruction? (type "skip" if none)`

	case StepInstruction:
		if !strings.EqualFold(input, "skip") {
			st.Draft.Instruction = input
		}
		st.Step = StepDate
		return st, "Which date should we deliver? (YYYY-MM-DD)"

	case StepDate:
		day, err := time.ParseInLocation(dateLayout, input, now.Location())
		if err != nil {
			return st, "Please give the date as YYYY-MM-DD."
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if day.Before(today) {
			return st, "That date has already passed. Pick today or later."
		}
		st.Draft.DeliveryDate = input
		st.Step = StepTime
		return st, "What time window works for you?"

	case StepTime:
		if input == "" {
			return st, "Please pick a time window."
		}
		st.Draft.DeliveryTime = input
		st.Step = StepAddress
		return st, "What is the delivery address?"

	case StepAddress:
		if input == "" {
			return st, "Please give the full address."
		}
		st.Draft.Address = input
		st.Step = StepPhone
		return st, "And a phone number we can reach you on?"

	case StepPhone:
		if input == "" {
			return st, "Please give a phone number."
		}
		st.Draft.Phone = input
		st.Step = StepConfirm
		return st, Confirm(st.Draft)

	case StepConfirm:
		// Booking happens through the session, not through text input.
		return st, Confirm(st.Draft)

	case StepBooked:
		return st, "Your order is placed! The chat will reset in a moment."
	}

	return st, "Pick a cake to start booking."
}

// Confirm renders the order summary strictly from the draft. The total
// comes from the pricing engine with no hidden recomputation; a coupon, if
// any, is applied later at order creation.
func Confirm(d models.BookingDraft) string {
	quote := pricing.QuoteOrder(d.PricePerKg, d.Size, d.DeliveryType, nil)
	var b strings.Builder
	fmt.Fprintf(&b, "Here is your order:\n")
	fmt.Fprintf(&b, "  %s, %d kg\n", d.ProductName, d.Size)
	fmt.Fprintf(&b, "  %s to %s, %s\n", d.DeliveryType, d.Area, d.Address)
	fmt.Fprintf(&b, "  %s at %s\n", d.DeliveryDate, d.DeliveryTime)
	if d.Instruction != "" {
		fmt.Fprintf(&b, "  note: %s\n", d.Instruction)
	}
	fmt.Fprintf(&b, "  total: %d (cake %d + delivery %d)\n", quote.Total, quote.BasePrice, quote.DeliveryCharge)
	b.WriteString(`Reply with "book" to place the order.`)
	return b.String()
}
