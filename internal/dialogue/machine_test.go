package dialogue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
)

var testProduct = models.Product{ID: "1", Name: "Chocolate Truffle Cake", Price: 1000, Rating: 4.6}

func testNow() time.Time {
	return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
}

func walk(t *testing.T, st State, inputs ...string) State {
	t.Helper()
	for _, input := range inputs {
		before := st.Step
		st, _ = Advance(st, input, testNow())
		require.NotEqual(t, before, st.Step, "input %q did not advance from %s", input, before)
	}
	return st
}

func TestAdvance_HappyPath(t *testing.T) {
	st := Start(testProduct)
	assert.Equal(t, StepArea, st.Step)

	st = walk(t, st,
		"Gomti Nagar",
		"5",
		"pickup",
		"skip",
		"2026-06-10",
		"4pm - 6pm",
		"12 Lake View Road",
		"9876543210",
	)

	assert.Equal(t, StepConfirm, st.Step)
	assert.Equal(t, models.BookingDraft{
		ProductID:    "1",
		ProductName:  "Chocolate Truffle Cake",
		PricePerKg:   1000,
		Size:         5,
		DeliveryType: models.DeliveryPickup,
		DeliveryDate: "2026-06-10",
		DeliveryTime: "4pm - 6pm",
		Area:         "Gomti Nagar",
		Address:      "12 Lake View Road",
		Phone:        "9876543210",
	}, st.Draft)
}

func TestAdvance_InvalidInputKeepsStepAndDraft(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string // valid inputs to reach the step under test
		bad    []string
	}{
		{"area", nil, []string{"", "   "}},
		{"size", []string{"Gomti Nagar"}, []string{"abc", "1", "13", "2.5", ""}},
		{"deliveryType", []string{"Gomti Nagar", "5"}, []string{"courier", "drone", ""}},
		{"date", []string{"Gomti Nagar", "5", "pickup", "skip"}, []string{"tomorrow", "10-06-2026", "2020-01-01", ""}},
		{"time", []string{"Gomti Nagar", "5", "pickup", "skip", "2026-06-10"}, []string{""}},
		{"address", []string{"Gomti Nagar", "5", "pickup", "skip", "2026-06-10", "4pm"}, []string{""}},
		{"phone", []string{"Gomti Nagar", "5", "pickup", "skip", "2026-06-10", "4pm", "12 Lake View Road"}, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := walk(t, Start(testProduct), tt.inputs...)
			for _, bad := range tt.bad {
				next, reply := Advance(st, bad, testNow())
				assert.Equal(t, st.Step, next.Step, "input %q should not advance", bad)
				assert.Equal(t, st.Draft, next.Draft, "input %q should not touch the draft", bad)
				assert.NotEmpty(t, reply)
			}
		})
	}
}

func TestAdvance_InstructionCanBeSkippedOrGiven(t *testing.T) {
	base := walk(t, Start(testProduct), "Gomti Nagar", "5", "delivery")

	skipped, _ := Advance(base, "skip", testNow())
	assert.Equal(t, StepDate, skipped.Step)
	assert.Empty(t, skipped.Draft.Instruction)

	given, _ := Advance(base, "write Happy Birthday on top", testNow())
	assert.Equal(t, StepDate, given.Step)
	assert.Equal(t, "write Happy Birthday on top", given.Draft.Instruction)
}

func TestAdvance_DateToday(t *testing.T) {
	st := walk(t, Start(testProduct), "Gomti Nagar", "5", "pickup", "skip")

	// Same day is allowed even when the clock is past midnight.
	next, _ := Advance(st, "2026-06-01", testNow())
	assert.Equal(t, StepTime, next.Step)
}

func TestAdvance_DeliveryTypeIsCaseInsensitive(t *testing.T) {
	st := walk(t, Start(testProduct), "Gomti Nagar", "5")
	next, _ := Advance(st, "Delivery", testNow())
	assert.Equal(t, StepInstruction, next.Step)
	assert.Equal(t, models.DeliveryHome, next.Draft.DeliveryType)
}

func TestConfirm_RendersDraftValuesExactly(t *testing.T) {
	st := walk(t, Start(testProduct),
		"Gomti Nagar", "3", "delivery", "skip", "2026-06-10", "4pm - 6pm", "12 Lake View Road", "9876543210")

	summary := Confirm(st.Draft)

	assert.Contains(t, summary, "Chocolate Truffle Cake, 3 kg")
	assert.Contains(t, summary, "delivery to Gomti Nagar, 12 Lake View Road")
	assert.Contains(t, summary, "2026-06-10 at 4pm - 6pm")
	// 1000*3 + 50 delivery, no coupon at this point.
	assert.Contains(t, summary, "total: 3050")
}

func TestAdvance_ConfirmStepRepeatsSummary(t *testing.T) {
	st := walk(t, Start(testProduct),
		"Gomti Nagar", "3", "pickup", "skip", "2026-06-10", "4pm", "12 Lake View Road", "9876543210")
	require.Equal(t, StepConfirm, st.Step)

	next, reply := Advance(st, "anything", testNow())
	assert.Equal(t, StepConfirm, next.Step)
	assert.Contains(t, reply, "total: 3000")
}
