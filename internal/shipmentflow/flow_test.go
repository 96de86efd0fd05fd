package shipmentflow

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_AllowedTransitions(t *testing.T) {
	rule, err := Plan(InTransit, Request{To: Delivered})
	require.NoError(t, err)
	assert.Equal(t, []SideEffect{PublishEvent}, rule.SideEffects)

	rule, err = Plan(Retained, Request{To: InTransit})
	require.NoError(t, err)
	assert.True(t, rule.Has(ClearRetention))
	assert.True(t, rule.Has(PublishEvent))
}

func TestPlan_RetentionNeedsReason(t *testing.T) {
	_, err := Plan(InTransit, Request{To: Retained, RetentionReason: "  "})
	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []Field{FieldRetentionReason}, missing.Fields)

	rule, err := Plan(InTransit, Request{To: Retained, RetentionReason: "address not found"})
	require.NoError(t, err)
	assert.True(t, rule.Has(StampRetention))
}

func TestPlan_FinalDeliveryNeedsReceiver(t *testing.T) {
	_, err := Plan(Delivered, Request{To: DeliveredFinal, ReceiverName: "Ana"})
	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []Field{FieldDeliveryDate, FieldDeliveryTime}, missing.Fields)
	assert.Contains(t, err.Error(), "deliveryDate")

	rule, err := Plan(PartiallyDelivered, Request{
		To:           DeliveredFinal,
		ReceiverName: "Ana",
		DeliveryDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		DeliveryTime: "14:30",
	})
	require.NoError(t, err)
	assert.True(t, rule.Has(StampDeliveredAt))
	assert.True(t, rule.Has(NotifyClient))
}

func TestPlan_Rejections(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want error
	}{
		{InTransit, DeliveredFinal, ErrIllegalTransition},
		{DeliveredFinal, InTransit, ErrIllegalTransition},
		{Delivered, Retained, ErrIllegalTransition},
		{InTransit, InTransit, ErrIllegalTransition},
		{"lost", Delivered, ErrUnknownStatus},
		{InTransit, "teleported", ErrUnknownStatus},
	}
	for _, tt := range tests {
		_, err := Plan(tt.from, Request{To: tt.to})
		assert.True(t, errors.Is(err, tt.want), "%s -> %s: %v", tt.from, tt.to, err)
	}
}

func TestNext(t *testing.T) {
	assert.Equal(t, []Status{Delivered, PartiallyDelivered, Retained}, Next(InTransit))
	assert.Empty(t, Next(DeliveredFinal))
	assert.True(t, DeliveredFinal.Terminal())
	assert.False(t, Delivered.Terminal())
}
