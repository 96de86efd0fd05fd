// Package shipmentflow holds the shipment status machine: which status changes
// are allowed, what each change needs from the caller and what it triggers.
package shipmentflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Status string

const (
	InTransit          Status = "in_transit"
	Retained           Status = "retained"
	Delivered          Status = "delivered"
	PartiallyDelivered Status = "partially_delivered"
	DeliveredFinal     Status = "delivered_final"
)

// Field names a piece of information a transition requires.
type Field string

const (
	FieldRetentionReason Field = "retentionReason"
	FieldReceiverName    Field = "receiverName"
	FieldDeliveryDate    Field = "deliveryDate"
	FieldDeliveryTime    Field = "deliveryTime"
)

// SideEffect is something the caller must carry out once a transition is applied.
type SideEffect string

const (
	StampRetention   SideEffect = "stamp_retention"
	ClearRetention   SideEffect = "clear_retention"
	StampDeliveredAt SideEffect = "stamp_delivered_at"
	NotifyClient     SideEffect = "notify_client"
	PublishEvent     SideEffect = "publish_event"
)

type Rule struct {
	Required    []Field
	SideEffects []SideEffect
}

type edge struct{ from, to Status }

var finalDelivery = Rule{
	Required:    []Field{FieldReceiverName, FieldDeliveryDate, FieldDeliveryTime},
	SideEffects: []SideEffect{StampDeliveredAt, NotifyClient},
}

var transitions = map[edge]Rule{
	{InTransit, Retained}: {
		Required:    []Field{FieldRetentionReason},
		SideEffects: []SideEffect{StampRetention},
	},
	{InTransit, Delivered}:               {},
	{InTransit, PartiallyDelivered}:      {},
	{Retained, InTransit}:                {SideEffects: []SideEffect{ClearRetention}},
	{Retained, Delivered}:                {SideEffects: []SideEffect{ClearRetention}},
	{Retained, PartiallyDelivered}:       {SideEffects: []SideEffect{ClearRetention}},
	{PartiallyDelivered, Delivered}:      {},
	{Delivered, DeliveredFinal}:          finalDelivery,
	{PartiallyDelivered, DeliveredFinal}: finalDelivery,
}

var (
	ErrUnknownStatus     = errors.New("unknown shipment status")
	ErrIllegalTransition = errors.New("illegal shipment status transition")
)

// MissingFieldsError lists the fields a transition needs but did not get.
type MissingFieldsError struct {
	To     Status
	Fields []Field
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("status %s requires %s", e.To, strings.Join(names, ", "))
}

// Request carries the data supplied alongside a status change.
type Request struct {
	To              Status
	RetentionReason string
	ReceiverName    string
	DeliveryDate    time.Time
	DeliveryTime    string
	Note            string
}

func (r Request) has(f Field) bool {
	switch f {
	case FieldRetentionReason:
		return strings.TrimSpace(r.RetentionReason) != ""
	case FieldReceiverName:
		return strings.TrimSpace(r.ReceiverName) != ""
	case FieldDeliveryDate:
		return !r.DeliveryDate.IsZero()
	case FieldDeliveryTime:
		return strings.TrimSpace(r.DeliveryTime) != ""
	}
	return false
}

func Valid(s Status) bool {
	switch s {
	case InTransit, Retained, Delivered, PartiallyDelivered, DeliveredFinal:
		return true
	}
	return false
}

func (s Status) Terminal() bool { return s == DeliveredFinal }

// Plan checks a requested status change and returns the rule to apply. Every
// applied change is also published, so PublishEvent is always appended.
func Plan(from Status, req Request) (Rule, error) {
	if !Valid(from) || !Valid(req.To) {
		return Rule{}, fmt.Errorf("%w: %q -> %q", ErrUnknownStatus, from, req.To)
	}
	rule, ok := transitions[edge{from, req.To}]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, req.To)
	}

	var missing []Field
	for _, f := range rule.Required {
		if !req.has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Rule{}, &MissingFieldsError{To: req.To, Fields: missing}
	}

	effects := make([]SideEffect, 0, len(rule.SideEffects)+1)
	effects = append(effects, rule.SideEffects...)
	effects = append(effects, PublishEvent)
	return Rule{Required: rule.Required, SideEffects: effects}, nil
}

// Next lists the statuses reachable from s, sorted.
func Next(s Status) []Status {
	var out []Status
	for e := range transitions {
		if e.from == s {
			out = append(out, e.to)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r Rule) Has(effect SideEffect) bool {
	for _, e := range r.SideEffects {
		if e == effect {
			return true
		}
	}
	return false
}
