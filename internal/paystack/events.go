package paystack

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Webhook event names handled by the receiver.
const (
	EventChargeSuccess       = "charge.success"
	EventChargeFailed        = "charge.failed"
	EventSubscriptionCreate  = "subscription.create"
	EventSubscriptionDisable = "subscription.disable"
)

// ErrMalformedEvent is returned when a webhook body is not a Paystack event envelope.
var ErrMalformedEvent = errors.New("malformed paystack event")

// Event is a decoded webhook event. The concrete type tells which payload it carries.
type Event interface {
	EventType() string
}

// ChargeSuccessEvent is a completed payment.
type ChargeSuccessEvent struct {
	Data Transaction
}

func (*ChargeSuccessEvent) EventType() string { return EventChargeSuccess }

// ChargeFailedEvent is a declined or abandoned payment.
type ChargeFailedEvent struct {
	Data Transaction
}

func (*ChargeFailedEvent) EventType() string { return EventChargeFailed }

// SubscriptionCreateEvent is sent when a customer is enrolled on a plan.
type SubscriptionCreateEvent struct {
	Data Subscription
}

func (*SubscriptionCreateEvent) EventType() string { return EventSubscriptionCreate }

// SubscriptionDisableEvent is sent when a subscription is cancelled or completes.
type SubscriptionDisableEvent struct {
	Data Subscription
}

func (*SubscriptionDisableEvent) EventType() string { return EventSubscriptionDisable }

// UnknownEvent carries any event type the receiver has no schema for.
type UnknownEvent struct {
	Type string
	Data json.RawMessage
}

func (e *UnknownEvent) EventType() string { return e.Type }

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ParseEvent decodes a raw webhook body into its typed event.
func ParseEvent(payload []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	}

	switch env.Event {
	case EventChargeSuccess:
		ev := &ChargeSuccessEvent{}
		if err := decodeData(env, &ev.Data); err != nil {
			return nil, err
		}
		return ev, nil
	case EventChargeFailed:
		ev := &ChargeFailedEvent{}
		if err := decodeData(env, &ev.Data); err != nil {
			return nil, err
		}
		return ev, nil
	case EventSubscriptionCreate:
		ev := &SubscriptionCreateEvent{}
		if err := decodeData(env, &ev.Data); err != nil {
			return nil, err
		}
		return ev, nil
	case EventSubscriptionDisable:
		ev := &SubscriptionDisableEvent{}
		if err := decodeData(env, &ev.Data); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return &UnknownEvent{Type: env.Event, Data: env.Data}, nil
	}
}

func decodeData(env envelope, out interface{}) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s has no data", ErrMalformedEvent, env.Event)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %v", ErrMalformedEvent, env.Event, err)
	}
	return nil
}
