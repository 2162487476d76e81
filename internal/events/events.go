// Package events defines the observability events the gateway publishes and
// the sinks they fan out to. Events mirror state transitions one-to-one: a
// consumer replaying the stream can reconstruct every registry and governance
// change without querying the service.
package events

import (
	"context"
	"time"
)

// Type names an event. Values are part of the published contract.
type Type string

const (
	TypeAttestationPosted      Type = "attestation_posted"
	TypeMatchQueried           Type = "match_queried"
	TypeTreasuryUpdated        Type = "treasury_updated"
	TypeTransactionCostUpdated Type = "transaction_cost_updated"
	TypeDataTypeStatusSet      Type = "data_type_status_set"
	TypeTokenPaymentSet        Type = "token_payment_set"
	TypePaused                 Type = "paused"
	TypeUnpaused               Type = "unpaused"
	TypeRoleGranted            Type = "role_granted"
	TypeRoleRevoked            Type = "role_revoked"
	TypeLogicUpgraded          Type = "logic_upgraded"
)

// Event is the envelope for every published notification. Payload shapes are
// owned by the emitting service.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// Publisher fans events out to a sink. Publishing is best-effort for
// observability events: emitters log failures but do not fail the triggering
// call, since registry state is already committed when events go out.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards all events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
