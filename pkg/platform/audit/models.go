package audit

import (
	"context"
	"time"

	id "propex/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can apply different retention.
type EventCategory string

const (
	// CategoryFinancial covers money-movement facts: plans, step completions,
	// settlement advancement. These are kept for the life of the transaction.
	CategoryFinancial EventCategory = "financial"

	// CategorySecurity covers rejected actions and authorization failures.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers provisioning and housekeeping.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category      EventCategory
	Timestamp     time.Time
	UserID        id.UserID
	TransactionID string
	Subject       string
	Action        string
	Decision      string
	Reason        string
	RequestID     string
	// ActorID is set when the actor differs from UserID, e.g. the sweep
	// provisioning on a user's behalf.
	ActorID string
}

type AuditEvent string

const (
	EventPlanBuilt           AuditEvent = "plan_built"
	EventCryptoLegSkipped    AuditEvent = "crypto_leg_skipped"
	EventStepCompleted       AuditEvent = "step_completed"
	EventFiatAttested        AuditEvent = "fiat_receipt_attested"
	EventTransactionAdvanced AuditEvent = "transaction_advanced"
	EventActionRejected      AuditEvent = "action_rejected"

	EventWalletProvisioned     AuditEvent = "wallet_provisioned"
	EventWalletProvisionFailed AuditEvent = "wallet_provision_failed"
	EventWalletAdopted         AuditEvent = "wallet_adopted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventPlanBuilt:           CategoryFinancial,
	EventCryptoLegSkipped:    CategoryFinancial,
	EventStepCompleted:       CategoryFinancial,
	EventFiatAttested:        CategoryFinancial,
	EventTransactionAdvanced: CategoryFinancial,

	EventActionRejected: CategorySecurity,

	EventWalletProvisioned:     CategoryOperations,
	EventWalletProvisionFailed: CategoryOperations,
	EventWalletAdopted:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Sink accepts events. Kafka and other forward-only destinations implement
// only this.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a queryable Sink.
type Store interface {
	Sink
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
