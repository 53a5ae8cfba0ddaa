package reconcile

import (
	"context"

	"propex/pkg/attrs"
	id "propex/pkg/domain"
	"propex/pkg/platform/audit"
	"propex/pkg/requestcontext"
)

// sweepActor marks events the sweep emits on a user's behalf.
const sweepActor = "system:wallet-reconciliation"

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	userID, _ := id.ParseUserID(attrs.ExtractString(attributes, "user_id"))
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   attrs.ExtractString(attributes, "currency"),
		Action:    string(event),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestID,
		ActorID:   sweepActor,
	})
}
