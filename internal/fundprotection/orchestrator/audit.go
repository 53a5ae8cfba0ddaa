package orchestrator

import (
	"context"

	"propex/pkg/attrs"
	id "propex/pkg/domain"
	"propex/pkg/platform/audit"
	"propex/pkg/requestcontext"
)

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
		UserID:        userID,
		TransactionID: attrs.ExtractString(attributes, "transaction_id"),
		Subject:       attrs.ExtractString(attributes, "step_type"),
		Action:        string(event),
		Reason:        attrs.ExtractString(attributes, "reason"),
		RequestID:     requestID,
	})
}
