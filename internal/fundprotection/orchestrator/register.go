package orchestrator

import (
	"context"
	"errors"

	"propex/internal/fundprotection/models"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
	"propex/pkg/platform/sentinel"
)

// RegisterTransaction records a purchase the marketplace has moved to
// OFFER_ACCEPTED so fund protection can plan it. The stored copy is returned.
func (s *Service) RegisterTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	if tx.ID.IsNil() {
		tx.ID = id.NewTransactionID()
	}
	if tx.PropertyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "property_id is required")
	}
	if tx.BuyerID.IsNil() || tx.SellerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "buyer_id and seller_id are required")
	}
	if tx.Currency == "" {
		tx.Currency = s.settlement
	}
	now := s.now(ctx)
	tx.Status = models.TransactionOfferAccepted
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if err := tx.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}

	if err := s.transactions.SaveTransaction(ctx, &tx); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "transaction already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save transaction")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "transaction registered for fund protection",
			"transaction_id", tx.ID,
			"payment_method", string(tx.PaymentMethod),
			"price", tx.Price.String(),
		)
	}
	return &tx, nil
}
