package orchestrator

import (
	"context"
	"errors"

	"propex/internal/fundprotection/models"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
	"propex/pkg/platform/sentinel"
)

// loadForParty loads the transaction and the caller's role in it. Unknown
// transactions and non-parties get the same not_found.
func (s *Service) loadForParty(ctx context.Context, txID id.TransactionID, userID id.UserID) (*models.Transaction, models.Role, error) {
	tx, err := s.transactions.FindTransaction(ctx, txID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", dErrors.New(dErrors.CodeNotFound, "transaction not found")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transaction")
	}
	role, ok := tx.RoleOf(userID)
	if !ok {
		return nil, "", dErrors.New(dErrors.CodeNotFound, "transaction not found")
	}
	return tx, role, nil
}
