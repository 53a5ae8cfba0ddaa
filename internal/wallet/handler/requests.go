package handler

import (
	"strings"

	"propex/internal/wallet/models"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
)

// UpsertAccountRequest is the body of PUT /admin/users/{userID}/account.
type UpsertAccountRequest struct {
	Role           string `json:"role"`
	KYCStatus      string `json:"kyc_status"`
	KYCTier        int    `json:"kyc_tier"`
	PartnerUserRef string `json:"partner_user_ref"`
}

func (r *UpsertAccountRequest) Normalize() {
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
	r.KYCStatus = strings.ToUpper(strings.TrimSpace(r.KYCStatus))
	r.PartnerUserRef = strings.TrimSpace(r.PartnerUserRef)
}

func (r *UpsertAccountRequest) Validate() error {
	if !models.Role(r.Role).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "role must be BUYER or SELLER")
	}
	switch models.KYCStatus(r.KYCStatus) {
	case models.KYCPending, models.KYCApproved, models.KYCRejected:
	default:
		return dErrors.New(dErrors.CodeValidation, "kyc_status must be PENDING, APPROVED or REJECTED")
	}
	if r.KYCTier < 0 {
		return dErrors.New(dErrors.CodeValidation, "kyc_tier must not be negative")
	}
	return nil
}

func (r *UpsertAccountRequest) toModel(userID id.UserID) *models.Account {
	return &models.Account{
		UserID:         userID,
		Role:           models.Role(r.Role),
		KYCStatus:      models.KYCStatus(r.KYCStatus),
		KYCTier:        r.KYCTier,
		PartnerUserRef: r.PartnerUserRef,
	}
}
