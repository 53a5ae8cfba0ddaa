package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"propex/internal/wallet/models"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
	"propex/pkg/platform/audit"
	"propex/pkg/platform/sentinel"
)

// CurrencyError is one currency's provisioning failure. Err keeps the
// partner's typed error when the partner refused.
type CurrencyError struct {
	Currency string
	Err      error
}

func (e CurrencyError) Error() string {
	return e.Currency + ": " + e.Err.Error()
}

func (e CurrencyError) Unwrap() error {
	return e.Err
}

// Result reports one user's reconciliation. Currencies are listed by code;
// the digital IBAN appears as models.CurrencyIBAN.
type Result struct {
	UserID  id.UserID
	Created []string
	Failed  []string
	Adopted []string
	Errors  []CurrencyError
	// Skipped is set when the user is not eligible; nothing else is then.
	Skipped models.SkipReason
}

func (r *Result) fail(currency string, err error) {
	r.Failed = append(r.Failed, currency)
	r.Errors = append(r.Errors, CurrencyError{Currency: currency, Err: err})
}

// EnsureUserWallets provisions whatever the user's role requires and they do
// not hold yet. Per-currency failures land in the result, not in the
// returned error, which is reserved for failures to load the user at all.
func (s *Service) EnsureUserWallets(ctx context.Context, userID id.UserID) (result *Result, err error) {
	ctx, span := s.tracer.Start(ctx, "wallet.EnsureUserWallets")
	span.SetAttributes(attribute.String("user_id", userID.String()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if result != nil {
			span.SetAttributes(
				attribute.Int("created", len(result.Created)),
				attribute.Int("failed", len(result.Failed)),
			)
		}
		span.End()
	}()

	acc, err := s.store.FindAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	res := &Result{UserID: userID}
	if reason := acc.Eligibility(); reason != models.SkipNone {
		res.Skipped = reason
		if s.metrics != nil {
			s.metrics.UsersSkipped.WithLabelValues(string(reason)).Inc()
		}
		if s.logger != nil {
			s.logger.DebugContext(ctx, "wallet reconciliation skipped", "user_id", userID, "reason", string(reason))
		}
		return res, nil
	}

	held, err := s.heldCurrencies(ctx, acc, res)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load wallets")
	}

	required := models.RequiredFor(acc.Role, s.cfg.BaseCurrencies, s.cfg.Settlement)
	for _, cur := range required.Currencies {
		if held[cur] {
			continue
		}
		if err := s.provisionWallet(ctx, acc, cur); err != nil {
			s.provisionFailed(ctx, acc, string(cur), err)
			res.fail(string(cur), err)
			continue
		}
		res.Created = append(res.Created, string(cur))
	}
	if required.IBAN {
		created, err := s.ensureIBAN(ctx, acc)
		switch {
		case err != nil:
			s.provisionFailed(ctx, acc, models.CurrencyIBAN, err)
			res.fail(models.CurrencyIBAN, err)
		case created:
			res.Created = append(res.Created, models.CurrencyIBAN)
		}
	}

	if s.metrics != nil {
		s.metrics.UsersReconciled.Inc()
	}
	if s.logger != nil && (len(res.Created) > 0 || len(res.Failed) > 0) {
		s.logger.InfoContext(ctx, "wallets reconciled",
			"user_id", userID,
			"created", res.Created,
			"failed", res.Failed,
			"adopted", res.Adopted,
		)
	}
	return res, nil
}

// heldCurrencies is the union of locally recorded wallets and what the
// partner lists. Partner wallets unknown locally are recorded. A failed
// partner listing falls back to the local view.
func (s *Service) heldCurrencies(ctx context.Context, acc *models.Account, res *Result) (map[id.Currency]bool, error) {
	local, err := s.store.ListWallets(ctx, acc.UserID)
	if err != nil {
		return nil, err
	}
	held := make(map[id.Currency]bool, len(local))
	for _, w := range local {
		held[w.Currency] = true
	}

	remote, err := s.partner.ListWallets(ctx, acc.PartnerUserRef)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "partner wallet listing failed, reconciling from local view",
				"user_id", acc.UserID,
				"error", err,
			)
		}
		return held, nil
	}
	for _, pw := range remote {
		cur, err := id.ParseCurrency(pw.Currency)
		if err != nil || held[cur] {
			continue
		}
		// The partner already has it; never create a second one.
		held[cur] = true
		w := &models.Wallet{
			ID:              id.NewWalletID(),
			UserID:          acc.UserID,
			Currency:        cur,
			PartnerWalletID: pw.WalletID,
			Address:         pw.Address,
			CreatedAt:       s.now(),
		}
		if err := s.store.SaveWallet(ctx, w); err != nil && !errors.Is(err, sentinel.ErrConflict) {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "failed to record partner wallet", "user_id", acc.UserID, "currency", string(cur), "error", err)
			}
			continue
		}
		res.Adopted = append(res.Adopted, string(cur))
		if s.metrics != nil {
			s.metrics.WalletsAdopted.WithLabelValues(string(cur)).Inc()
		}
		s.logAudit(ctx, audit.EventWalletAdopted,
			"user_id", acc.UserID,
			"currency", string(cur),
		)
	}
	return held, nil
}

func (s *Service) provisionWallet(ctx context.Context, acc *models.Account, cur id.Currency) error {
	pw, err := s.partner.CreateWallet(ctx, acc.PartnerUserRef, string(cur))
	if err != nil {
		return err
	}
	w := &models.Wallet{
		ID:              id.NewWalletID(),
		UserID:          acc.UserID,
		Currency:        cur,
		PartnerWalletID: pw.WalletID,
		Address:         pw.Address,
		CreatedAt:       s.now(),
	}
	if err := s.store.SaveWallet(ctx, w); err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return fmt.Errorf("record wallet %s: %w", pw.WalletID, err)
	}
	if s.metrics != nil {
		s.metrics.WalletsProvisioned.WithLabelValues(string(cur)).Inc()
	}
	s.logAudit(ctx, audit.EventWalletProvisioned,
		"user_id", acc.UserID,
		"currency", string(cur),
	)
	return nil
}

// ensureIBAN reports whether an IBAN was provisioned by this call.
func (s *Service) ensureIBAN(ctx context.Context, acc *models.Account) (bool, error) {
	_, err := s.store.FindIBAN(ctx, acc.UserID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return false, fmt.Errorf("load iban: %w", err)
	}

	pi, err := s.partner.ProvisionDigitalIBAN(ctx, acc.PartnerUserRef)
	if err != nil {
		return false, err
	}
	iban := &models.DigitalIBAN{
		UserID:        acc.UserID,
		IBAN:          pi.IBAN,
		BankName:      pi.BankName,
		AccountNumber: pi.AccountNumber,
		CreatedAt:     s.now(),
	}
	if err := s.store.SaveIBAN(ctx, iban); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("record iban: %w", err)
	}
	if s.metrics != nil {
		s.metrics.WalletsProvisioned.WithLabelValues(models.CurrencyIBAN).Inc()
	}
	s.logAudit(ctx, audit.EventWalletProvisioned,
		"user_id", acc.UserID,
		"currency", models.CurrencyIBAN,
	)
	return true, nil
}

func (s *Service) provisionFailed(ctx context.Context, acc *models.Account, currency string, err error) {
	if s.metrics != nil {
		s.metrics.ProvisionFailures.WithLabelValues(currency).Inc()
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "wallet provisioning failed",
			"user_id", acc.UserID,
			"currency", currency,
			"error", err,
		)
	}
	s.logAudit(ctx, audit.EventWalletProvisionFailed,
		"user_id", acc.UserID,
		"currency", currency,
		"reason", err.Error(),
	)
}
