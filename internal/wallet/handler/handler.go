// Package handler exposes wallet administration to operators: account intake
// from the KYC feed, wallet inspection, and on-demand reconciliation.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"propex/internal/wallet/models"
	"propex/internal/wallet/reconcile"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
	"propex/pkg/platform/httputil"
	"propex/pkg/platform/sentinel"
	"propex/pkg/requestcontext"
)

type Reconciler interface {
	EnsureUserWallets(ctx context.Context, userID id.UserID) (*reconcile.Result, error)
	SweepAllEligibleUsers(ctx context.Context) (*reconcile.SweepReport, error)
}

type Store interface {
	UpsertAccount(ctx context.Context, acc *models.Account) error
	FindAccount(ctx context.Context, userID id.UserID) (*models.Account, error)
	ListWallets(ctx context.Context, userID id.UserID) ([]models.Wallet, error)
	FindIBAN(ctx context.Context, userID id.UserID) (*models.DigitalIBAN, error)
}

type Handler struct {
	reconciler Reconciler
	store      Store
	logger     *slog.Logger
}

func New(reconciler Reconciler, store Store, logger *slog.Logger) *Handler {
	return &Handler{reconciler: reconciler, store: store, logger: logger}
}

// Register mounts the admin wallet endpoints. The router is expected to carry
// the admin token middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/wallets/sweep", h.HandleSweep)
	r.Route("/admin/users/{userID}", func(r chi.Router) {
		r.Put("/account", h.HandleUpsertAccount)
		r.Get("/wallets", h.HandleListWallets)
		r.Post("/wallets/reconcile", h.HandleReconcile)
	})
}

// HandleSweep handles POST /admin/wallets/sweep. The sweep runs to completion
// even if the caller disconnects.
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.reconciler.SweepAllEligibleUsers(context.WithoutCancel(ctx))
	if err != nil && report == nil {
		h.fail(ctx, w, "wallet sweep failed", id.UserID{}, err)
		return
	}
	h.logger.InfoContext(ctx, "wallet sweep triggered by operator",
		"request_id", requestcontext.RequestID(ctx),
		"users", report.Users,
		"created", report.Created,
		"failed", report.Failed,
	)
	httputil.WriteJSON(w, http.StatusOK, fromSweepReport(report))
}

// HandleReconcile handles POST /admin/users/{userID}/wallets/reconcile.
func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.parseUser(w, r)
	if !ok {
		return
	}
	res, err := h.reconciler.EnsureUserWallets(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "wallet reconciliation failed", userID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromResult(res))
}

// HandleUpsertAccount handles PUT /admin/users/{userID}/account.
func (h *Handler) HandleUpsertAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.parseUser(w, r)
	if !ok {
		return
	}
	req, err := httputil.DecodeAndPrepare[UpsertAccountRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	acc := req.toModel(userID)
	if err := h.store.UpsertAccount(ctx, acc); err != nil {
		h.fail(ctx, w, "account upsert failed", userID, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save account"))
		return
	}
	saved, err := h.store.FindAccount(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "account upsert failed", userID, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account"))
		return
	}
	h.logger.InfoContext(ctx, "account upserted",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"role", string(saved.Role),
		"kyc_status", string(saved.KYCStatus),
	)
	httputil.WriteJSON(w, http.StatusOK, fromAccount(saved))
}

// HandleListWallets handles GET /admin/users/{userID}/wallets.
func (h *Handler) HandleListWallets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.parseUser(w, r)
	if !ok {
		return
	}
	if _, err := h.store.FindAccount(ctx, userID); err != nil {
		h.fail(ctx, w, "wallet listing failed", userID, storeError(err, "account not found"))
		return
	}
	wallets, err := h.store.ListWallets(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "wallet listing failed", userID, storeError(err, ""))
		return
	}
	iban, err := h.store.FindIBAN(ctx, userID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		h.fail(ctx, w, "wallet listing failed", userID, storeError(err, ""))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromHoldings(userID, wallets, iban))
}

func (h *Handler) parseUser(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, userID id.UserID, err error) {
	args := []any{
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}

func storeError(err error, notFound string) error {
	if notFound != "" && errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "wallet store failure")
}
