package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"propex/internal/fundprotection/models"
	"propex/internal/fundprotection/orchestrator"
	"propex/internal/partner"
	id "propex/pkg/domain"
	dErrors "propex/pkg/domain-errors"
	"propex/pkg/platform/httputil"
	"propex/pkg/requestcontext"
)

// Service defines the fund protection operations the HTTP layer needs.
type Service interface {
	BuildPlan(ctx context.Context, txID id.TransactionID, userID id.UserID) (*orchestrator.BuildResult, error)
	GetStatus(ctx context.Context, txID id.TransactionID, userID id.UserID) (*orchestrator.StatusView, error)
	ApplyAction(ctx context.Context, req orchestrator.ActionRequest) (*orchestrator.ActionResult, error)
	RegisterTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error)
}

// Handler wires fund protection endpoints to the orchestrator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts fund protection endpoints on the router. The router is
// expected to carry the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Route("/transactions/{id}/fund-protection", func(r chi.Router) {
		r.Get("/status", h.HandleStatus)
		r.Post("/plan", h.HandleBuildPlan)
		r.Post("/deposit", h.action(models.StepCryptoDeposit))
		r.Post("/crypto-transfer", h.action(models.StepCryptoTransfer))
		r.Post("/convert", h.action(models.StepCryptoConvert))
		r.Post("/bank-transfer", h.action(models.StepIBANTransfer))
		r.Post("/upload-proof", h.HandleUploadProof)
		r.Post("/confirm-fiat", h.action(models.StepFiatConfirm))
	})
}

// RegisterAdmin mounts the marketplace-facing intake endpoint. The router is
// expected to carry the admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/transactions", h.HandleRegisterTransaction)
}

// HandleRegisterTransaction handles POST /admin/transactions.
func (h *Handler) HandleRegisterTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeAndPrepare[RegisterTransactionRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tx, err := h.service.RegisterTransaction(ctx, req.toModel())
	if err != nil {
		h.fail(ctx, w, "transaction registration failed", id.TransactionID{}, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromTransaction(tx))
}

// HandleStatus handles GET /transactions/{id}/fund-protection/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, txID, ok := h.parseCaller(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetStatus(ctx, txID, userID)
	if err != nil {
		h.fail(ctx, w, "fund protection status failed", txID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromStatusView(view))
}

// HandleBuildPlan handles POST /transactions/{id}/fund-protection/plan.
// It answers 201 when the plan was created and 200 when it already existed.
func (h *Handler) HandleBuildPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, txID, ok := h.parseCaller(w, r)
	if !ok {
		return
	}

	res, err := h.service.BuildPlan(ctx, txID, userID)
	if err != nil {
		h.fail(ctx, w, "fund protection plan failed", txID, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
		h.logger.InfoContext(ctx, "fund protection plan built",
			"request_id", requestcontext.RequestID(ctx),
			"transaction_id", txID,
			"steps", len(res.Steps),
			"crypto_leg_skipped", res.CryptoLeg.Skipped,
		)
	}
	httputil.WriteJSON(w, status, fromBuildResult(res))
}

// HandleUploadProof handles POST /transactions/{id}/fund-protection/upload-proof.
func (h *Handler) HandleUploadProof(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeAndPrepare[UploadProofRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.apply(w, r, models.StepFiatUpload, req.ProofReference)
}

func (h *Handler) action(stepType models.StepType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.apply(w, r, stepType, "")
	}
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, stepType models.StepType, proof string) {
	ctx := r.Context()
	start := time.Now()
	userID, txID, ok := h.parseCaller(w, r)
	if !ok {
		return
	}

	res, err := h.service.ApplyAction(ctx, orchestrator.ActionRequest{
		TransactionID:  txID,
		StepType:       stepType,
		UserID:         userID,
		ProofReference: proof,
	})
	if err != nil {
		h.fail(ctx, w, "fund protection action failed", txID, err, "step_type", string(stepType))
		return
	}

	h.logger.InfoContext(ctx, "fund protection step completed",
		"request_id", requestcontext.RequestID(ctx),
		"transaction_id", txID,
		"step_number", res.Step.StepNumber,
		"step_type", string(stepType),
		"all_steps_complete", res.AllStepsComplete,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromActionResult(res))
}

func (h *Handler) parseCaller(w http.ResponseWriter, r *http.Request) (id.UserID, id.TransactionID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, id.TransactionID{}, false
	}
	txID, err := id.ParseTransactionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, id.TransactionID{}, false
	}
	return userID, txID, true
}

// fail logs and writes err. Partner failures carry the partner's status and
// code in the body so clients can tell a declined transfer from an outage.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, txID id.TransactionID, err error, kv ...any) {
	args := append([]any{
		"request_id", requestcontext.RequestID(ctx),
		"transaction_id", txID,
		"error", err,
	}, kv...)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}

	if pe, ok := partner.AsError(err); ok && dErrors.HasCode(err, dErrors.CodePartner) {
		httputil.WriteJSON(w, http.StatusBadGateway, PartnerErrorResponse{
			ErrorResponse: httputil.ErrorResponse{
				Error:            string(dErrors.CodePartner),
				ErrorDescription: dErrors.MessageOf(err),
			},
			PartnerStatus: pe.StatusCode,
			PartnerCode:   pe.Code,
			Retryable:     pe.Temporary(),
		})
		return
	}
	httputil.WriteError(w, err)
}
