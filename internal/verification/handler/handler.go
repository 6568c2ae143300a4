package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/verification/models"
	"mindcare/internal/verification/service"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
	"mindcare/pkg/platform/httputil"
	"mindcare/pkg/requestcontext"
)

// Service defines the verification operations the handler needs.
type Service interface {
	Submit(ctx context.Context, req service.SubmitRequest) (*models.Application, error)
	Status(ctx context.Context, applicant id.UserID) (*models.Application, error)
	Get(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	ListPending(ctx context.Context) ([]*models.Application, error)
	List(ctx context.Context, statuses ...models.Status) ([]*models.Application, error)
	Statistics(ctx context.Context) (models.Statistics, error)
	StartReview(ctx context.Context, applicationID id.ApplicationID, admin id.UserID) (*models.Application, error)
	Approve(ctx context.Context, applicationID id.ApplicationID, admin id.UserID, notes string) (*models.Application, error)
	Reject(ctx context.Context, applicationID id.ApplicationID, admin id.UserID, reason, notes string) (*models.Application, error)
	Revoke(ctx context.Context, applicationID id.ApplicationID, admin id.UserID, reason string) (*models.Application, error)
	Rescore(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	RescorePending(ctx context.Context) (int, error)
	Preview(ctx context.Context, applicant matching.ApplicantCredential) matching.ConfidenceResult
}

// Handler serves applicant and admin verification endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterApplicant mounts the endpoints any authenticated user may call.
func (h *Handler) RegisterApplicant(r chi.Router) {
	r.Post("/professional/applications", h.HandleSubmit)
	r.Get("/professional/applications/me", h.HandleMyStatus)
}

// RegisterAdmin mounts the review queue. Callers mount it behind admin
// authorization.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/verifications", h.HandleList)
	r.Get("/admin/verifications/pending", h.HandlePending)
	r.Get("/admin/verifications/stats", h.HandleStatistics)
	r.Post("/admin/verifications/rescore", h.HandleRescorePending)
	r.Post("/admin/verifications/preview", h.HandlePreview)
	r.Get("/admin/verifications/{id}", h.HandleGet)
	r.Post("/admin/verifications/{id}/review", h.HandleStartReview)
	r.Post("/admin/verifications/{id}/approve", h.HandleApprove)
	r.Post("/admin/verifications/{id}/reject", h.HandleReject)
	r.Post("/admin/verifications/{id}/revoke", h.HandleRevoke)
	r.Post("/admin/verifications/{id}/rescore", h.HandleRescore)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	applicant := requestcontext.UserID(ctx)
	if applicant.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	app, err := h.service.Submit(ctx, req.Command(applicant))
	if err != nil {
		h.fail(w, r, "submit application failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toStatusResponse(app))
}

func (h *Handler) HandleMyStatus(w http.ResponseWriter, r *http.Request) {
	applicant := requestcontext.UserID(r.Context())
	if applicant.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	app, err := h.service.Status(r.Context(), applicant)
	if err != nil {
		h.fail(w, r, "application status failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(app))
}

// HandleList answers GET /admin/verifications with an optional ?status= filter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var statuses []models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		statuses = append(statuses, st)
	}
	apps, err := h.service.List(r.Context(), statuses...)
	if err != nil {
		h.fail(w, r, "list applications failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(apps))
}

func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListPending(r.Context())
	if err != nil {
		h.fail(w, r, "list pending applications failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(apps))
}

func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		h.fail(w, r, "application statistics failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatisticsResponse(stats))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	appID, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	app, err := h.service.Get(r.Context(), appID)
	if err != nil {
		h.fail(w, r, "get application failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(app))
}

func (h *Handler) HandleStartReview(w http.ResponseWriter, r *http.Request) {
	appID, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	app, err := h.service.StartReview(r.Context(), appID, requestcontext.UserID(r.Context()))
	h.respondDecision(w, r, app, err)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	appID, req, ok := h.decision(w, r)
	if !ok {
		return
	}
	app, err := h.service.Approve(r.Context(), appID, requestcontext.UserID(r.Context()), req.Notes)
	h.respondDecision(w, r, app, err)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	appID, req, ok := h.decision(w, r)
	if !ok {
		return
	}
	app, err := h.service.Reject(r.Context(), appID, requestcontext.UserID(r.Context()), req.Reason, req.Notes)
	h.respondDecision(w, r, app, err)
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	appID, req, ok := h.decision(w, r)
	if !ok {
		return
	}
	app, err := h.service.Revoke(r.Context(), appID, requestcontext.UserID(r.Context()), req.Reason)
	h.respondDecision(w, r, app, err)
}

func (h *Handler) HandleRescore(w http.ResponseWriter, r *http.Request) {
	appID, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	app, err := h.service.Rescore(r.Context(), appID)
	if err != nil {
		h.fail(w, r, "rescore application failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(app))
}

func (h *Handler) HandleRescorePending(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.RescorePending(r.Context())
	if err != nil {
		h.fail(w, r, "rescore pending applications failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RescoreResponse{Rescored: n})
}

// HandlePreview scores a credential without creating an application.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[PreviewRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	result := h.service.Preview(ctx, req.Credential())
	httputil.WriteJSON(w, http.StatusOK, models.AssessmentFrom(result))
}

func (h *Handler) applicationID(w http.ResponseWriter, r *http.Request) (id.ApplicationID, bool) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ApplicationID{}, false
	}
	return appID, true
}

// decision parses the path ID and the decision body. An empty body is allowed.
func (h *Handler) decision(w http.ResponseWriter, r *http.Request) (id.ApplicationID, *DecisionRequest, bool) {
	appID, ok := h.applicationID(w, r)
	if !ok {
		return id.ApplicationID{}, nil, false
	}
	if r.ContentLength == 0 {
		return appID, &DecisionRequest{}, true
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return id.ApplicationID{}, nil, false
	}
	return appID, req, true
}

func (h *Handler) respondDecision(w http.ResponseWriter, r *http.Request, app *models.Application, err error) {
	if err != nil {
		h.fail(w, r, "verification decision failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(app))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	} else {
		h.logger.WarnContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
