package handler

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/reference/models"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
	"mindcare/pkg/platform/httputil"
	"mindcare/pkg/requestcontext"
)

// maxImportBytes caps a CSV upload.
const maxImportBytes = 10 << 20

// Service defines the reference list operations the handler needs.
type Service interface {
	Add(ctx context.Context, record models.Record, uploadedBy id.UserID) (*models.Record, error)
	Remove(ctx context.Context, referenceID id.ReferenceID, removedBy id.UserID) error
	Get(ctx context.Context, referenceID id.ReferenceID) (*models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
	Search(ctx context.Context, filter models.SearchFilter) ([]models.Record, error)
	Count(ctx context.Context) (int, error)
	IsPreApproved(ctx context.Context, email string, t matching.CredentialType, specialization string) (bool, error)
	ImportCSV(ctx context.Context, r io.Reader, uploadedBy id.UserID) (*models.ImportSummary, error)
}

// Handler serves the admin reference list endpoints. Callers mount it behind
// admin authorization.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts reference endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/reference", h.HandleList)
	r.Post("/admin/reference", h.HandleAdd)
	r.Get("/admin/reference/search", h.HandleSearch)
	r.Get("/admin/reference/count", h.HandleCount)
	r.Get("/admin/reference/check", h.HandleCheck)
	r.Post("/admin/reference/import", h.HandleImport)
	r.Get("/admin/reference/{id}", h.HandleGet)
	r.Delete("/admin/reference/{id}", h.HandleRemove)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, "list reference entries failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(records))
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r.URL.Query().Get)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	records, err := h.service.Search(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "search reference entries failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(records))
}

func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Count(r.Context())
	if err != nil {
		h.fail(w, r, "count reference entries failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Count: n})
}

// HandleCheck answers GET /admin/reference/check?email=&type=&specialization=.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, ok := matching.ParseCredentialType(q.Get("type"))
	if !ok || q.Get("email") == "" || q.Get("specialization") == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "email, type and specialization are required"))
		return
	}
	preApproved, err := h.service.IsPreApproved(r.Context(), q.Get("email"), t, q.Get("specialization"))
	if err != nil {
		h.fail(w, r, "reference check failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"pre_approved": preApproved})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	refID, err := id.ParseReferenceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.service.Get(r.Context(), refID)
	if err != nil {
		h.fail(w, r, "get reference entry failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(*record))
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	record, err := h.service.Add(ctx, req.Record(), requestcontext.UserID(ctx))
	if err != nil {
		h.fail(w, r, "add reference entry failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(*record))
}

// HandleImport accepts either a raw text/csv body or a multipart form with
// the file in the "file" field.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var body io.Reader = r.Body
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart upload must carry a file field"))
			return
		}
		defer file.Close()
		body = file
	}

	summary, err := h.service.ImportCSV(ctx, body, requestcontext.UserID(ctx))
	if err != nil {
		h.fail(w, r, "reference import failed", err)
		return
	}
	h.logger.InfoContext(ctx, "reference import completed",
		"request_id", requestcontext.RequestID(ctx),
		"added", summary.Added,
		"skipped", summary.Skipped,
	)
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	refID, err := id.ParseReferenceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Remove(r.Context(), refID, requestcontext.UserID(r.Context())); err != nil {
		h.fail(w, r, "remove reference entry failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
