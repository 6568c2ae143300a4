// Package admin serves the audit trail to administrators.
package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
	audit "mindcare/pkg/platform/audit"
	"mindcare/pkg/platform/httputil"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type Handler struct {
	store  audit.Store
	logger *slog.Logger
}

func New(store audit.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{store: store, logger: logger}
}

// Register mounts the audit endpoints. Callers mount it behind admin
// authorization.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/audit", h.HandleAuditTrail)
}

// HandleAuditTrail lists events for ?subject=, ?user= or the most recent
// ?limit= events, in that order of precedence.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var (
		events []audit.Event
		err    error
	)
	switch {
	case query.Get("subject") != "":
		events, err = h.store.ListBySubject(ctx, query.Get("subject"))
	case query.Get("user") != "":
		userID, parseErr := id.ParseUserID(query.Get("user"))
		if parseErr != nil {
			httputil.WriteError(w, parseErr)
			return
		}
		events, err = h.store.ListByUser(ctx, userID)
	default:
		limit, parseErr := parseLimit(query.Get("limit"))
		if parseErr != nil {
			httputil.WriteError(w, parseErr)
			return
		}
		events, err = h.store.ListRecent(ctx, limit)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toAuditTrail(events))
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
	}
	return min(limit, maxLimit), nil
}
