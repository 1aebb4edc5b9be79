package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"organmatch/internal/authority"
	"organmatch/internal/platform/middleware"
	"organmatch/internal/transport/http/shared"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/requestcontext"
)

// Service defines the interface for authority registry operations.
type Service interface {
	SetAuthority(ctx context.Context, caller, target id.Identity, active bool) (*authority.Authority, error)
	Get(ctx context.Context, authorityID id.Identity) (*authority.Authority, error)
}

// Handler handles the medical authority registry endpoints.
type Handler struct {
	logger       *slog.Logger
	registry     Service
	jwtValidator middleware.JWTValidator
}

// New creates a new authority registry Handler.
func New(registry Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		registry:     registry,
		jwtValidator: jwtValidator,
	}
}

// Register registers the authority routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(authorityRouter chi.Router) {
		authorityRouter.Use(middleware.Recovery(h.logger))
		authorityRouter.Use(middleware.RequestID)
		authorityRouter.Use(middleware.RequestTime)
		authorityRouter.Use(middleware.Logger(h.logger))
		authorityRouter.Use(middleware.Timeout(30 * time.Second))
		authorityRouter.Use(middleware.ContentTypeJSON)
		authorityRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		authorityRouter.Post("/admin/authorities", h.handleSetAuthority)
		authorityRouter.Get("/admin/authorities/{id}", h.handleGetAuthority)
	})
}

type setAuthorityRequest struct {
	AuthorityID string `json:"authority_id"`
	Active      bool   `json:"active"`
}

type authorityResponse struct {
	ID               string `json:"id"`
	Active           bool   `json:"active"`
	ConfirmedMatches uint32 `json:"confirmed_matches"`
}

func toAuthorityResponse(a *authority.Authority) authorityResponse {
	return authorityResponse{
		ID:               a.ID.String(),
		Active:           a.Active,
		ConfirmedMatches: a.ConfirmedMatches,
	}
}

func (h *Handler) handleSetAuthority(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	var req setAuthorityRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	target, err := id.ParseIdentity(req.AuthorityID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid authority identity"))
		return
	}

	a, err := h.registry.SetAuthority(ctx, caller, target, req.Active)
	if err != nil {
		h.logger.WarnContext(ctx, "authority update refused",
			"authority", req.AuthorityID,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toAuthorityResponse(a))
}

func (h *Handler) handleGetAuthority(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authorityID, err := id.ParseIdentity(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid authority identity"))
		return
	}

	a, err := h.registry.Get(ctx, authorityID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toAuthorityResponse(a))
}
