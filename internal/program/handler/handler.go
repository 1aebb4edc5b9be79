package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"organmatch/internal/platform/middleware"
	"organmatch/internal/program"
	"organmatch/internal/transport/http/shared"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/requestcontext"
)

// Service defines the interface for program administration operations.
type Service interface {
	Initialize(ctx context.Context, admin id.Identity) (*program.State, error)
	SetPaused(ctx context.Context, caller id.Identity, paused bool) (*program.State, error)
	State(ctx context.Context) (*program.State, error)
}

// Handler handles the program administration endpoints.
type Handler struct {
	logger         *slog.Logger
	programs       Service
	jwtValidator   middleware.JWTValidator
	adminTokenHash string
}

// New creates a new program admin Handler. adminTokenHash may be empty, in
// which case the shared-token gate is skipped and only the stored admin
// identity protects the surface.
func New(programs Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, adminTokenHash string) *Handler {
	return &Handler{
		logger:         logger,
		programs:       programs,
		jwtValidator:   jwtValidator,
		adminTokenHash: adminTokenHash,
	}
}

// Register registers the admin routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Recovery(h.logger))
		adminRouter.Use(middleware.RequestID)
		adminRouter.Use(middleware.RequestTime)
		adminRouter.Use(middleware.Logger(h.logger))
		adminRouter.Use(middleware.Timeout(30 * time.Second))
		adminRouter.Use(middleware.ContentTypeJSON)
		adminRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		if h.adminTokenHash != "" {
			adminRouter.Use(middleware.RequireAdminToken(h.adminTokenHash, h.logger))
		}
		adminRouter.Post("/admin/initialize", h.handleInitialize)
		adminRouter.Post("/admin/pause", h.handleSetPaused)
		adminRouter.Get("/admin/state", h.handleGetState)
	})
}

type stateResponse struct {
	Admin          string `json:"admin"`
	RecipientCount uint32 `json:"recipient_count"`
	Paused         bool   `json:"paused"`
}

func toStateResponse(st *program.State) stateResponse {
	return stateResponse{
		Admin:          st.Admin.String(),
		RecipientCount: st.RecipientCount,
		Paused:         st.Paused,
	}
}

// handleInitialize creates the program state with the caller as admin.
func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	st, err := h.programs.Initialize(ctx, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "program initialization refused",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toStateResponse(st))
}

type setPausedRequest struct {
	Paused bool `json:"paused"`
}

func (h *Handler) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	var req setPausedRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	st, err := h.programs.SetPaused(ctx, caller, req.Paused)
	if err != nil {
		h.logger.WarnContext(ctx, "pause flag update refused",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toStateResponse(st))
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	st, err := h.programs.State(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toStateResponse(st))
}
