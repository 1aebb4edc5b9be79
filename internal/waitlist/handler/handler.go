package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"organmatch/internal/platform/middleware"
	"organmatch/internal/transport/http/shared"
	"organmatch/internal/waitlist"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/requestcontext"
)

// Service defines the interface for recipient directory operations.
type Service interface {
	Upsert(ctx context.Context, authorityID, caller, owner id.Identity, data waitlist.RecipientData) (*waitlist.Recipient, error)
	Get(ctx context.Context, owner id.Identity) (*waitlist.Recipient, error)
	Candidates(ctx context.Context, organ id.OrganType, blood id.BloodType) ([]id.Identity, error)
}

// Handler handles the recipient directory endpoints.
type Handler struct {
	logger       *slog.Logger
	waitlists    Service
	jwtValidator middleware.JWTValidator
}

// New creates a new recipient directory Handler.
func New(waitlists Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		waitlists:    waitlists,
		jwtValidator: jwtValidator,
	}
}

// Register registers the recipient routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(recipientRouter chi.Router) {
		recipientRouter.Use(middleware.Recovery(h.logger))
		recipientRouter.Use(middleware.RequestID)
		recipientRouter.Use(middleware.RequestTime)
		recipientRouter.Use(middleware.Logger(h.logger))
		recipientRouter.Use(middleware.Timeout(30 * time.Second))
		recipientRouter.Use(middleware.ContentTypeJSON)
		recipientRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		recipientRouter.Put("/recipients/{id}", h.handleUpsertRecipient)
		recipientRouter.Get("/recipients/{id}", h.handleGetRecipient)
		recipientRouter.Get("/recipients", h.handleListCandidates)
	})
}

type upsertRecipientRequest struct {
	AuthorityID string        `json:"authority_id"`
	Urgency     uint8         `json:"urgency"`
	Distance    uint32        `json:"distance"`
	Markers     []uint8       `json:"markers"`
	Blood       id.BloodType  `json:"blood_type"`
	Organ       id.OrganType  `json:"organ_type"`
	Age         uint8         `json:"age"`
	Notes       string        `json:"notes"`
}

type recipientResponse struct {
	Owner     string                 `json:"owner"`
	Data      waitlist.RecipientData `json:"data"`
	Status    waitlist.Status        `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func toRecipientResponse(r *waitlist.Recipient) recipientResponse {
	return recipientResponse{
		Owner:     r.Owner.String(),
		Data:      r.Data,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (h *Handler) handleUpsertRecipient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	owner, err := id.ParseIdentity(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid recipient identity"))
		return
	}

	var req upsertRecipientRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	authorityID, err := id.ParseIdentity(req.AuthorityID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid authority identity"))
		return
	}

	var markers id.HLAMarkers
	if len(req.Markers) != id.HLAMarkerSlots {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "marker vector must have 5 slots"))
		return
	}
	copy(markers[:], req.Markers)

	recipient, err := h.waitlists.Upsert(ctx, authorityID, caller, owner, waitlist.RecipientData{
		Urgency:  req.Urgency,
		Distance: req.Distance,
		Markers:  markers,
		Blood:    req.Blood,
		Organ:    req.Organ,
		Age:      req.Age,
		Notes:    req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "recipient upsert refused",
			"recipient", owner.String(),
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toRecipientResponse(recipient))
}

func (h *Handler) handleGetRecipient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := id.ParseIdentity(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid recipient identity"))
		return
	}

	recipient, err := h.waitlists.Get(ctx, owner)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toRecipientResponse(recipient))
}

// handleListCandidates lists the waiting recipients for an organ/blood pair.
func (h *Handler) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	organ, err := id.ParseOrganType(r.URL.Query().Get("organ"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid organ type"))
		return
	}
	blood, err := id.ParseBloodType(r.URL.Query().Get("blood"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid blood type"))
		return
	}

	owners, err := h.waitlists.Candidates(ctx, organ, blood)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	candidates := make([]string, 0, len(owners))
	for _, owner := range owners {
		candidates = append(candidates, owner.String())
	}
	shared.WriteJSON(w, http.StatusOK, map[string][]string{"candidates": candidates})
}
