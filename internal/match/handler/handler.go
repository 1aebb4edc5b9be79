package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"organmatch/internal/match"
	"organmatch/internal/platform/middleware"
	"organmatch/internal/transport/http/shared"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/requestcontext"
)

// Service defines the interface for match lifecycle operations.
type Service interface {
	FindBestMatch(ctx context.Context, caller, donorID id.Identity, candidateOwners []id.Identity) (*match.Proposal, error)
	Confirm(ctx context.Context, caller id.Identity, proposalID id.ProposalID) (*match.Proposal, error)
	Get(ctx context.Context, proposalID id.ProposalID) (*match.Proposal, error)
}

// Handler handles the match lifecycle endpoints.
type Handler struct {
	logger       *slog.Logger
	matches      Service
	jwtValidator middleware.JWTValidator
}

// New creates a new match lifecycle Handler.
func New(matches Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		matches:      matches,
		jwtValidator: jwtValidator,
	}
}

// Register registers the match routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(matchRouter chi.Router) {
		matchRouter.Use(middleware.Recovery(h.logger))
		matchRouter.Use(middleware.RequestID)
		matchRouter.Use(middleware.RequestTime)
		matchRouter.Use(middleware.Logger(h.logger))
		matchRouter.Use(middleware.Timeout(30 * time.Second))
		matchRouter.Use(middleware.ContentTypeJSON)
		matchRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		matchRouter.Post("/matches/search", h.handleSearch)
		matchRouter.Post("/matches/{id}/confirm", h.handleConfirm)
		matchRouter.Get("/matches/{id}", h.handleGetMatch)
	})
}

type searchRequest struct {
	DonorID    string   `json:"donor_id"`
	Candidates []string `json:"candidates,omitempty"`
}

type proposalResponse struct {
	ID        string       `json:"id"`
	Recipient string       `json:"recipient"`
	Donor     string       `json:"donor"`
	Score     uint64       `json:"score"`
	Status    match.Status `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func toProposalResponse(p *match.Proposal) proposalResponse {
	return proposalResponse{
		ID:        p.ID.String(),
		Recipient: p.Recipient.String(),
		Donor:     p.Donor.String(),
		Score:     p.Score,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// handleSearch runs a match search for a donated organ. The caller is the
// supervising medical authority; the candidate list is optional.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	var req searchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	donorID, err := id.ParseIdentity(req.DonorID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid donor identity"))
		return
	}

	candidates := make([]id.Identity, 0, len(req.Candidates))
	for _, raw := range req.Candidates {
		owner, err := id.ParseIdentity(raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid candidate identity"))
			return
		}
		candidates = append(candidates, owner)
	}

	proposal, err := h.matches.FindBestMatch(ctx, caller, donorID, candidates)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNoMatch) {
			h.logger.WarnContext(ctx, "match search refused",
				"donor", req.DonorID,
				"error", err.Error(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toProposalResponse(proposal))
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid proposal identity"))
		return
	}

	proposal, err := h.matches.Confirm(ctx, caller, proposalID)
	if err != nil {
		h.logger.WarnContext(ctx, "match confirmation refused",
			"proposal", proposalID.String(),
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toProposalResponse(proposal))
}

func (h *Handler) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid proposal identity"))
		return
	}

	proposal, err := h.matches.Get(ctx, proposalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toProposalResponse(proposal))
}
