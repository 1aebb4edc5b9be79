package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"organmatch/internal/donor"
	"organmatch/internal/platform/middleware"
	"organmatch/internal/transport/http/shared"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/requestcontext"
)

// Service defines the interface for donor directory operations.
type Service interface {
	Add(ctx context.Context, authorityID, caller id.Identity, data donor.DonorData) (*donor.Donor, error)
	Get(ctx context.Context, owner id.Identity) (*donor.Donor, error)
}

// Handler handles the donor directory endpoints.
type Handler struct {
	logger       *slog.Logger
	donations    Service
	jwtValidator middleware.JWTValidator
}

// New creates a new donor directory Handler.
func New(donations Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		donations:    donations,
		jwtValidator: jwtValidator,
	}
}

// Register registers the donor routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(donorRouter chi.Router) {
		donorRouter.Use(middleware.Recovery(h.logger))
		donorRouter.Use(middleware.RequestID)
		donorRouter.Use(middleware.RequestTime)
		donorRouter.Use(middleware.Logger(h.logger))
		donorRouter.Use(middleware.Timeout(30 * time.Second))
		donorRouter.Use(middleware.ContentTypeJSON)
		donorRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		donorRouter.Post("/donors", h.handleAddDonor)
		donorRouter.Get("/donors/{id}", h.handleGetDonor)
	})
}

type addDonorRequest struct {
	AuthorityID string       `json:"authority_id"`
	Markers     []uint8      `json:"markers"`
	Blood       id.BloodType `json:"blood_type"`
	Organ       id.OrganType `json:"organ_type"`
	Notes       string       `json:"notes"`
}

type donorResponse struct {
	Owner     string          `json:"owner"`
	Data      donor.DonorData `json:"data"`
	Status    donor.Status    `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func toDonorResponse(d *donor.Donor) donorResponse {
	return donorResponse{
		Owner:     d.Owner.String(),
		Data:      d.Data,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
	}
}

func (h *Handler) handleAddDonor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	var req addDonorRequest
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

	d, err := h.donations.Add(ctx, authorityID, caller, donor.DonorData{
		Markers: markers,
		Blood:   req.Blood,
		Organ:   req.Organ,
		Notes:   req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "donor registration refused",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toDonorResponse(d))
}

func (h *Handler) handleGetDonor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := id.ParseIdentity(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid donor identity"))
		return
	}

	d, err := h.donations.Get(ctx, owner)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toDonorResponse(d))
}
