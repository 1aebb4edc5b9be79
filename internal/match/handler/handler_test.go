package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"organmatch/internal/match"
	"organmatch/internal/match/handler/mocks"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type MatchHandlerSuite struct {
	suite.Suite
}

func TestMatchHandlerSuite(t *testing.T) {
	suite.Run(t, new(MatchHandlerSuite))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(mockService, logger, nil)
	return handler, mockService
}

func (s *MatchHandlerSuite) TestHandleSearch() {
	handler, mockService := newTestHandler(s.T())
	caller := id.NewIdentity()
	donorID := id.NewIdentity()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	proposal := match.NewProposal(id.NewIdentity(), donorID, 230, now)

	mockService.EXPECT().FindBestMatch(
		gomock.Any(),
		caller,
		donorID,
		[]id.Identity{},
	).Return(proposal, nil)

	body, err := json.Marshal(searchRequest{DonorID: donorID.String()})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/matches/search", bytes.NewReader(body))
	req = req.WithContext(requestcontext.WithCallerID(req.Context(), caller))

	w := httptest.NewRecorder()
	handler.handleSearch(w, req)

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	var resp proposalResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), proposal.ID.String(), resp.ID)
	assert.Equal(s.T(), uint64(230), resp.Score)
	assert.Equal(s.T(), match.StatusPending, resp.Status)
}

func (s *MatchHandlerSuite) TestHandleSearchNoMatch() {
	handler, mockService := newTestHandler(s.T())
	caller := id.NewIdentity()
	donorID := id.NewIdentity()

	mockService.EXPECT().FindBestMatch(gomock.Any(), caller, donorID, []id.Identity{}).
		Return(nil, dErrors.New(dErrors.CodeNoMatch, "no compatible recipient found"))

	body, err := json.Marshal(searchRequest{DonorID: donorID.String()})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/matches/search", bytes.NewReader(body))
	req = req.WithContext(requestcontext.WithCallerID(req.Context(), caller))

	w := httptest.NewRecorder()
	handler.handleSearch(w, req)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "no_match", resp["error"])
}

func (s *MatchHandlerSuite) TestHandleSearchRejectsBadDonorID() {
	handler, _ := newTestHandler(s.T())

	body, err := json.Marshal(searchRequest{DonorID: "not-a-uuid"})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/matches/search", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.handleSearch(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *MatchHandlerSuite) TestHandleConfirm() {
	handler, mockService := newTestHandler(s.T())
	caller := id.NewIdentity()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	proposal := match.NewProposal(id.NewIdentity(), id.NewIdentity(), 140, now)
	proposal.ApplyConfirmation(now)

	mockService.EXPECT().Confirm(gomock.Any(), caller, proposal.ID).Return(proposal, nil)

	req := httptest.NewRequest(http.MethodPost, "/matches/"+proposal.ID.String()+"/confirm", nil)
	req = req.WithContext(requestcontext.WithCallerID(req.Context(), caller))
	req = withURLParam(req, "id", proposal.ID.String())

	w := httptest.NewRecorder()
	handler.handleConfirm(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp proposalResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), match.StatusConfirmed, resp.Status)
}

func (s *MatchHandlerSuite) TestHandleConfirmNotPending() {
	handler, mockService := newTestHandler(s.T())
	caller := id.NewIdentity()
	proposalID := id.NewProposalID()

	mockService.EXPECT().Confirm(gomock.Any(), caller, proposalID).
		Return(nil, dErrors.New(dErrors.CodeInvariantViolation, "match is not pending"))

	req := httptest.NewRequest(http.MethodPost, "/matches/"+proposalID.String()+"/confirm", nil)
	req = req.WithContext(requestcontext.WithCallerID(req.Context(), caller))
	req = withURLParam(req, "id", proposalID.String())

	w := httptest.NewRecorder()
	handler.handleConfirm(w, req)

	assert.Equal(s.T(), http.StatusConflict, w.Code)
}
