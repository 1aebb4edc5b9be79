//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"organmatch/internal/donor"
	donorstore "organmatch/internal/donor/store"
	"organmatch/internal/match"
	"organmatch/internal/match/store"
	"organmatch/internal/waitlist"
	wstore "organmatch/internal/waitlist/store"
	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	store      *store.Postgres
	recipients *wstore.Postgres
	donors     *donorstore.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.recipients = wstore.NewPostgres(s.postgres.DB)
	s.donors = donorstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx, "proposals", "recipients", "donors")
	s.Require().NoError(err)
}

// newTestProposal seeds the recipient and donor rows the proposal references.
func (s *PostgresStoreSuite) newTestProposal() *match.Proposal {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	recipientOwner := id.NewIdentity()
	r, err := waitlist.NewRecipient(recipientOwner, waitlist.RecipientData{
		Urgency:  70,
		Distance: 120,
		Markers:  id.HLAMarkers{1, 1, 2, 2, 3},
		Blood:    id.BloodBPositive,
		Organ:    id.OrganHeart,
		Age:      33,
	}, now)
	s.Require().NoError(err)
	s.Require().NoError(s.recipients.Create(ctx, r))

	donorOwner := id.NewIdentity()
	d, err := donor.NewDonor(donorOwner, donor.DonorData{
		Markers: id.HLAMarkers{1, 1, 2, 2, 3},
		Blood:   id.BloodBPositive,
		Organ:   id.OrganHeart,
	}, now)
	s.Require().NoError(err)
	s.Require().NoError(s.donors.Create(ctx, d))

	return match.NewProposal(recipientOwner, donorOwner, 180, now)
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	p := s.newTestProposal()

	s.Require().NoError(s.store.Create(ctx, p))

	found, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, found.ID)
	s.Equal(p.Recipient, found.Recipient)
	s.Equal(p.Donor, found.Donor)
	s.Equal(uint64(180), found.Score)
	s.Equal(match.StatusPending, found.Status)
}

func (s *PostgresStoreSuite) TestDuplicateCreate() {
	ctx := context.Background()
	p := s.newTestProposal()

	s.Require().NoError(s.store.Create(ctx, p))

	err := s.store.Create(ctx, p)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

// TestConcurrentConfirmation verifies the row lock in Execute lets exactly
// one of many racing confirmations settle the proposal.
func (s *PostgresStoreSuite) TestConcurrentConfirmation() {
	ctx := context.Background()
	p := s.newTestProposal()
	s.Require().NoError(s.store.Create(ctx, p))

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := s.store.Execute(ctx, p.ID,
				func(rec *match.Proposal) error { return rec.CanConfirm() },
				func(rec *match.Proposal) { rec.ApplyConfirmation(time.Now()) },
			)
			if err == nil {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one confirmation should succeed")

	found, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(match.StatusConfirmed, found.Status)
}

func (s *PostgresStoreSuite) TestNotFoundError() {
	ctx := context.Background()

	_, err := s.store.FindByID(ctx, id.NewProposalID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Execute(ctx, id.NewProposalID(),
		func(*match.Proposal) error { return nil },
		func(*match.Proposal) {},
	)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
