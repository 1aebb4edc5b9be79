package donor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"organmatch/internal/authority"
	authoritystore "organmatch/internal/authority/store"
	"organmatch/internal/donor"
	donorstore "organmatch/internal/donor/store"
	"organmatch/internal/program"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite

	programs  *program.Service
	registry  *authority.Registry
	donations *donor.Service

	ctx       context.Context
	admin     id.Identity
	authority id.Identity
	now       time.Time
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.programs = program.New(program.NewInMemoryStore())
	s.registry = authority.NewRegistry(authoritystore.NewInMemory(), s.programs)
	s.donations = donor.New(donorstore.NewInMemory(), s.registry, s.programs)

	s.admin = id.NewIdentity()
	_, err := s.programs.Initialize(s.ctx, s.admin)
	s.Require().NoError(err)

	s.authority = id.NewIdentity()
	_, err = s.registry.SetAuthority(s.ctx, s.admin, s.authority, true)
	s.Require().NoError(err)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func validData() donor.DonorData {
	return donor.DonorData{
		Markers: id.HLAMarkers{1, 2, 3, 4, 5},
		Blood:   "B+",
		Organ:   "liver",
	}
}

func (s *ServiceSuite) TestAdd() {
	owner := id.NewIdentity()

	s.Run("creates an active record", func() {
		d, err := s.donations.Add(s.ctx, s.authority, owner, validData())
		s.Require().NoError(err)
		s.Equal(donor.StatusActive, d.Status)
		s.Equal(s.now, d.CreatedAt)
	})

	s.Run("one record per identity", func() {
		_, err := s.donations.Add(s.ctx, s.authority, owner, validData())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("inactive authority is forbidden", func() {
		inactive := id.NewIdentity()
		_, err := s.registry.SetAuthority(s.ctx, s.admin, inactive, false)
		s.Require().NoError(err)

		_, err = s.donations.Add(s.ctx, inactive, id.NewIdentity(), validData())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("oversized notes are rejected", func() {
		data := validData()
		data.Notes = string(make([]byte, 1001))
		_, err := s.donations.Add(s.ctx, s.authority, id.NewIdentity(), data)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown organ type is rejected", func() {
		data := validData()
		data.Organ = "spleen"
		_, err := s.donations.Add(s.ctx, s.authority, id.NewIdentity(), data)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("paused program refuses registrations", func() {
		_, err := s.programs.SetPaused(s.ctx, s.admin, true)
		s.Require().NoError(err)

		_, err = s.donations.Add(s.ctx, s.authority, id.NewIdentity(), validData())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestGet() {
	owner := id.NewIdentity()
	_, err := s.donations.Add(s.ctx, s.authority, owner, validData())
	s.Require().NoError(err)

	s.Run("returns the record", func() {
		d, err := s.donations.Get(s.ctx, owner)
		s.Require().NoError(err)
		s.Equal(owner, d.Owner)
	})

	s.Run("unknown identity is not found", func() {
		_, err := s.donations.Get(s.ctx, id.NewIdentity())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
