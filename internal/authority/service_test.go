package authority_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"organmatch/internal/authority"
	authoritystore "organmatch/internal/authority/store"
	"organmatch/internal/program"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/requestcontext"
)

type RegistrySuite struct {
	suite.Suite
	registry *authority.Registry
	programs *program.Service
	ctx      context.Context
	admin    id.Identity
}

func (s *RegistrySuite) SetupTest() {
	s.programs = program.New(program.NewInMemoryStore())
	s.registry = authority.NewRegistry(authoritystore.NewInMemory(), s.programs)
	s.ctx = requestcontext.WithTime(context.Background(), time.Unix(1_700_000_000, 0))
	s.admin = id.NewIdentity()

	_, err := s.programs.Initialize(s.ctx, s.admin)
	s.Require().NoError(err)
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) TestSetAuthority() {
	target := id.NewIdentity()

	s.Run("non-admin caller is unauthorized", func() {
		_, err := s.registry.SetAuthority(s.ctx, id.NewIdentity(), target, true)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("admin creates record with zero counter", func() {
		a, err := s.registry.SetAuthority(s.ctx, s.admin, target, true)
		s.Require().NoError(err)
		s.True(a.Active)
		s.Equal(uint32(0), a.ConfirmedMatches)
	})

	s.Run("updating the flag preserves the counter", func() {
		_, err := s.registry.SetAuthority(s.ctx, s.admin, target, false)
		s.Require().NoError(err)

		a, err := s.registry.SetAuthority(s.ctx, s.admin, target, true)
		s.Require().NoError(err)
		s.True(a.Active)
		s.Equal(uint32(0), a.ConfirmedMatches)
	})
}

func (s *RegistrySuite) TestRequire() {
	target := id.NewIdentity()

	s.Run("unknown authority is forbidden", func() {
		err := s.registry.Require(s.ctx, target)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("inactive authority is forbidden", func() {
		_, err := s.registry.SetAuthority(s.ctx, s.admin, target, false)
		s.Require().NoError(err)

		err = s.registry.Require(s.ctx, target)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("active authority passes", func() {
		_, err := s.registry.SetAuthority(s.ctx, s.admin, target, true)
		s.Require().NoError(err)

		s.Require().NoError(s.registry.Require(s.ctx, target))
	})

	s.Run("empty identity is forbidden", func() {
		err := s.registry.Require(s.ctx, id.Identity{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
