//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"organmatch/internal/waitlist/store"
	id "organmatch/pkg/domain"
	"organmatch/pkg/testutil/containers"
)

type RedisCandidatesSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	index *store.RedisCandidates
}

func TestRedisCandidatesSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCandidatesSuite))
}

func (s *RedisCandidatesSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.index = store.NewRedisCandidates(s.redis.Client)
}

func (s *RedisCandidatesSuite) SetupTest() {
	err := s.redis.FlushAll(context.Background())
	s.Require().NoError(err)
}

func (s *RedisCandidatesSuite) TestAddListRemove() {
	ctx := context.Background()
	first := id.NewIdentity()
	second := id.NewIdentity()

	s.Require().NoError(s.index.Add(ctx, id.OrganKidney, id.BloodONegative, first))
	s.Require().NoError(s.index.Add(ctx, id.OrganKidney, id.BloodONegative, second))

	owners, err := s.index.List(ctx, id.OrganKidney, id.BloodONegative)
	s.Require().NoError(err)
	s.ElementsMatch([]id.Identity{first, second}, owners)

	s.Require().NoError(s.index.Remove(ctx, id.OrganKidney, id.BloodONegative, first))

	owners, err = s.index.List(ctx, id.OrganKidney, id.BloodONegative)
	s.Require().NoError(err)
	s.Equal([]id.Identity{second}, owners)
}

func (s *RedisCandidatesSuite) TestAddIsIdempotent() {
	ctx := context.Background()
	owner := id.NewIdentity()

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.index.Add(ctx, id.OrganLiver, id.BloodAPositive, owner))
	}

	owners, err := s.index.List(ctx, id.OrganLiver, id.BloodAPositive)
	s.Require().NoError(err)
	s.Equal([]id.Identity{owner}, owners)
}

func (s *RedisCandidatesSuite) TestPoolsAreDisjoint() {
	ctx := context.Background()
	kidney := id.NewIdentity()
	heart := id.NewIdentity()

	s.Require().NoError(s.index.Add(ctx, id.OrganKidney, id.BloodONegative, kidney))
	s.Require().NoError(s.index.Add(ctx, id.OrganHeart, id.BloodONegative, heart))

	owners, err := s.index.List(ctx, id.OrganKidney, id.BloodONegative)
	s.Require().NoError(err)
	s.Equal([]id.Identity{kidney}, owners)

	// Same organ, different blood type is a separate pool too
	owners, err = s.index.List(ctx, id.OrganKidney, id.BloodOPositive)
	s.Require().NoError(err)
	s.Empty(owners)
}

func (s *RedisCandidatesSuite) TestRemoveMissingMemberIsNoOp() {
	ctx := context.Background()

	err := s.index.Remove(ctx, id.OrganLung, id.BloodABNegative, id.NewIdentity())
	s.NoError(err)
}
