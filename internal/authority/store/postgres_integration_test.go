//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"organmatch/internal/authority"
	"organmatch/internal/authority/store"
	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
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
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "authorities")
	s.Require().NoError(err)
}

func newTestAuthority(active bool) *authority.Authority {
	a, err := authority.New(id.NewIdentity(), active, time.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		panic(err)
	}
	return a
}

func (s *PostgresStoreSuite) TestUpsertInsertsThenUpdates() {
	ctx := context.Background()
	a := newTestAuthority(true)

	s.Require().NoError(s.store.Upsert(ctx, a))

	found, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.True(found.Active)
	s.Equal(uint32(0), found.ConfirmedMatches)

	a.ApplyActiveFlag(false, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Upsert(ctx, a))

	found, err = s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.False(found.Active)
}

// TestConcurrentConfirmationCounter verifies the row lock in Execute makes
// the confirmation counter exact under concurrency: no lost increments.
func (s *PostgresStoreSuite) TestConcurrentConfirmationCounter() {
	ctx := context.Background()
	a := newTestAuthority(true)
	s.Require().NoError(s.store.Upsert(ctx, a))

	const goroutines = 40
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := s.store.Execute(ctx, a.ID,
				func(rec *authority.Authority) error { return rec.CanRecordConfirmation() },
				func(rec *authority.Authority) { rec.ApplyConfirmation(time.Now()) },
			)
			s.NoError(err)
		}()
	}

	wg.Wait()

	found, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(uint32(goroutines), found.ConfirmedMatches)
}

func (s *PostgresStoreSuite) TestNotFoundError() {
	ctx := context.Background()

	_, err := s.store.FindByID(ctx, id.NewIdentity())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Execute(ctx, id.NewIdentity(),
		func(*authority.Authority) error { return nil },
		func(*authority.Authority) {},
	)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
