//go:build integration

package researcher_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fundledger/internal/researcher"
	id "fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
	"fundledger/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *researcher.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = researcher.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "researchers"))
}

func (s *PostgresStoreSuite) newResearcher(principal id.Principal) *researcher.Researcher {
	r, err := researcher.New(principal, "Alice", "MIT", []string{"genomics", "proteomics"},
		time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return r
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	r := s.newResearcher("alice")

	s.Require().NoError(s.store.Save(ctx, r))

	found, err := s.store.FindByPrincipal(ctx, "alice")
	s.Require().NoError(err)
	s.Equal(r.Name, found.Name)
	s.Equal(r.Institution, found.Institution)
	s.Equal(r.Expertise, found.Expertise)
	s.Equal(uint64(researcher.InitialReputation), found.Reputation)
	s.Empty(found.Projects)
	s.WithinDuration(r.RegisteredAt, found.RegisteredAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestFindMissingReturnsSentinel() {
	_, err := s.store.FindByPrincipal(context.Background(), "nobody")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestSaveOverwrites() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, s.newResearcher("alice")))

	updated := s.newResearcher("alice")
	updated.Name = "Alice B."
	updated.Institution = "Stanford"
	s.Require().NoError(s.store.Save(ctx, updated))

	found, err := s.store.FindByPrincipal(ctx, "alice")
	s.Require().NoError(err)
	s.Equal("Alice B.", found.Name)
	s.Equal("Stanford", found.Institution)
}

func (s *PostgresStoreSuite) TestAppendProject() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, s.newResearcher("alice")))

	s.Require().NoError(s.store.AppendProject(ctx, "alice", 1))
	s.Require().NoError(s.store.AppendProject(ctx, "alice", 2))

	found, err := s.store.FindByPrincipal(ctx, "alice")
	s.Require().NoError(err)
	s.Equal([]id.ProjectID{1, 2}, found.Projects)

	s.True(errors.Is(s.store.AppendProject(ctx, "nobody", 1), sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestBumpReputation() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, s.newResearcher("alice")))

	s.Require().NoError(s.store.BumpReputation(ctx, "alice", researcher.ReputationReward))

	found, err := s.store.FindByPrincipal(ctx, "alice")
	s.Require().NoError(err)
	s.Equal(uint64(researcher.InitialReputation+researcher.ReputationReward), found.Reputation)

	s.True(errors.Is(s.store.BumpReputation(ctx, "nobody", 1), sentinel.ErrNotFound))
}
