package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fieldscope/portal/internal/db/models"
)

type LimiterTestSuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context
}

func (s *LimiterTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_json=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), db.AutoMigrate(&models.LoginAttempt{}))

	s.db = db
	s.ctx = context.Background()
}

func (s *LimiterTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func (s *LimiterTestSuite) TestAllowsFreshIdentifier() {
	limiter := New(s.db, 3, time.Minute)

	allowed, retryAfter, err := limiter.Check(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.True(allowed)
	s.Zero(retryAfter)
}

func (s *LimiterTestSuite) TestLocksAfterMaxFailures() {
	limiter := New(s.db, 3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Check(s.ctx, "alice@example.com")
		s.Require().NoError(err)
		s.Require().True(allowed, "attempt %d should be allowed", i+1)
		s.Require().NoError(limiter.Record(s.ctx, "alice@example.com", false))
	}

	allowed, retryAfter, err := limiter.Check(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.False(allowed)
	s.Greater(retryAfter, time.Duration(0))

	// Lockouts are per identifier
	allowed, _, err = limiter.Check(s.ctx, "bob@example.com")
	s.Require().NoError(err)
	s.True(allowed)
}

func (s *LimiterTestSuite) TestSuccessClearsFailures() {
	limiter := New(s.db, 3, time.Minute)

	for i := 0; i < 2; i++ {
		s.Require().NoError(limiter.Record(s.ctx, "alice@example.com", false))
	}
	s.Require().NoError(limiter.Record(s.ctx, "alice@example.com", true))

	// The budget starts over after a successful login
	for i := 0; i < 2; i++ {
		s.Require().NoError(limiter.Record(s.ctx, "alice@example.com", false))
	}
	allowed, _, err := limiter.Check(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.True(allowed)
}

func (s *LimiterTestSuite) TestLockExpires() {
	limiter := New(s.db, 1, 20*time.Millisecond)

	s.Require().NoError(limiter.Record(s.ctx, "alice@example.com", false))

	allowed, _, err := limiter.Check(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.False(allowed)

	time.Sleep(30 * time.Millisecond)

	allowed, _, err = limiter.Check(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.True(allowed)
}

func TestLimiter(t *testing.T) {
	suite.Run(t, new(LimiterTestSuite))
}
