package services

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
	"github.com/fieldscope/portal/internal/db/repos"
	"github.com/fieldscope/portal/internal/ratelimit"
)

type UserServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	ctx     context.Context
	service *UserService
}

func (s *UserServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_json=1"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), db.AutoMigrate(&models.User{}, &models.LoginAttempt{}))
	for _, table := range []string{"users", "login_attempts"} {
		require.NoError(s.T(), db.Exec("DELETE FROM "+table).Error)
	}

	s.db = db
	s.ctx = context.Background()
	s.service = NewUserService(repos.NewUserRepository(db), ratelimit.New(db, 3, time.Minute))
}

func (s *UserServiceTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func (s *UserServiceTestSuite) createUser(email, password string) *models.User {
	user := &models.User{Name: "Tester", Email: email, Role: models.UserRoleUser}
	require.NoError(s.T(), s.service.Create(s.ctx, user, password, models.AdminID, "192.0.2.1"))
	return user
}

func (s *UserServiceTestSuite) TestAuthenticateSucceeds() {
	created := s.createUser("tester@example.com", "secret")

	user, err := s.service.Authenticate(s.ctx, "tester@example.com", "secret", "192.0.2.1")
	s.Require().NoError(err)
	s.Equal(created.ID, user.ID)
}

func (s *UserServiceTestSuite) TestAuthenticateRejectsWrongPassword() {
	s.createUser("tester@example.com", "secret")

	_, err := s.service.Authenticate(s.ctx, "tester@example.com", "wrong", "192.0.2.1")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *UserServiceTestSuite) TestAuthenticateRejectsUnknownEmail() {
	_, err := s.service.Authenticate(s.ctx, "nobody@example.com", "secret", "192.0.2.1")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *UserServiceTestSuite) TestAuthenticateLocksAfterRepeatedFailures() {
	s.createUser("tester@example.com", "secret")

	for i := 0; i < 3; i++ {
		_, err := s.service.Authenticate(s.ctx, "tester@example.com", "wrong", "192.0.2.1")
		s.Require().ErrorIs(err, ErrInvalidCredentials)
	}

	// Even the correct password is refused while locked
	_, err := s.service.Authenticate(s.ctx, "tester@example.com", "secret", "192.0.2.1")
	s.ErrorIs(err, ErrTooManyAttempts)

	// Other identifiers are unaffected
	s.createUser("other@example.com", "secret")
	_, err = s.service.Authenticate(s.ctx, "other@example.com", "secret", "192.0.2.1")
	s.NoError(err)
}

func (s *UserServiceTestSuite) TestSuccessfulLoginClearsFailureBudget() {
	s.createUser("tester@example.com", "secret")

	for i := 0; i < 2; i++ {
		_, err := s.service.Authenticate(s.ctx, "tester@example.com", "wrong", "192.0.2.1")
		s.Require().ErrorIs(err, ErrInvalidCredentials)
	}
	_, err := s.service.Authenticate(s.ctx, "tester@example.com", "secret", "192.0.2.1")
	s.Require().NoError(err)

	// The budget is fresh again after the successful login
	for i := 0; i < 2; i++ {
		_, err := s.service.Authenticate(s.ctx, "tester@example.com", "wrong", "192.0.2.1")
		s.Require().ErrorIs(err, ErrInvalidCredentials)
	}
	_, err = s.service.Authenticate(s.ctx, "tester@example.com", "secret", "192.0.2.1")
	s.NoError(err)
}

func (s *UserServiceTestSuite) TestCreateHashesPassword() {
	user := s.createUser("tester@example.com", "secret")

	stored, err := s.service.Get(s.ctx, user.ID)
	s.Require().NoError(err)
	s.NotEqual("secret", stored.PasswordHash)
	s.True(stored.CheckPassword("secret"))
}

func (s *UserServiceTestSuite) TestDeleteRemovesUser() {
	user := s.createUser("tester@example.com", "secret")

	s.Require().NoError(s.service.Delete(s.ctx, user.ID, models.AdminID, "192.0.2.1"))

	_, err := s.service.Get(s.ctx, user.ID)
	s.Error(err)
}

func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
