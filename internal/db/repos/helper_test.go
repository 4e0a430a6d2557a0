package repos

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

// DBRepositoryTestSuite provides a base test suite for repository tests
type DBRepositoryTestSuite struct {
	suite.Suite
	db          *gorm.DB
	ctx         context.Context
	userRepo    *UserRepository
	companyRepo *CompanyRepository
	reportRepo  *ReportRepository
	auditRepo   *AuditRepository
}

func (s *DBRepositoryTestSuite) SetupTest() {
	// Create new in-memory database with JSON support
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_json=1"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err, "Failed to create in-memory database")

	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Report{},
		&models.AuditLog{},
		&models.LoginAttempt{},
	)
	require.NoError(s.T(), err, "Failed to run database migrations")

	s.db = db
	s.userRepo = NewUserRepository(s.db)
	s.companyRepo = NewCompanyRepository(s.db)
	s.reportRepo = NewReportRepository(s.db)
	s.auditRepo = NewAuditRepository(s.db)
	s.ctx = context.Background()
}

func (s *DBRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

// Helper methods for creating test data

func (s *DBRepositoryTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Name:  "Test User",
		Email: email,
		Role:  models.UserRoleUser,
	}
	user.SetPassword("secret")
	err := s.userRepo.CreateUser(s.ctx, user)
	s.Require().NoError(err)
	return user
}

func (s *DBRepositoryTestSuite) createTestCompany(name string) *models.Company {
	company := &models.Company{
		Name:    name,
		Address: "1 Test Street",
	}
	err := s.companyRepo.Create(s.ctx, company)
	s.Require().NoError(err)
	return company
}

func (s *DBRepositoryTestSuite) createTestReport(companyID, userID uint) *models.Report {
	report := &models.Report{
		CompanyID: companyID,
		UserID:    userID,
		StartDate: time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
	}
	err := s.reportRepo.Create(s.ctx, report)
	s.Require().NoError(err)
	return report
}

// TestDBRepository runs the repository test suite
func TestDBRepository(t *testing.T) {
	suite.Run(t, new(DBRepositoryTestSuite))
}
