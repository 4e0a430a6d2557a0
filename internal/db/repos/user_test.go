package repos

import (
	"gorm.io/gorm"

	"github.com/fieldscope/portal/internal/db/models"
)

func (s *DBRepositoryTestSuite) TestUserCreateAndGet() {
	user := s.createTestUser("users1@example.com")

	got, err := s.userRepo.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("users1@example.com", got.Email)
	s.Equal(models.UserRoleUser, got.Role)
	s.True(got.CheckPassword("secret"))
	s.False(got.CheckPassword("wrong"))

	byEmail, err := s.userRepo.GetUserByEmail(s.ctx, "users1@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)
}

func (s *DBRepositoryTestSuite) TestUserEmailUnique() {
	s.createTestUser("users2@example.com")

	dup := &models.User{
		Name:  "Duplicate",
		Email: "users2@example.com",
		Role:  models.UserRoleUser,
	}
	dup.SetPassword("secret")
	s.Error(s.userRepo.CreateUser(s.ctx, dup))
}

func (s *DBRepositoryTestSuite) TestUserListAndDelete() {
	s.createTestUser("users3@example.com")
	user := s.createTestUser("users4@example.com")

	users, err := s.userRepo.GetUsers(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(users, 2)

	count, err := s.userRepo.Count(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(2, count)

	s.Require().NoError(s.userRepo.DeleteUser(s.ctx, user.ID))
	_, err = s.userRepo.GetUserByID(s.ctx, user.ID)
	s.Error(err)

	// Deleting the same user again matches zero rows
	s.ErrorIs(s.userRepo.DeleteUser(s.ctx, user.ID), gorm.ErrRecordNotFound)
}

func (s *DBRepositoryTestSuite) TestCompanyCreateGetDelete() {
	company := s.createTestCompany("Acme")

	got, err := s.companyRepo.GetByID(s.ctx, company.ID)
	s.Require().NoError(err)
	s.Equal("Acme", got.Name)

	byName, err := s.companyRepo.GetByName(s.ctx, "Acme")
	s.Require().NoError(err)
	s.Equal(company.ID, byName.ID)

	companies, err := s.companyRepo.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(companies, 1)

	s.Require().NoError(s.companyRepo.Delete(s.ctx, company.ID))
	_, err = s.companyRepo.GetByID(s.ctx, company.ID)
	s.Error(err)

	s.ErrorIs(s.companyRepo.Delete(s.ctx, company.ID), gorm.ErrRecordNotFound)
}
