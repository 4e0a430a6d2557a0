package repos

import (
	"encoding/json"

	"github.com/fieldscope/portal/internal/db/models"
)

func (s *DBRepositoryTestSuite) TestAuditCreateAndGet() {
	user := s.createTestUser("audit1@example.com")

	details, err := json.Marshal(map[string]interface{}{
		"company":     "Acme",
		"flow_run_id": "run-1",
	})
	s.Require().NoError(err)

	entry := &models.AuditLog{
		UserID:        user.ID,
		Action:        models.AuditActionGenerateReport,
		Details:       details,
		OriginAddress: "192.0.2.10",
	}
	s.Require().NoError(s.auditRepo.Create(s.ctx, entry))
	s.NotZero(entry.ID)

	got, err := s.auditRepo.GetByID(s.ctx, entry.ID)
	s.Require().NoError(err)
	s.Equal(models.AuditActionGenerateReport, got.Action)
	s.Equal("192.0.2.10", got.OriginAddress)

	// The structured payload survives the round trip intact
	m, err := got.DetailMap()
	s.Require().NoError(err)
	s.Equal("Acme", m["company"])
	s.Equal("run-1", m["flow_run_id"])
}

func (s *DBRepositoryTestSuite) TestAuditCreateRejectsInvalid() {
	s.Error(s.auditRepo.Create(s.ctx, &models.AuditLog{Action: "login"}))
	s.Error(s.auditRepo.Create(s.ctx, &models.AuditLog{UserID: 1}))
}

func (s *DBRepositoryTestSuite) TestAuditListFilters() {
	alice := s.createTestUser("audit2@example.com")
	bob := s.createTestUser("audit3@example.com")

	for _, entry := range []*models.AuditLog{
		{UserID: alice.ID, Action: models.AuditActionLogin},
		{UserID: alice.ID, Action: models.AuditActionGenerateReport},
		{UserID: bob.ID, Action: models.AuditActionLogin},
	} {
		s.Require().NoError(s.auditRepo.Create(s.ctx, entry))
	}

	entries, err := s.auditRepo.List(s.ctx, alice.ID, "", nil)
	s.Require().NoError(err)
	s.Len(entries, 2)

	entries, err = s.auditRepo.List(s.ctx, 0, models.AuditActionLogin, nil)
	s.Require().NoError(err)
	s.Len(entries, 2)

	entries, err = s.auditRepo.List(s.ctx, bob.ID, models.AuditActionLogin, nil)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(bob.ID, entries[0].UserID)
}
