// internal/services/user_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/taot23/aetlicencas/internal/models"
)

type UserServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	users    *UserService
	licenses *LicenseService

	admin *models.User
	owner *models.User
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.users = NewUserService(suite.db)
	suite.licenses = NewLicenseService(suite.db)

	suite.admin = createTestUser(suite.T(), suite.db, models.UserRoleAdmin)
	suite.owner = createTestUser(suite.T(), suite.db, models.UserRoleTransporter)
}

func (suite *UserServiceTestSuite) adminActor() Actor {
	return Actor{ID: suite.admin.ID, Role: suite.admin.Role}
}

func (suite *UserServiceTestSuite) TestDeleteRequiresAdmin() {
	err := suite.users.Delete(suite.owner.ID, Actor{ID: suite.owner.ID, Role: suite.owner.Role})
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *UserServiceTestSuite) TestDeleteRefusedWhileRequestsExist() {
	tractor := createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeTractorUnit, "ABC1D23")
	_, err := suite.licenses.CreateSubmitted(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		TractorUnitID:   &tractor.ID,
		Length:          2500,
		RequestedStates: []string{"SP"},
	})
	require.NoError(suite.T(), err)

	err = suite.users.Delete(suite.owner.ID, suite.adminActor())
	assert.ErrorIs(suite.T(), err, ErrUserHasRequests)
}

func (suite *UserServiceTestSuite) TestDeleteCascades() {
	vehicle := createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeTractorUnit, "ABC1D23")
	transporter := createTestTransporter(suite.T(), suite.db, suite.owner.ID)

	// Drafts go with the user; only submitted requests block deletion.
	draft, err := suite.licenses.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
	})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.users.Delete(suite.owner.ID, suite.adminActor()))

	_, err = suite.users.Get(suite.owner.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	var count int64
	suite.db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Count(&count)
	assert.Zero(suite.T(), count)
	suite.db.Model(&models.Transporter{}).Where("id = ?", transporter.ID).Count(&count)
	assert.Zero(suite.T(), count)
	suite.db.Model(&models.LicenseRequest{}).Where("id = ?", draft.ID).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *UserServiceTestSuite) TestUpdateRole() {
	updated, err := suite.users.UpdateRole(suite.owner.ID, suite.adminActor(), models.UserRoleOperational)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.UserRoleOperational, updated.Role)

	_, err = suite.users.UpdateRole(suite.owner.ID, suite.adminActor(), models.UserRole("bogus"))
	assert.Error(suite.T(), err)

	_, err = suite.users.UpdateRole(suite.admin.ID, Actor{ID: suite.owner.ID, Role: models.UserRoleTransporter}, models.UserRoleAdmin)
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
