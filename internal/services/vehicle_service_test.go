// internal/services/vehicle_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/taot23/aetlicencas/internal/models"
	"github.com/taot23/aetlicencas/internal/utils"
)

type VehicleServiceTestSuite struct {
	suite.Suite
	db           *gorm.DB
	vehicles     *VehicleService
	transporters *TransporterService
	licenses     *LicenseService

	owner *models.User
	other *models.User
}

func (suite *VehicleServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.vehicles = NewVehicleService(suite.db)
	suite.transporters = NewTransporterService(suite.db, nil)
	suite.licenses = NewLicenseService(suite.db)

	suite.owner = createTestUser(suite.T(), suite.db, models.UserRoleTransporter)
	suite.other = createTestUser(suite.T(), suite.db, models.UserRoleTransporter)
}

func (suite *VehicleServiceTestSuite) ownerActor() Actor {
	return Actor{ID: suite.owner.ID, Role: suite.owner.Role}
}

func (suite *VehicleServiceTestSuite) TestCreateNormalizesPlate() {
	vehicle, err := suite.vehicles.Create(suite.owner.ID, &VehicleRequest{
		Plate:       "abc1d23",
		VehicleType: models.VehicleTypeTractorUnit,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ABC1D23", vehicle.Plate)
}

func (suite *VehicleServiceTestSuite) TestCreateRejectsBadPlate() {
	_, err := suite.vehicles.Create(suite.owner.ID, &VehicleRequest{
		Plate:       "NOT-A-PLATE",
		VehicleType: models.VehicleTypeTractorUnit,
	})
	assert.Error(suite.T(), err)
}

func (suite *VehicleServiceTestSuite) TestDeleteRefusedWhileReferenced() {
	vehicle := createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeTractorUnit, "ABC1D23")

	_, err := suite.licenses.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		TractorUnitID:   &vehicle.ID,
	})
	require.NoError(suite.T(), err)

	err = suite.vehicles.Delete(vehicle.ID, suite.ownerActor())
	assert.ErrorIs(suite.T(), err, ErrVehicleInUse)
}

func (suite *VehicleServiceTestSuite) TestDeleteUnreferencedVehicle() {
	vehicle := createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeFirstTrailer, "DEF4E56")

	require.NoError(suite.T(), suite.vehicles.Delete(vehicle.ID, suite.ownerActor()))

	_, err := suite.vehicles.Get(vehicle.ID, suite.ownerActor())
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *VehicleServiceTestSuite) TestGetForbiddenForOtherOwner() {
	vehicle := createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeTractorUnit, "ABC1D23")

	_, err := suite.vehicles.Get(vehicle.ID, Actor{ID: suite.other.ID, Role: suite.other.Role})
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *VehicleServiceTestSuite) TestListScoping() {
	createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeTractorUnit, "ABC1D23")
	createTestVehicle(suite.T(), suite.db, suite.other.ID, models.VehicleTypeTractorUnit, "DEF4E56")

	_, total, err := suite.vehicles.List(ScopeOwner(suite.owner.ID), utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, total)

	_, total, err = suite.vehicles.List(ScopeAll(), utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 2, total)
}

func (suite *VehicleServiceTestSuite) TestTransporterDeleteRefusedWhileReferenced() {
	transporter := createTestTransporter(suite.T(), suite.db, suite.owner.ID)

	_, err := suite.licenses.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		TransporterID:   &transporter.ID,
	})
	require.NoError(suite.T(), err)

	err = suite.transporters.Delete(transporter.ID, suite.ownerActor())
	assert.ErrorIs(suite.T(), err, ErrTransporterInUse)
}

func TestVehicleServiceSuite(t *testing.T) {
	suite.Run(t, new(VehicleServiceTestSuite))
}
