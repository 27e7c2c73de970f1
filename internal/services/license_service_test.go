// internal/services/license_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/taot23/aetlicencas/internal/dimensions"
	"github.com/taot23/aetlicencas/internal/models"
	"github.com/taot23/aetlicencas/internal/utils"
)

type LicenseServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *LicenseService

	owner   *models.User
	other   *models.User
	admin   *models.User
	tractor *models.Vehicle
	trailer *models.Vehicle
	flatbed *models.Vehicle
}

func (suite *LicenseServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewLicenseService(suite.db)

	suite.owner = createTestUser(suite.T(), suite.db, models.UserRoleTransporter)
	suite.other = createTestUser(suite.T(), suite.db, models.UserRoleTransporter)
	suite.admin = createTestUser(suite.T(), suite.db, models.UserRoleAdmin)

	suite.tractor = createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeTractorUnit, "ABC1D23")
	suite.trailer = createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeFirstTrailer, "DEF4E56")
	suite.flatbed = createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeFlatbed, "GHI7F89")
}

func (suite *LicenseServiceTestSuite) ownerActor() Actor {
	return Actor{ID: suite.owner.ID, Role: suite.owner.Role}
}

func (suite *LicenseServiceTestSuite) TestCreateDraftAppliesDefaults() {
	draft, err := suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
	})
	require.NoError(suite.T(), err)

	assert.True(suite.T(), draft.IsDraft)
	assert.True(suite.T(), utils.IsDraftNumber(draft.RequestNumber))
	assert.Equal(suite.T(), dimensions.DefaultWidth, draft.Width)
	assert.Equal(suite.T(), dimensions.DefaultHeight, draft.Height)
	assert.Equal(suite.T(), models.CargoTypeDry, draft.CargoType)
	assert.Zero(suite.T(), draft.Length)
	assert.Equal(suite.T(), 1, draft.Version)
}

func (suite *LicenseServiceTestSuite) TestCreateDraftFlatbedDefaults() {
	draft, err := suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationFlatbed,
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), dimensions.FlatbedDefaultWidth, draft.Width)
	assert.Equal(suite.T(), dimensions.FlatbedDefaultHeight, draft.Height)
	assert.Equal(suite.T(), models.CargoTypeIndivisible, draft.CargoType)
}

func (suite *LicenseServiceTestSuite) TestCreateDraftRejectsIllegalSlots() {
	dolly := createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeDolly, "JKL0A11")

	_, err := suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationFlatbed,
		DollyID:         &dolly.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrIllegalVehicleSlot)

	_, err = suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		FlatbedID:       &suite.flatbed.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrIllegalVehicleSlot)
}

func (suite *LicenseServiceTestSuite) TestUpdateDraftMergesAndBumpsVersion() {
	draft, err := suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		Comments:        "initial",
	})
	require.NoError(suite.T(), err)

	length := 2500
	updated, err := suite.service.UpdateDraft(draft.ID, suite.ownerActor(), &UpdateDraftRequest{
		Length:          &length,
		TractorUnitID:   &suite.tractor.ID,
		RequestedStates: []string{"sp", "MG", "SP"},
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 2500, updated.Length)
	assert.Equal(suite.T(), "ABC1D23", updated.MainVehiclePlate)
	assert.Equal(suite.T(), "initial", updated.Comments)
	// Duplicates collapse and codes are upper-cased.
	assert.Equal(suite.T(), []string{"SP", "MG"}, []string(updated.RequestedStates))
	assert.Equal(suite.T(), 2, updated.Version)
}

func (suite *LicenseServiceTestSuite) TestUpdateDraftForbiddenForOtherUser() {
	draft, err := suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
	})
	require.NoError(suite.T(), err)

	length := 2000
	_, err = suite.service.UpdateDraft(draft.ID, Actor{ID: suite.other.ID, Role: suite.other.Role}, &UpdateDraftRequest{
		Length: &length,
	})
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *LicenseServiceTestSuite) submittableDraft() *models.LicenseRequest {
	draft, err := suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		TractorUnitID:   &suite.tractor.ID,
		FirstTrailerID:  &suite.trailer.ID,
		Length:          2500,
		RequestedStates: []string{"SP", "MG"},
	})
	require.NoError(suite.T(), err)
	return draft
}

func (suite *LicenseServiceTestSuite) TestSubmitSeedsStates() {
	draft := suite.submittableDraft()

	request, err := suite.service.Submit(draft.ID, suite.ownerActor())
	require.NoError(suite.T(), err)

	assert.False(suite.T(), request.IsDraft)
	assert.True(suite.T(), strings.HasPrefix(request.RequestNumber, "AET-"))
	assert.Equal(suite.T(), models.RequestStatusPending, request.Status)
	assert.Equal(suite.T(), 2, request.Version)

	require.Len(suite.T(), request.States, 2)
	for _, code := range []string{"SP", "MG"} {
		approval, ok := request.States[code]
		require.True(suite.T(), ok)
		assert.Equal(suite.T(), models.StateStatusPendingRegistration, approval.Status)
	}
}

func (suite *LicenseServiceTestSuite) TestSubmitTwiceFails() {
	draft := suite.submittableDraft()

	_, err := suite.service.Submit(draft.ID, suite.ownerActor())
	require.NoError(suite.T(), err)

	_, err = suite.service.Submit(draft.ID, suite.ownerActor())
	assert.ErrorIs(suite.T(), err, ErrNotADraft)

	length := 2400
	_, err = suite.service.UpdateDraft(draft.ID, suite.ownerActor(), &UpdateDraftRequest{Length: &length})
	assert.ErrorIs(suite.T(), err, ErrNotADraft)
}

func (suite *LicenseServiceTestSuite) TestSubmitRequiresStates() {
	draft, err := suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		TractorUnitID:   &suite.tractor.ID,
		Length:          2500,
	})
	require.NoError(suite.T(), err)

	_, err = suite.service.Submit(draft.ID, suite.ownerActor())
	assert.ErrorIs(suite.T(), err, ErrEmptyStateSelection)
}

func (suite *LicenseServiceTestSuite) TestSubmitEnforcesLengthBounds() {
	draft, err := suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		TractorUnitID:   &suite.tractor.ID,
		Length:          1500,
		RequestedStates: []string{"SP"},
	})
	require.NoError(suite.T(), err)

	_, err = suite.service.Submit(draft.ID, suite.ownerActor())
	var boundErr *dimensions.BoundError
	require.ErrorAs(suite.T(), err, &boundErr)
	assert.Equal(suite.T(), "length", boundErr.Field)
	assert.Equal(suite.T(), dimensions.MinLength, boundErr.Min)
}

func (suite *LicenseServiceTestSuite) TestSubmitRequiresMainVehicle() {
	draft, err := suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		Length:          2500,
		RequestedStates: []string{"SP"},
	})
	require.NoError(suite.T(), err)

	_, err = suite.service.Submit(draft.ID, suite.ownerActor())
	assert.ErrorIs(suite.T(), err, ErrMissingMainVehicle)
}

func (suite *LicenseServiceTestSuite) TestCreateSubmittedSkipsDraftPhase() {
	request, err := suite.service.CreateSubmitted(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		TractorUnitID:   &suite.tractor.ID,
		Length:          2500,
		RequestedStates: []string{"SP"},
	})
	require.NoError(suite.T(), err)

	assert.False(suite.T(), request.IsDraft)
	assert.True(suite.T(), strings.HasPrefix(request.RequestNumber, "AET-"))
	assert.Len(suite.T(), request.States, 1)

	// The submitted flag must hold on the stored row as well, so the
	// request is visible to the approval pipeline.
	var stored models.LicenseRequest
	require.NoError(suite.T(), suite.db.First(&stored, "id = ?", request.ID).Error)
	assert.False(suite.T(), stored.IsDraft)

	_, err = suite.service.SetStateStatus(request.ID, Actor{ID: suite.admin.ID, Role: suite.admin.Role}, &SetStateStatusRequest{
		State:  "SP",
		Status: models.StateStatusRegistrationInProgress,
	})
	assert.NoError(suite.T(), err)
}

func (suite *LicenseServiceTestSuite) TestDeleteDraft() {
	draft := suite.submittableDraft()

	require.NoError(suite.T(), suite.service.DeleteDraft(draft.ID, suite.ownerActor()))

	_, err := suite.service.GetRequest(draft.ID, suite.ownerActor())
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *LicenseServiceTestSuite) TestDeleteSubmittedRequiresAdmin() {
	draft := suite.submittableDraft()
	_, err := suite.service.Submit(draft.ID, suite.ownerActor())
	require.NoError(suite.T(), err)

	err = suite.service.DeleteDraft(draft.ID, suite.ownerActor())
	assert.ErrorIs(suite.T(), err, ErrNotADraft)

	err = suite.service.DeleteDraft(draft.ID, Actor{ID: suite.admin.ID, Role: suite.admin.Role})
	assert.NoError(suite.T(), err)
}

func (suite *LicenseServiceTestSuite) TestListRequestsScoping() {
	draft := suite.submittableDraft()
	_, err := suite.service.Submit(draft.ID, suite.ownerActor())
	require.NoError(suite.T(), err)

	// The other user sees nothing; staff see everything.
	requests, total, err := suite.service.ListRequests(ScopeOwner(suite.other.ID), utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), total)
	assert.Empty(suite.T(), requests)

	requests, total, err = suite.service.ListRequests(ScopeAll(), utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, total)
	assert.Len(suite.T(), requests, 1)
}

func TestLicenseServiceSuite(t *testing.T) {
	suite.Run(t, new(LicenseServiceTestSuite))
}
