// internal/services/license_states_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/taot23/aetlicencas/internal/models"
)

type LicenseStatesTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *LicenseService

	owner *models.User
	staff *models.User
}

func (suite *LicenseStatesTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewLicenseService(suite.db)

	suite.owner = createTestUser(suite.T(), suite.db, models.UserRoleTransporter)
	suite.staff = createTestUser(suite.T(), suite.db, models.UserRoleOperational)
}

func (suite *LicenseStatesTestSuite) staffActor() Actor {
	return Actor{ID: suite.staff.ID, Role: suite.staff.Role}
}

// submittedRequest creates a submitted request targeting the given states.
func (suite *LicenseStatesTestSuite) submittedRequest(states ...string) *models.LicenseRequest {
	tractor := createTestVehicle(suite.T(), suite.db, suite.owner.ID, models.VehicleTypeTractorUnit, "ABC1D23")

	request, err := suite.service.CreateSubmitted(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		TractorUnitID:   &tractor.ID,
		Length:          2500,
		RequestedStates: states,
	})
	require.NoError(suite.T(), err)
	return request
}

// advance walks one state through the given statuses in order.
func (suite *LicenseStatesTestSuite) advance(id uuid.UUID, state string, statuses ...models.StateStatus) *models.LicenseRequest {
	var request *models.LicenseRequest
	for _, status := range statuses {
		req := &SetStateStatusRequest{State: state, Status: status}
		if status == models.StateStatusApproved {
			validUntil := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			req.ValidUntil = &validUntil
		}
		var err error
		request, err = suite.service.SetStateStatus(id, suite.staffActor(), req)
		require.NoError(suite.T(), err)
	}
	return request
}

func (suite *LicenseStatesTestSuite) TestForwardProgressIsOneStep() {
	request := suite.submittedRequest("SP")

	updated, err := suite.service.SetStateStatus(request.ID, suite.staffActor(), &SetStateStatusRequest{
		State:  "SP",
		Status: models.StateStatusRegistrationInProgress,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StateStatusRegistrationInProgress, updated.States["SP"].Status)

	// Skipping under_review is illegal.
	_, err = suite.service.SetStateStatus(request.ID, suite.staffActor(), &SetStateStatusRequest{
		State:  "SP",
		Status: models.StateStatusPendingApproval,
	})
	var transitionErr *InvalidTransitionError
	require.ErrorAs(suite.T(), err, &transitionErr)
	assert.Equal(suite.T(), "SP", transitionErr.State)
	assert.Equal(suite.T(), models.StateStatusRegistrationInProgress, transitionErr.From)
}

func (suite *LicenseStatesTestSuite) TestApprovalRequiresValidity() {
	request := suite.submittedRequest("SP")
	suite.advance(request.ID, "SP",
		models.StateStatusRegistrationInProgress,
		models.StateStatusUnderReview,
		models.StateStatusPendingApproval,
	)

	_, err := suite.service.SetStateStatus(request.ID, suite.staffActor(), &SetStateStatusRequest{
		State:  "SP",
		Status: models.StateStatusApproved,
	})
	assert.ErrorIs(suite.T(), err, ErrMissingValidity)
}

func (suite *LicenseStatesTestSuite) TestIdempotentReapplyKeepsExternalNumber() {
	request := suite.submittedRequest("SP")
	suite.advance(request.ID, "SP",
		models.StateStatusRegistrationInProgress,
		models.StateStatusUnderReview,
		models.StateStatusPendingApproval,
	)

	validUntil := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	external := "SP-2026-0001"
	updated, err := suite.service.SetStateStatus(request.ID, suite.staffActor(), &SetStateStatusRequest{
		State:                 "SP",
		Status:                models.StateStatusApproved,
		ValidUntil:            &validUntil,
		ExternalLicenseNumber: &external,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), external, updated.States["SP"].ExternalLicenseNumber)

	// Re-applying approved with only a new attachment keeps the number and
	// the validity.
	attachment := "https://example.com/decisao-sp.pdf"
	updated, err = suite.service.SetStateStatus(request.ID, suite.staffActor(), &SetStateStatusRequest{
		State:         "SP",
		Status:        models.StateStatusApproved,
		AttachmentURL: &attachment,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), external, updated.States["SP"].ExternalLicenseNumber)
	assert.Equal(suite.T(), attachment, updated.States["SP"].AttachmentURL)
	require.NotNil(suite.T(), updated.States["SP"].ValidUntil)
	assert.True(suite.T(), updated.States["SP"].ValidUntil.Equal(validUntil))
}

func (suite *LicenseStatesTestSuite) TestRollupOnFullConvergence() {
	request := suite.submittedRequest("SP", "MG")

	steps := []models.StateStatus{
		models.StateStatusRegistrationInProgress,
		models.StateStatusUnderReview,
		models.StateStatusPendingApproval,
	}
	suite.advance(request.ID, "SP", steps...)
	suite.advance(request.ID, "MG", steps...)

	spValidity := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err := suite.service.SetStateStatus(request.ID, suite.staffActor(), &SetStateStatusRequest{
		State:      "SP",
		Status:     models.StateStatusApproved,
		ValidUntil: &spValidity,
	})
	require.NoError(suite.T(), err)

	// One approval out of two does not converge.
	assert.Equal(suite.T(), models.RequestStatusPending, updated.Status)
	assert.Nil(suite.T(), updated.ValidUntil)

	mgValidity := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	updated, err = suite.service.SetStateStatus(request.ID, suite.staffActor(), &SetStateStatusRequest{
		State:      "MG",
		Status:     models.StateStatusApproved,
		ValidUntil: &mgValidity,
	})
	require.NoError(suite.T(), err)

	// Full convergence forces approved with the earliest per-state expiry.
	assert.Equal(suite.T(), models.RequestStatusApproved, updated.Status)
	require.NotNil(suite.T(), updated.ValidUntil)
	assert.True(suite.T(), updated.ValidUntil.Equal(mgValidity))
}

func (suite *LicenseStatesTestSuite) TestRejectionDoesNotChangeOverall() {
	request := suite.submittedRequest("SP", "MG")

	updated, err := suite.service.SetStateStatus(request.ID, suite.staffActor(), &SetStateStatusRequest{
		State:  "SP",
		Status: models.StateStatusRejected,
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), models.StateStatusRejected, updated.States["SP"].Status)
	assert.Equal(suite.T(), models.RequestStatusPending, updated.Status)

	// The rejected state is terminal.
	_, err = suite.service.SetStateStatus(request.ID, suite.staffActor(), &SetStateStatusRequest{
		State:  "SP",
		Status: models.StateStatusRegistrationInProgress,
	})
	var transitionErr *InvalidTransitionError
	assert.ErrorAs(suite.T(), err, &transitionErr)
}

func (suite *LicenseStatesTestSuite) TestUnknownState() {
	request := suite.submittedRequest("SP")

	_, err := suite.service.SetStateStatus(request.ID, suite.staffActor(), &SetStateStatusRequest{
		State:  "RJ",
		Status: models.StateStatusRegistrationInProgress,
	})
	var unknownErr *UnknownStateError
	require.ErrorAs(suite.T(), err, &unknownErr)
	assert.Equal(suite.T(), "RJ", unknownErr.State)
}

func (suite *LicenseStatesTestSuite) TestNonStaffCannotDecide() {
	request := suite.submittedRequest("SP")

	_, err := suite.service.SetStateStatus(request.ID, Actor{ID: suite.owner.ID, Role: suite.owner.Role}, &SetStateStatusRequest{
		State:  "SP",
		Status: models.StateStatusRegistrationInProgress,
	})
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *LicenseStatesTestSuite) TestDraftsAreOutsideThePipeline() {
	draft, err := suite.service.CreateDraft(suite.owner.ID, &CreateDraftRequest{
		CombinationType: models.CombinationBitrain9Axles,
		RequestedStates: []string{"SP"},
	})
	require.NoError(suite.T(), err)

	_, err = suite.service.SetStateStatus(draft.ID, suite.staffActor(), &SetStateStatusRequest{
		State:  "SP",
		Status: models.StateStatusRegistrationInProgress,
	})
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *LicenseStatesTestSuite) TestManualOverallStatus() {
	request := suite.submittedRequest("SP")

	updated, err := suite.service.UpdateStatus(request.ID, suite.staffActor(), &UpdateStatusRequest{
		Status: models.RequestStatusUnderReview,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RequestStatusUnderReview, updated.Status)

	// Overall approved is owned by the rollup until every state approves.
	_, err = suite.service.UpdateStatus(request.ID, suite.staffActor(), &UpdateStatusRequest{
		Status: models.RequestStatusApproved,
	})
	assert.ErrorIs(suite.T(), err, ErrApprovalNotConverged)
}

func TestLicenseStatesSuite(t *testing.T) {
	suite.Run(t, new(LicenseStatesTestSuite))
}
