// internal/models/common_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from StateStatus
		to   StateStatus
		want bool
	}{
		{"one step forward", StateStatusPendingRegistration, StateStatusRegistrationInProgress, true},
		{"skipping a step", StateStatusPendingRegistration, StateStatusUnderReview, false},
		{"moving backward", StateStatusUnderReview, StateStatusRegistrationInProgress, false},
		{"final approval step", StateStatusPendingApproval, StateStatusApproved, true},
		{"reject from first status", StateStatusPendingRegistration, StateStatusRejected, true},
		{"reject mid-pipeline", StateStatusUnderReview, StateStatusRejected, true},
		{"approved is terminal", StateStatusApproved, StateStatusUnderReview, false},
		{"rejected is terminal", StateStatusRejected, StateStatusPendingRegistration, false},
		{"re-apply current status", StateStatusApproved, StateStatusApproved, true},
		{"re-apply rejected", StateStatusRejected, StateStatusRejected, true},
		{"unknown target", StateStatusUnderReview, StateStatus("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAllStatesApproved(t *testing.T) {
	request := &LicenseRequest{
		RequestedStates: []string{"SP", "MG"},
		States: StateApprovalMap{
			"SP": {Status: StateStatusApproved},
			"MG": {Status: StateStatusUnderReview},
		},
	}
	assert.False(t, request.AllStatesApproved())

	request.States["MG"] = StateApproval{Status: StateStatusApproved}
	assert.True(t, request.AllStatesApproved())

	// A request with no target states can never be approved.
	empty := &LicenseRequest{}
	assert.False(t, empty.AllStatesApproved())
}

func TestEarliestStateValidUntil(t *testing.T) {
	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	request := &LicenseRequest{
		States: StateApprovalMap{
			"SP": {Status: StateStatusApproved, ValidUntil: &jan},
			"MG": {Status: StateStatusApproved, ValidUntil: &jun},
			"PR": {Status: StateStatusApproved},
		},
	}

	earliest := request.EarliestStateValidUntil()
	assert.NotNil(t, earliest)
	assert.True(t, earliest.Equal(jun))

	none := &LicenseRequest{States: StateApprovalMap{"SP": {Status: StateStatusApproved}}}
	assert.Nil(t, none.EarliestStateValidUntil())
}
