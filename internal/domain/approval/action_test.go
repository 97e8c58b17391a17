package approval

import (
	"encoding/json"
	"testing"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

var allStatuses = []Status{
	StatusPending, StatusLevel1Approved, StatusApproved, StatusRejected,
	StatusCompleted, StatusExported, StatusCancelled, StatusFailed, Status("on_hold"), Status(""),
}

func TestStatusActions(t *testing.T) {
	tests := []struct {
		status Status
		want   ActionSet
	}{
		{StatusPending, ActionSet{ActionApproveLevel1, ActionReject}},
		{StatusLevel1Approved, ActionSet{ActionApproveFinal, ActionReject}},
		{StatusApproved, ActionSet{}},
		{StatusRejected, ActionSet{}},
		{StatusExported, ActionSet{}},
		{Status("on_hold"), ActionSet{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusActions(tt.status))
		})
	}
}

func TestStatusActions_TerminalStatusesOfferNothing(t *testing.T) {
	for _, status := range allStatuses {
		if status.IsTerminal() {
			assert.True(t, StatusActions(status).IsEmpty(), "status %q", status)
		}
	}
}

func TestStatusActions_NeverBothApprovals(t *testing.T) {
	for _, status := range allStatuses {
		actions := StatusActions(status)
		assert.False(t, actions.Has(ActionApproveLevel1) && actions.Has(ActionApproveFinal), "status %q", status)
	}
}

func TestActions_ByCapability(t *testing.T) {
	tests := []struct {
		name       string
		status     Status
		capability user.ApprovalCapability
		want       ActionSet
	}{
		{"organization pending", StatusPending, user.CapabilityOrganization, ActionSet{ActionApproveLevel1, ActionReject}},
		{"organization level1", StatusLevel1Approved, user.CapabilityOrganization, ActionSet{ActionApproveFinal, ActionReject}},
		{"division pending", StatusPending, user.CapabilityDivision, ActionSet{ActionApproveLevel1, ActionReject}},
		{"division level1", StatusLevel1Approved, user.CapabilityDivision, ActionSet{}},
		{"none pending", StatusPending, user.CapabilityNone, ActionSet{}},
		{"organization approved", StatusApproved, user.CapabilityOrganization, ActionSet{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Actions(tt.status, tt.capability))
		})
	}
}

func TestActions_SubsetOfStatusActions(t *testing.T) {
	caps := []user.ApprovalCapability{user.CapabilityNone, user.CapabilityDivision, user.CapabilityOrganization}
	for _, status := range allStatuses {
		allowed := StatusActions(status)
		for _, c := range caps {
			for _, a := range Actions(status, c) {
				assert.True(t, allowed.Has(a), "status %q capability %q action %q", status, c, a)
				assert.True(t, CapabilityPermits(c, a), "status %q capability %q action %q", status, c, a)
			}
		}
	}
}

func TestCapabilityPermits(t *testing.T) {
	assert.True(t, CapabilityPermits(user.CapabilityOrganization, ActionApproveFinal))
	assert.True(t, CapabilityPermits(user.CapabilityDivision, ActionApproveLevel1))
	assert.True(t, CapabilityPermits(user.CapabilityDivision, ActionReject))
	assert.False(t, CapabilityPermits(user.CapabilityDivision, ActionApproveFinal))
	assert.False(t, CapabilityPermits(user.CapabilityNone, ActionReject))
	assert.False(t, CapabilityPermits(user.CapabilityOrganization, Action("delete")))
}

func TestActionSet_EncodesEmptyAsArray(t *testing.T) {
	data, err := json.Marshal(StatusActions(StatusApproved))

	assert.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
