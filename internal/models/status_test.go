package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestStatusCanTransition(t *testing.T) {
	cases := []struct {
		from, to RequestStatus
		ok       bool
	}{
		{RequestPending, RequestApproved, true},
		{RequestPending, RequestRejected, true},
		{RequestPending, RequestCancelled, true},
		{RequestApproved, RequestCancelled, true},
		{RequestRejected, RequestPending, true},
		{RequestCancelled, RequestPending, true},
		{RequestApproved, RequestRejected, false},
		{RequestApproved, RequestPending, false},
		{RequestRejected, RequestApproved, false},
		{RequestCancelled, RequestApproved, false},
		{RequestPending, RequestPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestClosedEnumsRejectUnknownValues(t *testing.T) {
	var req SubmitVerificationRequest
	err := json.Unmarshal([]byte(`{"req_type":"celebrity"}`), &req)
	require.Error(t, err)

	var role SetRoleRequest
	require.Error(t, json.Unmarshal([]byte(`{"role":"superuser"}`), &role))
	require.NoError(t, json.Unmarshal([]byte(`{"role":"admin"}`), &role))
	assert.Equal(t, RoleAdmin, role.Role)

	var campaign SendCampaignRequest
	require.Error(t, json.Unmarshal([]byte(`{"target":"everyone"}`), &campaign))
}

func TestParseRequestStatus(t *testing.T) {
	status, err := ParseRequestStatus("")
	require.NoError(t, err)
	assert.Nil(t, status)

	status, err = ParseRequestStatus("approved")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, RequestApproved, *status)

	_, err = ParseRequestStatus("done")
	assert.Error(t, err)
}

func TestRoleIsStaff(t *testing.T) {
	assert.False(t, RoleUser.IsStaff())
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleOwner.IsStaff())
}
