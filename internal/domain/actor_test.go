package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "client", want: RoleClient},
		{in: " Staff ", want: RoleStaff},
		{in: "privileged_staff", want: RolePrivilegedStaff},
		{in: "privileged-staff", want: RolePrivilegedStaff},
		{in: "admin", want: RoleUnknown, wantErr: true},
		{in: "", want: RoleUnknown, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_JSONUsesWireNames(t *testing.T) {
	payload := struct {
		Role Role `json:"role"`
	}{Role: RolePrivilegedStaff}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"privileged_staff"}`, string(data))

	payload.Role = RoleUnknown
	require.NoError(t, json.Unmarshal([]byte(`{"role":"staff"}`), &payload))
	assert.Equal(t, RoleStaff, payload.Role)
}

func TestRole_Sides(t *testing.T) {
	assert.False(t, RoleClient.IsStaffSide())
	assert.True(t, RoleStaff.IsStaffSide())
	assert.True(t, RolePrivilegedStaff.IsStaffSide())
	assert.False(t, RoleUnknown.IsStaffSide())

	assert.True(t, RolePrivilegedStaff.IsPrivileged())
	assert.False(t, RoleStaff.IsPrivileged())
}

func TestValidActorID(t *testing.T) {
	valid := []string{"user-1", "kc|1234", "auth0:abc", "jane.doe@example.com", "a"}
	for _, id := range valid {
		assert.True(t, ValidActorID(id), id)
	}

	invalid := []string{"", " user", "-leading", "has space", "semi;colon", string(make([]byte, 200))}
	for _, id := range invalid {
		assert.False(t, ValidActorID(id), id)
	}
}
