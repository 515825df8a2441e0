// Package identityres contains HTTP response DTOs for profile endpoints.
package identityres

import (
	"jan-server/services/messaging-api/internal/domain/identity"
)

// ProfileResponse is an actor's display profile.
type ProfileResponse struct {
	ID          string `json:"id"`
	Object      string `json:"object"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ListProfilesResponse represents a list of profiles.
type ListProfilesResponse struct {
	Object string             `json:"object"`
	Data   []*ProfileResponse `json:"data"`
}

// NewProfileResponse creates a ProfileResponse from a domain Profile.
func NewProfileResponse(p *identity.Profile) *ProfileResponse {
	return &ProfileResponse{
		ID:          p.ID,
		Object:      "profile",
		DisplayName: p.DisplayName,
		Role:        p.Role.String(),
		AvatarURL:   p.AvatarURL,
	}
}

// NewListProfilesResponse creates a ListProfilesResponse.
func NewListProfilesResponse(profiles []*identity.Profile) *ListProfilesResponse {
	data := make([]*ProfileResponse, len(profiles))
	for i, p := range profiles {
		data[i] = NewProfileResponse(p)
	}
	return &ListProfilesResponse{Object: "list", Data: data}
}
