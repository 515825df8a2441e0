// Package domain holds identity primitives shared by the messaging domains.
package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var actorIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:@|-]{0,127}$`)

// Role is the closed set of actor kinds the messaging core knows about.
type Role int

const (
	RoleUnknown Role = iota
	RoleClient
	RoleStaff
	RolePrivilegedStaff
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleStaff:
		return "staff"
	case RolePrivilegedStaff:
		return "privileged_staff"
	default:
		return "unknown"
	}
}

// ParseRole converts a wire name back to a Role.
func ParseRole(value string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "client":
		return RoleClient, nil
	case "staff":
		return RoleStaff, nil
	case "privileged_staff", "privileged-staff":
		return RolePrivilegedStaff, nil
	default:
		return RoleUnknown, fmt.Errorf("unknown role %q", value)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// IsStaffSide reports whether the role belongs to the service-providing side.
func (r Role) IsStaffSide() bool {
	switch r {
	case RoleStaff, RolePrivilegedStaff:
		return true
	case RoleClient, RoleUnknown:
		return false
	default:
		return false
	}
}

// IsPrivileged reports whether the role may hard-delete conversations.
func (r Role) IsPrivileged() bool {
	return r == RolePrivilegedStaff
}

// Actor is the authenticated caller, supplied by the access boundary on every call.
type Actor struct {
	ID   string
	Role Role
}

// ValidActorID reports whether id is a well-formed opaque actor identifier.
func ValidActorID(id string) bool {
	return actorIDPattern.MatchString(id)
}
