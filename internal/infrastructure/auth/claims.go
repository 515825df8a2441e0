package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"jan-server/services/messaging-api/internal/domain"
)

// RoleMapper turns identity provider role names into messaging roles.
type RoleMapper struct {
	staff      map[string]struct{}
	privileged map[string]struct{}
}

// NewRoleMapper builds a mapper from the configured role names.
func NewRoleMapper(staff, privileged []string) RoleMapper {
	return RoleMapper{staff: roleSet(staff), privileged: roleSet(privileged)}
}

// Map returns the strongest role granted by names. Anything unmapped is a client.
func (m RoleMapper) Map(names []string) domain.Role {
	role := domain.RoleClient
	for _, name := range names {
		key := normalizeRoleName(name)
		if _, ok := m.privileged[key]; ok {
			return domain.RolePrivilegedStaff
		}
		if _, ok := m.staff[key]; ok {
			role = domain.RoleStaff
		}
	}
	return role
}

func roleSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if key := normalizeRoleName(name); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// normalizeRoleName lowercases and strips the leading slash of group paths.
func normalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
}

// Principal is the identity carried by a validated token.
type Principal struct {
	Subject     string
	DisplayName string
	AvatarURL   string
	Roles       []string
}

// principalFromClaims reads subject, display data and role names from common claim layouts.
func principalFromClaims(claims jwt.MapClaims) Principal {
	p := Principal{
		Subject:   stringClaim(claims, "sub"),
		AvatarURL: stringClaim(claims, "picture"),
	}
	for _, key := range []string{"name", "preferred_username", "email"} {
		if v := stringClaim(claims, key); v != "" {
			p.DisplayName = v
			break
		}
	}

	p.Roles = append(p.Roles, stringList(claims["roles"])...)
	p.Roles = append(p.Roles, stringList(claims["groups"])...)
	if realm, ok := claims["realm_access"].(map[string]any); ok {
		p.Roles = append(p.Roles, stringList(realm["roles"])...)
	}
	return p
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func stringList(raw any) []string {
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		return strings.Split(v, ",")
	default:
		return nil
	}
}
