package auth

import (
	"context"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

const (
	// ActorContextKey is the gin context key holding the authenticated domain.Actor.
	ActorContextKey = "messaging_actor"

	userIDHeader    = "X-User-ID"
	userRolesHeader = "X-User-Roles"
	userNameHeader  = "X-User-Name"
)

// Validator authenticates callers and resolves them to actors.
//
// With auth enabled, every request needs a bearer JWT verified against the JWKS,
// and identity and roles come from its claims only. With auth disabled, the
// gateway headers are read instead.
type Validator struct {
	cfg       *config.Config
	log       zerolog.Logger
	jwks      *keyfunc.JWKS
	roles     RoleMapper
	directory identity.Directory
}

// NewValidator initializes JWKS fetching when auth is enabled. directory may be nil.
func NewValidator(ctx context.Context, cfg *config.Config, directory identity.Directory, log zerolog.Logger) (*Validator, error) {
	v := &Validator{
		cfg:       cfg,
		log:       log.With().Str("component", "auth").Logger(),
		roles:     NewRoleMapper(cfg.AuthStaffRoles, cfg.AuthPrivilegedRoles),
		directory: directory,
	}
	if !cfg.AuthEnabled {
		v.log.Warn().Msg("AUTH_ENABLED is false; trusting gateway identity headers")
		return v, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			v.log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}
	v.jwks = jwks
	return v, nil
}

// Close stops the background JWKS refresh.
func (v *Validator) Close() {
	if v != nil && v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// Middleware resolves the actor and aborts with 401 when none can be established.
func (v *Validator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var principal Principal
		if v.cfg.AuthEnabled {
			verified, err := v.bearerPrincipal(c)
			if err != nil {
				v.log.Debug().
					Err(err).
					Bool("gateway_headers", c.GetHeader(userIDHeader) != "").
					Msg("jwt validation failed")
				platformerrors.WriteUnauthorized(c, "invalid token")
				return
			}
			principal = verified
		} else {
			trusted, ok := gatewayPrincipal(c)
			if !ok {
				platformerrors.WriteUnauthorized(c, "missing "+userIDHeader+" header")
				return
			}
			principal = trusted
		}

		if !domain.ValidActorID(principal.Subject) {
			platformerrors.WriteUnauthorized(c, "token subject is not a usable identifier")
			return
		}

		actor := domain.Actor{ID: principal.Subject, Role: v.roles.Map(principal.Roles)}
		v.syncProfile(c.Request.Context(), actor, principal)

		c.Set(ActorContextKey, actor)
		c.Set("user_id", actor.ID)
		c.Next()
	}
}

func gatewayPrincipal(c *gin.Context) (Principal, bool) {
	userID := strings.TrimSpace(c.GetHeader(userIDHeader))
	if userID == "" {
		return Principal{}, false
	}
	return Principal{
		Subject:     userID,
		DisplayName: strings.TrimSpace(c.GetHeader(userNameHeader)),
		Roles:       stringList(c.GetHeader(userRolesHeader)),
	}, true
}

func (v *Validator) bearerPrincipal(c *gin.Context) (Principal, error) {
	tokenString := bearerToken(c.GetHeader("Authorization"))
	if tokenString == "" {
		return Principal{}, jwt.ErrTokenMalformed
	}

	claims := jwt.MapClaims{}
	opts := []jwt.ParserOption{
		jwt.WithIssuer(v.cfg.AuthIssuer),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithLeeway(time.Minute),
	}
	if v.cfg.AuthAudience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.AuthAudience))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc, opts...)
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, jwt.ErrTokenSignatureInvalid
	}
	return principalFromClaims(claims), nil
}

// syncProfile records display data for the actor. Failures only log.
func (v *Validator) syncProfile(ctx context.Context, actor domain.Actor, principal Principal) {
	if v.directory == nil {
		return
	}
	profile := &identity.Profile{
		ID:          actor.ID,
		DisplayName: principal.DisplayName,
		Role:        actor.Role,
		AvatarURL:   principal.AvatarURL,
	}
	if err := v.directory.Sync(ctx, profile); err != nil {
		v.log.Warn().Err(err).Str("actor_id", actor.ID).Msg("profile sync failed")
	}
}

// ActorFromContext returns the actor stored by Middleware.
func ActorFromContext(c *gin.Context) (domain.Actor, bool) {
	value, ok := c.Get(ActorContextKey)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := value.(domain.Actor)
	return actor, ok
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
