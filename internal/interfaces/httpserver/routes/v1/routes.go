package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/infrastructure/auth"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/middlewares"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/responses"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

// Routes holds the v1 route configuration.
type Routes struct {
	handlers *handlers.Provider
	writes   *middlewares.WriteLimiter
}

// NewRoutes creates a new v1 routes instance. A nil limiter disables write throttling.
func NewRoutes(handlerProvider *handlers.Provider, writes *middlewares.WriteLimiter) *Routes {
	return &Routes{
		handlers: handlerProvider,
		writes:   writes,
	}
}

// Register registers all v1 routes on the engine.
// If authMiddleware is provided, it is applied to all v1 routes.
func (r *Routes) Register(engine *gin.Engine, authMiddleware gin.HandlerFunc) {
	v1 := engine.Group("/v1")
	if authMiddleware != nil {
		v1.Use(authMiddleware)
	}
	RegisterConversationRoutes(v1, r.handlers.Conversation, r.writes.Middleware())
	RegisterIdentityRoutes(v1, r.handlers.Identity)
}

// actorOrAbort returns the authenticated actor or writes 401.
func actorOrAbort(c *gin.Context) (domain.Actor, bool) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required")
		return domain.Actor{}, false
	}
	return actor, true
}
