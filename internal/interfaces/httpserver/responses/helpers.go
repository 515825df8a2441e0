package responses

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

// HandleError writes err using the platform error envelope.
// message is used for logging when err carries no platform context.
func HandleError(c *gin.Context, err error, message string) {
	logger := log.With().
		Str("path", c.Request.URL.Path).
		Str("operation", message).
		Logger()
	platformerrors.WriteError(c, err, logger)
}

// HandleNewError creates and writes a new typed error response.
// Use this for route-level failures such as a missing actor.
func HandleNewError(c *gin.Context, errorType platformerrors.ErrorType, message string) {
	err := platformerrors.NewError(c.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, "")
	HandleError(c, err, message)
}
