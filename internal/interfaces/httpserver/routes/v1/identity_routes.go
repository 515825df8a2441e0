package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jan-server/services/messaging-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/responses"
	identityres "jan-server/services/messaging-api/internal/interfaces/httpserver/responses/identity"
)

// RegisterIdentityRoutes registers the directory routes.
func RegisterIdentityRoutes(router gin.IRoutes, handler *handlers.IdentityHandler) {
	router.GET("/staff", listStaff(handler))
	router.GET("/profiles/me", getMyProfile(handler))
}

// listStaff godoc
// @Summary      List staff
// @Description  Lists staff members a client can open a conversation with.
// @Tags         Profiles API
// @Produce      json
// @Success      200 {object} identityres.ListProfilesResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      500 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/staff [get]
func listStaff(handler *handlers.IdentityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := actorOrAbort(c); !ok {
			return
		}

		profiles, err := handler.ListStaff(c.Request.Context())
		if err != nil {
			responses.HandleError(c, err, "failed to list staff")
			return
		}

		c.JSON(http.StatusOK, identityres.NewListProfilesResponse(profiles))
	}
}

// getMyProfile godoc
// @Summary      Get the caller's profile
// @Tags         Profiles API
// @Produce      json
// @Success      200 {object} identityres.ProfileResponse
// @Failure      401 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/profiles/me [get]
func getMyProfile(handler *handlers.IdentityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}

		profile, err := handler.Me(c.Request.Context(), actor)
		if err != nil {
			responses.HandleError(c, err, "failed to get profile")
			return
		}

		c.JSON(http.StatusOK, identityres.NewProfileResponse(profile))
	}
}
