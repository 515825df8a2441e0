package v1

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jan-server/services/messaging-api/internal/interfaces/httpserver/handlers"
	conversationreq "jan-server/services/messaging-api/internal/interfaces/httpserver/requests/conversation"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/responses"
	conversationres "jan-server/services/messaging-api/internal/interfaces/httpserver/responses/conversation"
)

// RegisterConversationRoutes registers the conversation routes. writeLimit guards every mutating route.
func RegisterConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler, writeLimit gin.HandlerFunc) {
	router.POST("/conversations", writeLimit, createConversation(handler))
	router.GET("/conversations", listConversations(handler))
	router.GET("/conversations/unread-count", unreadCount(handler))
	router.GET("/conversations/:conversation_id", getConversation(handler))
	router.DELETE("/conversations/:conversation_id", writeLimit, deleteConversation(handler))
	router.POST("/conversations/:conversation_id/messages", writeLimit, replyToConversation(handler))
	router.POST("/conversations/:conversation_id/read", markConversationRead(handler))
	router.GET("/conversations/:conversation_id/messages/:message_id/attachment", downloadAttachment(handler))
}

// createConversation godoc
// @Summary      Open a conversation
// @Description  Clients open a conversation with one staff member. The first message may carry a file in the multipart "file" part.
// @Tags         Conversations API
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request  body      conversationreq.CreateConversationRequest  false  "JSON body"
// @Param        file     formData  file                                       false  "Optional attachment"
// @Success      201 {object} conversationres.ConversationResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      429 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/conversations [post]
func createConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}
		input, err := conversationreq.BindCreate(c, handler.MaxAttachmentBytes())
		if err != nil {
			responses.HandleError(c, err, "failed to read conversation request")
			return
		}

		ctx := c.Request.Context()
		conv, err := handler.Create(ctx, actor, input)
		if err != nil {
			responses.HandleError(c, err, "failed to create conversation")
			return
		}

		c.JSON(http.StatusCreated, conversationres.NewConversationResponse(conv, actor.ID, handler.Profiles(ctx, conv)))
	}
}

// listConversations godoc
// @Summary      List conversations
// @Description  Lists the caller's active conversations, most recent activity first.
// @Tags         Conversations API
// @Produce      json
// @Success      200 {object} conversationres.ListConversationsResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      500 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/conversations [get]
func listConversations(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		convs, err := handler.List(ctx, actor)
		if err != nil {
			responses.HandleError(c, err, "failed to list conversations")
			return
		}

		c.JSON(http.StatusOK, conversationres.NewListConversationsResponse(convs, actor.ID, handler.Profiles(ctx, convs...)))
	}
}

// unreadCount godoc
// @Summary      Count unread conversations
// @Description  Number of the caller's conversations holding at least one unread message from the other side.
// @Tags         Conversations API
// @Produce      json
// @Success      200 {object} conversationres.UnreadCountResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      500 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/conversations/unread-count [get]
func unreadCount(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}

		count, err := handler.UnreadCount(c.Request.Context(), actor)
		if err != nil {
			responses.HandleError(c, err, "failed to count unread conversations")
			return
		}

		c.JSON(http.StatusOK, conversationres.NewUnreadCountResponse(count))
	}
}

// getConversation godoc
// @Summary      Get a conversation
// @Description  Returns a conversation with every message. Only active participants may read it.
// @Tags         Conversations API
// @Produce      json
// @Param        conversation_id path string true "Conversation ID"
// @Success      200 {object} conversationres.ConversationResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/conversations/{conversation_id} [get]
func getConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		conv, err := handler.Get(ctx, actor, c.Param("conversation_id"))
		if err != nil {
			responses.HandleError(c, err, "failed to get conversation")
			return
		}

		c.JSON(http.StatusOK, conversationres.NewConversationResponse(conv, actor.ID, handler.Profiles(ctx, conv)))
	}
}

// deleteConversation godoc
// @Summary      Delete a conversation
// @Description  Privileged staff remove the conversation for everyone. Other callers leave it; it is removed once both sides have left.
// @Tags         Conversations API
// @Produce      json
// @Param        conversation_id path string true "Conversation ID"
// @Success      200 {object} conversationres.DeleteConversationResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      429 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/conversations/{conversation_id} [delete]
func deleteConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}

		id := c.Param("conversation_id")
		if err := handler.Delete(c.Request.Context(), actor, id); err != nil {
			responses.HandleError(c, err, "failed to delete conversation")
			return
		}

		c.JSON(http.StatusOK, conversationres.NewDeleteConversationResponse(id))
	}
}

// replyToConversation godoc
// @Summary      Reply to a conversation
// @Description  Appends a message from the caller. A file may be sent in the multipart "file" part.
// @Tags         Conversations API
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        conversation_id path string true "Conversation ID"
// @Param        request  body      conversationreq.ReplyRequest  false  "JSON body"
// @Param        file     formData  file                          false  "Optional attachment"
// @Success      201 {object} conversationres.ConversationResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      429 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/conversations/{conversation_id}/messages [post]
func replyToConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}
		input, err := conversationreq.BindReply(c, handler.MaxAttachmentBytes())
		if err != nil {
			responses.HandleError(c, err, "failed to read reply request")
			return
		}

		ctx := c.Request.Context()
		conv, err := handler.Reply(ctx, actor, c.Param("conversation_id"), input)
		if err != nil {
			responses.HandleError(c, err, "failed to reply to conversation")
			return
		}

		c.JSON(http.StatusCreated, conversationres.NewConversationResponse(conv, actor.ID, handler.Profiles(ctx, conv)))
	}
}

// markConversationRead godoc
// @Summary      Mark a conversation read
// @Description  Marks every message from the other participant as read. Repeating the call is a no-op.
// @Tags         Conversations API
// @Produce      json
// @Param        conversation_id path string true "Conversation ID"
// @Success      200 {object} conversationres.MarkReadResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/conversations/{conversation_id}/read [post]
func markConversationRead(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}

		id := c.Param("conversation_id")
		if err := handler.MarkRead(c.Request.Context(), actor, id); err != nil {
			responses.HandleError(c, err, "failed to mark conversation read")
			return
		}

		c.JSON(http.StatusOK, conversationres.NewMarkReadResponse(id))
	}
}

// downloadAttachment godoc
// @Summary      Download an attachment
// @Description  Streams the file attached to a message.
// @Tags         Conversations API
// @Produce      octet-stream
// @Param        conversation_id path string true "Conversation ID"
// @Param        message_id      path string true "Message ID"
// @Success      200 {file} file
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/conversations/{conversation_id}/messages/{message_id}/attachment [get]
func downloadAttachment(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorOrAbort(c)
		if !ok {
			return
		}

		content, err := handler.OpenAttachment(c.Request.Context(), actor, c.Param("conversation_id"), c.Param("message_id"))
		if err != nil {
			responses.HandleError(c, err, "failed to open attachment")
			return
		}
		defer content.Body.Close()

		mediaType := content.Attachment.MediaType
		if mediaType == "" {
			mediaType = "application/octet-stream"
		}
		c.Header("Content-Type", mediaType)
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": content.Attachment.Name}))
		c.Header("X-Content-Type-Options", "nosniff")
		if content.Attachment.Size > 0 {
			c.Header("Content-Length", strconv.FormatInt(content.Attachment.Size, 10))
		}
		c.Status(http.StatusOK)
		if _, err := io.Copy(c.Writer, content.Body); err != nil {
			log.Warn().Err(err).Str("message_id", c.Param("message_id")).Msg("attachment stream interrupted")
		}
	}
}
