package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"speakersite/internal/auth"
)

type createConversationRequest struct {
	Title string `json:"title"`
}

func (h *Handler) createConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "api.createConversation", "invalid request body")
		return
	}
	conv, err := h.chat.CreateConversation(c.Request.Context(), auth.UserIDFromContext(c), req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

func (h *Handler) getConversations(c *gin.Context) {
	user, _ := auth.UserFromContext(c)
	conversations, err := h.chat.ListConversations(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

func (h *Handler) getMessages(c *gin.Context) {
	conversationID, ok := parseID(c, "id")
	if !ok {
		h.badRequest(c, "api.getMessages", "invalid conversation id")
		return
	}
	messages, err := h.chat.GetMessages(c.Request.Context(), conversationID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

type sendMessageRequest struct {
	ConversationID int64  `json:"conversationId"`
	Message        string `json:"message"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "api.sendMessage", "conversationId must be an integer and message a string")
		return
	}
	reply, err := h.chat.SendMessage(c.Request.Context(), req.ConversationID, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": reply,
	})
}
