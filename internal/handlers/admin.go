package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/apperrors"
	"messaging-service/internal/authz"
)

// ListMessages returns every non-deleted message. Admin only.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	actor := actorFromContext(c)
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	msgs, err := h.messageRepo.ListMessages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// GetMessage returns one message to its sender, receiver, or an admin.
func (h *MessageHandler) GetMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	actor := actorFromContext(c)

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": "message not found"})
		return
	}

	if !authz.CanRead(actor, msg) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	c.JSON(http.StatusOK, msg)
}

// UpdateMessage edits the text of a message. Sender only.
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	actor := actorFromContext(c)

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": "message not found"})
		return
	}

	if !authz.CanEditText(actor, msg) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can edit message content"})
		return
	}

	updated, err := h.messageRepo.UpdateText(c.Request.Context(), messageID, text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update message"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteMessage soft-deletes a message; the record is retained with status
// deleted. Sender, receiver, or admin.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	actor := actorFromContext(c)

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": "message not found"})
		return
	}

	if !authz.CanDelete(actor, msg) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	if err := h.messageRepo.SoftDelete(c.Request.Context(), messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "message soft-deleted", requestIDFromContext(c), actorIDPtr(actor))
	c.Status(http.StatusNoContent)
}
