package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/apperrors"
	"messaging-service/internal/authz"
	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

const (
	// threadLimit caps a thread at the most recent messages, presented
	// oldest first.
	threadLimit = 100

	// attachmentPlaceholder keeps conversation summaries renderable when a
	// message carries media only.
	attachmentPlaceholder = "Sent attachment"

	// startPlaceholder is the summary text for a freshly introduced pair.
	startPlaceholder = "Start a conversation..."

	tombstoneName = "Unknown User"
)

// MessageHandler serves the conversation and message endpoints.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	audit       *telemetry.AuditEmitter

	// tombstones: render unresolvable partners as tombstone entries instead
	// of dropping the conversation.
	tombstones bool
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, audit *telemetry.AuditEmitter, tombstones bool) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		audit:       audit,
		tombstones:  tombstones,
	}
}

// ListConversations derives one summary per distinct partner the requester
// has exchanged messages with, newest conversation first.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	actor := actorFromContext(c)

	ctx, span := otel.Tracer("messaging-service/conversations").Start(c.Request.Context(), "conversations.derive")
	defer span.End()

	heads, err := h.messageRepo.ConversationHeads(ctx, actor.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	unread, err := h.messageRepo.UnreadCounts(ctx, actor.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	partnerIDs := make([]int, 0, len(heads))
	for _, head := range heads {
		partnerIDs = append(partnerIDs, head.PartnerOf(actor.UserID))
	}

	users, err := h.userRepo.BulkUsers(ctx, partnerIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load partner info"})
		return
	}
	userByID := map[int]models.User{}
	for _, u := range users {
		userByID[u.ID] = u
	}

	summaries := make([]models.ConversationSummary, 0, len(heads))
	for _, head := range heads {
		partnerID := head.PartnerOf(actor.UserID)
		partner, known := userByID[partnerID]
		if !known && !h.tombstones {
			continue
		}
		summaries = append(summaries, buildSummary(partnerID, partner, known, head.Text, head.CreatedAt, unread[partnerID]))
	}

	observability.IncConversationsListed()
	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// GetThread returns the message thread with one partner and, as a side
// effect, marks every unread incoming message in it as read. Clients rely on
// this coupling instead of a separate acknowledgement call.
func (h *MessageHandler) GetThread(c *gin.Context) {
	partnerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	actor := actorFromContext(c)
	ctx := c.Request.Context()

	msgs, err := h.messageRepo.ThreadBetween(ctx, actor.UserID, partnerID, threadLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	marked, err := h.messageRepo.MarkThreadRead(ctx, actor.UserID, partnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update read status"})
		return
	}
	if marked > 0 {
		observability.AddMessagesMarkedRead(marked)
		h.publishMessageEvent(c, "message_events.read", map[string]interface{}{
			"reader_id":  actor.UserID,
			"partner_id": partnerID,
			"count":      marked,
		})
	}

	thread := make([]models.ThreadMessage, 0, len(msgs))
	for _, msg := range msgs {
		role := models.ThreadOther
		if msg.SenderID == actor.UserID {
			role = models.ThreadSelf
		}
		isRead := msg.IsRead
		status := msg.Status
		// Reflect the side effect in the response without a second query.
		// Deleted is terminal and never flips to read.
		if msg.ReceiverID == actor.UserID && !msg.IsRead && msg.Status != models.StatusDeleted {
			isRead = true
			status = models.StatusRead
		}
		thread = append(thread, models.ThreadMessage{
			ID:            msg.ID,
			Sender:        role,
			Text:          msg.Text,
			Time:          msg.CreatedAt.Format("15:04"),
			Timestamp:     msg.CreatedAt.Format(time.RFC3339),
			AttachmentURL: msg.MediaURL,
			Status:        status,
			IsRead:        isRead,
		})
	}

	c.JSON(http.StatusOK, gin.H{"messages": thread})
}

// SendMessage appends a message from the requester. A message must carry
// text, an attachment, or both; attachment-only messages get a placeholder
// text so summaries always have a snippet.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	actor := actorFromContext(c)

	var req struct {
		ReceiverID    int    `json:"receiver_id" binding:"required"`
		Message       string `json:"message"`
		AttachmentURL string `json:"attachment_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver_id is required"})
		return
	}

	text := strings.TrimSpace(req.Message)
	if text == "" && req.AttachmentURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either message text or attachment is required"})
		return
	}
	if req.ReceiverID == actor.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message yourself"})
		return
	}

	if _, err := h.userRepo.GetUser(c.Request.Context(), req.ReceiverID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "receiver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create message"})
		return
	}

	if text == "" {
		text = attachmentPlaceholder
	}
	var mediaURL *string
	if req.AttachmentURL != "" {
		mediaURL = &req.AttachmentURL
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), actor.UserID, req.ReceiverID, text, mediaURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create message"})
		return
	}

	observability.IncMessagesSent()
	h.publishMessageEvent(c, "message_events.sent", map[string]interface{}{
		"message_id":  msg.ID,
		"sender_id":   msg.SenderID,
		"receiver_id": msg.ReceiverID,
		"has_media":   msg.MediaURL != nil,
	})
	h.audit.Emit(c.Request.Context(), "INFO", "message sent", requestIDFromContext(c), actorIDPtr(actor))

	c.JSON(http.StatusCreated, msg)
}

// UpdateStatus moves a message through its delivery states. Only the
// receiver (or an admin) may do this; transitions outside the closed set are
// rejected.
func (h *MessageHandler) UpdateStatus(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	actor := actorFromContext(c)

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": "message not found"})
		return
	}

	if !authz.CanUpdateStatus(actor, msg) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the receiver can update message status"})
		return
	}

	next, err := models.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if !msg.Status.CanTransitionTo(next) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "illegal status transition"})
		return
	}

	markRead := next == models.StatusRead
	updated, err := h.messageRepo.UpdateStatus(c.Request.Context(), messageID, next, markRead)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
		return
	}

	if markRead && !msg.IsRead {
		observability.AddMessagesMarkedRead(1)
	}
	c.JSON(http.StatusOK, gin.H{"id": updated.ID, "status": updated.Status, "is_read": updated.IsRead})
}

// InitConversation returns the summary for an existing pair (200) or a
// placeholder for a pair with no messages yet (201). Unknown targets are 404.
func (h *MessageHandler) InitConversation(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	actor := actorFromContext(c)
	ctx := c.Request.Context()

	target, err := h.userRepo.GetUser(ctx, targetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	last, err := h.messageRepo.LatestMessageBetween(ctx, actor.UserID, targetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrMessageNotFound) {
			summary := buildSummary(targetID, target, true, startPlaceholder, time.Time{}, 0)
			c.JSON(http.StatusCreated, gin.H{"conversation": summary})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	unread, err := h.messageRepo.UnreadCountFrom(ctx, actor.UserID, targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	summary := buildSummary(targetID, target, true, last.Text, last.CreatedAt, unread)
	c.JSON(http.StatusOK, gin.H{"conversation": summary})
}

func buildSummary(partnerID int, partner models.User, known bool, lastMessage string, lastMessageAt time.Time, unread int) models.ConversationSummary {
	name := tombstoneName
	var avatar string
	if known {
		if partner.FullName != "" {
			name = partner.FullName
		}
		if partner.AvatarURL != nil && *partner.AvatarURL != "" {
			avatar = *partner.AvatarURL
		}
	}
	if avatar == "" {
		avatar = fallbackAvatarURL(name)
	}

	timestamp := ""
	if !lastMessageAt.IsZero() {
		timestamp = lastMessageAt.Format(time.RFC3339)
	}

	return models.ConversationSummary{
		PartnerID: partnerID,
		Partner: models.Partner{
			ID:     partnerID,
			Name:   name,
			Avatar: avatar,
		},
		LastMessage:     lastMessage,
		LastMessageTime: timestamp,
		Unread:          unread,
	}
}
