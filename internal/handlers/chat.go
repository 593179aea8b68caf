package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat-service/internal/middleware"
	"docuchat-service/internal/models"
	"docuchat-service/internal/repositories"
	"docuchat-service/internal/telemetry"
)

// ChatHandler manages private room and message endpoints.
type ChatHandler struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	users    repositories.UserRepository
	audit    *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(rooms repositories.RoomRepository, messages repositories.MessageRepository, users repositories.UserRepository, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		rooms:    rooms,
		messages: messages,
		users:    users,
		audit:    audit,
	}
}

// StartChat creates or returns the room between the caller and another user.
func (h *ChatHandler) StartChat(c *gin.Context) {
	var req struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt(middleware.UserIDKey)
	if userID == req.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}

	if _, err := h.users.GetByID(c.Request.Context(), req.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	room, err := h.rooms.GetOrCreateRoom(c.Request.Context(), userID, req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrSelfRoom) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open room"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// GetRoomMessages returns the room's messages as the caller sees them,
// oldest first.
func (h *ChatHandler) GetRoomMessages(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID := c.GetInt(middleware.UserIDKey)
	member, err := h.rooms.IsParticipant(c.Request.Context(), roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return
	}

	msgs, err := h.messages.ListVisibleMessages(c.Request.Context(), roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senderIDs := make([]int, 0, len(msgs))
	seen := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	senderNames, err := h.users.UsernamesByID(c.Request.Context(), senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
		return
	}

	type messageResponse struct {
		models.Message
		SenderUsername string `json:"sender_username,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{Message: m, SenderUsername: senderNames[m.SenderID]})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// PostRoomMessage appends a message to the room.
func (h *ChatHandler) PostRoomMessage(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID := c.GetInt(middleware.UserIDKey)
	room, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "room not found"})
		return
	}
	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content cannot be empty"})
		return
	}
	if len([]rune(content)) > models.MaxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content too long"})
		return
	}

	msg, err := h.messages.CreateMessage(c.Request.Context(), roomID, userID, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// EditMessage replaces a message's content. Only the sender may edit;
// administrators may not edit others' messages.
func (h *ChatHandler) EditMessage(c *gin.Context) {
	roomID, messageID, ok := parseIDs(c)
	if !ok {
		return
	}

	userID := c.GetInt(middleware.UserIDKey)
	msg, ok := h.loadRoomMessage(c, roomID, messageID, userID)
	if !ok {
		return
	}
	if msg.SenderID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can edit"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content cannot be empty"})
		return
	}
	if len([]rune(content)) > models.MaxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content too long"})
		return
	}

	updated, err := h.messages.EditMessage(c.Request.Context(), messageID, content)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrMessageRetracted):
			c.JSON(http.StatusConflict, gin.H{"error": "message was deleted for everyone"})
		case errors.Is(err, repositories.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not edit message"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// HideMessageForMe hides a message from the caller's own view only.
func (h *ChatHandler) HideMessageForMe(c *gin.Context) {
	roomID, messageID, ok := parseIDs(c)
	if !ok {
		return
	}

	userID := c.GetInt(middleware.UserIDKey)
	if _, ok := h.loadRoomMessage(c, roomID, messageID, userID); !ok {
		return
	}

	if err := h.messages.HideMessageForUser(c.Request.Context(), messageID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hide message"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RetractMessageForAll deletes a message for everyone. Allowed for the
// sender or an administrator; idempotent on repeat.
func (h *ChatHandler) RetractMessageForAll(c *gin.Context) {
	roomID, messageID, ok := parseIDs(c)
	if !ok {
		return
	}

	userID := c.GetInt(middleware.UserIDKey)
	msg, ok := h.loadRoomMessage(c, roomID, messageID, userID)
	if !ok {
		return
	}
	if msg.SenderID != userID && !c.GetBool(middleware.IsAdminKey) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender or an admin can delete for everyone"})
		return
	}

	retracted, err := h.messages.RetractMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	h.audit.Emit(c.Request.Context(), "message_retracted", strconv.Itoa(messageID), requestIDFromContext(c), auditUserID(c))
	c.JSON(http.StatusOK, retracted)
}

// loadRoomMessage checks room membership and that the message belongs to
// the room, writing the error response itself when any check fails.
func (h *ChatHandler) loadRoomMessage(c *gin.Context, roomID, messageID, userID int) (models.Message, bool) {
	room, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "room not found"})
		return models.Message{}, false
	}
	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return models.Message{}, false
	}

	msg, err := h.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return models.Message{}, false
	}
	if msg.RoomID != roomID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to room"})
		return models.Message{}, false
	}
	return msg, true
}

func parseIDs(c *gin.Context) (int, int, bool) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return 0, 0, false
	}
	msgID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return 0, 0, false
	}
	return roomID, msgID, true
}
