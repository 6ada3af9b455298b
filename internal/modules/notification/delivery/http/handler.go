package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/modules/notification/service"
	"carelink.id/clinicapi/pkg/apperror"
	"carelink.id/clinicapi/pkg/response"
)

type NotificationHandler struct {
	notifications service.NotificationService
	redisClient   *redis.Client
	upgrader      websocket.Upgrader
}

func NewNotificationHandler(notifications service.NotificationService, redisClient *redis.Client) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		redisClient:   redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit := 20
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}

	notifications, err := h.notifications.List(c.Request.Context(), identity.UserID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid id", apperror.ErrBadRequest))
		return
	}

	if err := h.notifications.MarkAsRead(c.Request.Context(), uint(id), identity.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, apperror.New(http.StatusNotFound, "notification not found", apperror.ErrNotFound))
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.notifications.MarkAllAsRead(c.Request.Context(), identity.UserID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked as read"})
}

// HandleWebSocket bridges the user's Redis notification channel onto a
// websocket. The route runs behind the auth middleware, which accepts the
// token from a query parameter for websocket clients.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.redisClient == nil {
		response.Error(c, apperror.ErrInternal)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	pubsub := h.redisClient.Subscribe(c.Request.Context(), service.ChannelForUser(identity.UserID))
	defer pubsub.Close()

	if _, err := pubsub.Receive(c.Request.Context()); err != nil {
		logrus.WithError(err).Warn("redis subscribe failed")
		return
	}

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
