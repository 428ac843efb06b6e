package handler

import (
	"fmt"
	"net/http"

	"finance-tracker/internal/service"
	"finance-tracker/shared/models"
	"finance-tracker/shared/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// listQuery - параметры пагинации списка уведомлений.
type listQuery struct {
	Limit  int `form:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `form:"offset" json:"offset" validate:"omitempty,min=0"`
}

type unreadCountResponse struct {
	Count int64 `json:"count"`
}

type markAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// NotificationHandler - REST API чтения и изменения уведомлений.
type NotificationHandler struct {
	service service.NotificationService
	logger  *zap.Logger
}

func NewNotificationHandler(s service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: s,
		logger:  logger.Named("NotificationHandler"),
	}
}

// RegisterRoutes регистрирует маршруты /notifications в группе API.
// middlewares применяются ко всей группе (аутентификация, лимиты).
func (h *NotificationHandler) RegisterRoutes(api *gin.RouterGroup, middlewares ...gin.HandlerFunc) {
	group := api.Group("/notifications", middlewares...)
	{
		group.GET("", h.list)
		group.GET("/unread", h.firstUnread)
		group.GET("/unread/count", h.unreadCount)
		group.PUT("/read-all", h.markAllRead)
		group.GET("/:id", h.get)
		group.PUT("/:id/read", h.markRead)
		group.DELETE("/:id", h.delete)
	}
}

func (h *NotificationHandler) list(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid pagination parameters"})
		return
	}
	if err := validation.Struct(q); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = service.DefaultPageLimit
	}

	list, err := h.service.List(c.Request.Context(), userID, q.Limit, q.Offset)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}

	c.JSON(http.StatusOK, models.PaginatedResponse{Success: true, Data: list, Limit: q.Limit, Offset: q.Offset})
}

// firstUnread возвращает самое старое непрочитанное уведомление или 204.
func (h *NotificationHandler) firstUnread(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	n, err := h.service.FirstUnread(c.Request.Context(), userID)
	if err != nil {
		if isNotFound(err) {
			c.Status(http.StatusNoContent)
			return
		}
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Success: true, Data: n})
}

func (h *NotificationHandler) unreadCount(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	count, err := h.service.CountUnread(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Success: true, Data: unreadCountResponse{Count: count}})
}

func (h *NotificationHandler) get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := parseNotificationID(c)
	if !ok {
		return
	}

	n, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Success: true, Data: n})
}

func (h *NotificationHandler) markRead(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := parseNotificationID(c)
	if !ok {
		return
	}

	n, err := h.service.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Success: true, Data: n})
}

func (h *NotificationHandler) markAllRead(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Success: true, Data: markAllReadResponse{Updated: updated}})
}

func (h *NotificationHandler) delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := parseNotificationID(c)
	if !ok {
		return
	}

	n, err := h.service.Delete(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Success: true, Data: n, Message: "Notification deleted"})
}

func parseNotificationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid notification id %q", c.Param("id"))})
		return uuid.Nil, false
	}
	return id, true
}
