package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"libretrack/middleware"
	"libretrack/models"
	"libretrack/services"
	"libretrack/utils"
)

// NotificationController exposes the dispatcher triggers and the
// per-user notification feed.
type NotificationController struct {
	notificationService *services.NotificationService
}

// NewNotificationController creates the controller.
func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// SendOverdue scans for overdue loans and dispatches notifications.
func (nc *NotificationController) SendOverdue(c *gin.Context) {
	sent, err := nc.notificationService.NotifyOverdue(c.Request.Context())
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	if sent == 0 {
		utils.SuccessWithMessage(c, "no overdue notifications sent", gin.H{"sent": 0})
		return
	}
	utils.SuccessWithMessage(c, fmt.Sprintf("%d overdue notifications sent", sent), gin.H{"sent": sent})
}

// SendReturnReminders scans for soon-due loans and dispatches reminders.
// The look-ahead window defaults to 3 days; override with ?days=N.
func (nc *NotificationController) SendReturnReminders(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	sent, err := nc.notificationService.NotifyDueSoon(c.Request.Context(), days)
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	if sent == 0 {
		utils.SuccessWithMessage(c, "no return reminders sent", gin.H{"sent": 0})
		return
	}
	utils.SuccessWithMessage(c, fmt.Sprintf("%d return reminder notifications sent", sent), gin.H{"sent": sent})
}

// GetMyNotifications returns the caller's notifications, optionally
// filtered by ?type=.
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	kind := models.NotificationKind(c.Query("type"))
	list, err := nc.notificationService.ListForUser(c.Request.Context(), c.GetString(middleware.CtxUserID), kind)
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Success(c, list)
}

// GetAllNotifications returns every notification. Admin only.
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	list, err := nc.notificationService.ListAll(c.Request.Context())
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Success(c, list)
}

// MarkRead stamps a notification's read receipt.
func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	n, err := nc.notificationService.MarkRead(c.Request.Context(), id)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "notification marked as read", n)
}
