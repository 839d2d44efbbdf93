package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aryawidjaja/grievance-portal/controllers"
	"github.com/aryawidjaja/grievance-portal/middlewares"
	"github.com/aryawidjaja/grievance-portal/models"
	"github.com/aryawidjaja/grievance-portal/services"
)

func SetupRouter(db *gorm.DB, dispatcher *services.DispatcherService) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	complaintCtrl := controllers.NewComplaintController(db, dispatcher)
	timelineCtrl := controllers.NewTimelineController(db)
	notificationCtrl := controllers.NewNotificationController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)

	// COMPLAINTS
	auth.POST("/complaints", complaintCtrl.CreateComplaint)
	auth.GET("/complaints", complaintCtrl.GetAllComplaints)
	auth.GET("/complaints/:complaint_id", complaintCtrl.GetComplaintByID)
	auth.PATCH("/complaints/:complaint_id", complaintCtrl.UpdateComplaint)
	auth.GET("/complaints/:complaint_id/timeline", timelineCtrl.GetComplaintTimeline)
	auth.POST("/complaints/:complaint_id/notes", complaintCtrl.AddNote)
	auth.POST("/complaints/:complaint_id/documents", complaintCtrl.AddDocument)

	// Officer operations
	officer := auth.Group("/")
	officer.Use(middlewares.RequireRoles(models.RoleOfficer))
	{
		officer.PATCH("/complaints/:complaint_id/status", complaintCtrl.UpdateStatus)
		officer.POST("/complaints/:complaint_id/extensions", complaintCtrl.RequestExtension)
		officer.DELETE("/complaints/:complaint_id/documents/:doc_id", complaintCtrl.RemoveDocument)
	}

	// NOTIFICATIONS (read side)
	auth.GET("/notifications", notificationCtrl.GetMyNotifications)
	auth.GET("/notifications/unread-count", notificationCtrl.GetUnreadCount)
	auth.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkRead)
	auth.POST("/notifications/read-all", notificationCtrl.MarkAllRead)

	// Admin operations
	admin := auth.Group("/admin")
	admin.Use(middlewares.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", userCtrl.GetAllUsers)
		admin.POST("/complaints/:complaint_id/assign", complaintCtrl.AssignOfficer)
		admin.POST("/extensions/:request_id/decide", complaintCtrl.DecideExtension)
		admin.GET("/timeline/by-actor/:user_id", timelineCtrl.GetEventsByActor)
		admin.GET("/timeline/by-type", timelineCtrl.GetEventsByType)
		admin.GET("/notification-settings", notificationCtrl.GetSettings)
		admin.PUT("/notification-settings", notificationCtrl.UpdateSetting)
	}

	// WebSocket endpoint, token via query string
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/notifications", controllers.NotificationStreamHandler)
	}

	return r
}
