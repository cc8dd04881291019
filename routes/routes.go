package routes

import (
	"github.com/gin-gonic/gin"

	"libretrack/config"
	"libretrack/controllers"
	"libretrack/middleware"
	"libretrack/services"
	"libretrack/websocket"
)

// Controllers bundles everything the router wires up.
type Controllers struct {
	Auth         *controllers.AuthController
	Book         *controllers.BookController
	Borrow       *controllers.BorrowController
	Notification *controllers.NotificationController

	Hub         *websocket.Hub
	JWTService  *config.JWTService
	AuthService *services.AuthService
}

// SetupRoutes registers the API surface. Admin-only operations sit
// behind the role gate; everything else only needs a valid token.
func SetupRoutes(r *gin.Engine, c Controllers) {
	r.Use(middleware.CORS())
	r.Use(middleware.Logger())

	authed := middleware.Auth(c.JWTService, c.AuthService)
	admin := middleware.RequireAdmin()

	api := r.Group("/api")
	{
		// ====== auth (no token required) ======
		auth := api.Group("/auth")
		{
			auth.POST("/register", c.Auth.Register)
			auth.POST("/login", c.Auth.Login)
			auth.POST("/logout", authed, c.Auth.Logout)
		}

		api.GET("/user", authed, c.Auth.Me)
		api.GET("/users", authed, admin, c.Auth.ListUsers)

		// ====== catalog ======
		books := api.Group("/books", authed)
		{
			books.GET("", c.Book.GetBooks)
			books.GET("/search", c.Book.SearchBooks)
			books.GET("/borrowed", admin, c.Borrow.GetBorrowed)
			books.GET("/borrowed/:userId", c.Borrow.GetBorrowedByUser)
			books.GET("/:id", c.Book.GetBook)
			books.GET("/:id/available-copies", admin, c.Book.GetAvailableCopies)

			books.POST("", admin, c.Book.CreateBook)
			books.PUT("/:id", admin, c.Book.UpdateBook)
			books.DELETE("/:id", admin, c.Book.DeleteBook)
			books.POST("/:id/assign", admin, c.Borrow.AssignCopy)
		}

		api.GET("/book-copies", authed, admin, c.Book.GetAllCopies)

		// ====== loan lifecycle ======
		copies := api.Group("/copies", authed, admin)
		{
			copies.PUT("/:id/return", c.Borrow.ReturnCopy)
			copies.PUT("/:id/due-date", c.Borrow.SetDueDate)
		}

		// ====== notifications ======
		notifications := api.Group("/notifications", authed)
		{
			notifications.POST("/overdue", admin, c.Notification.SendOverdue)
			notifications.POST("/return-reminders", admin, c.Notification.SendReturnReminders)
			notifications.GET("/all", admin, c.Notification.GetAllNotifications)
			notifications.GET("", c.Notification.GetMyNotifications)
			notifications.PATCH("/:id/read", c.Notification.MarkRead)
		}

		// ====== reports ======
		reports := api.Group("/reports", authed)
		{
			reports.GET("/borrowing-history", admin, c.Borrow.GetHistory)
			reports.GET("/popular-books", admin, c.Borrow.GetPopularBooks)
			reports.GET("/overdue-books", admin, c.Borrow.GetOverdue)
			reports.GET("/student-activity", admin, c.Borrow.GetStudentActivity)
			reports.GET("/student-activity/:userId", c.Borrow.GetStudentActivityByUser)
		}
	}

	// ====== websocket push ======
	r.GET("/ws/notifications", c.Hub.HandleConnection)
}
