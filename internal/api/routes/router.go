package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ortrace/ortrace-go/internal/api/handlers"
	"github.com/ortrace/ortrace-go/internal/api/middleware"
	"github.com/ortrace/ortrace-go/internal/state"
)

// RegisterRoutes wires all endpoints. Widget routes are unauthenticated;
// dashboard routes require a valid token. Every handler checks readiness
// itself, so routes can be registered before initialization completes.
func RegisterRoutes(r *gin.Engine, ready *state.Ready) {
	h := handlers.New(ready)

	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	widget := v1.Group("/widget")
	{
		widget.POST("/tickets", h.Ticket.Create)
		widget.POST("/tickets/:id/video", h.Ticket.UploadVideo)
		widget.GET("/tickets/:id", h.Ticket.Get)
		widget.GET("/tickets/:id/chat", h.Chat.List)
		widget.POST("/tickets/:id/chat", h.Chat.PostCustomer)
	}

	dashboard := v1.Group("")
	dashboard.Use(middleware.JWTAuthMiddleware())
	{
		dashboard.GET("/tickets", h.Ticket.List)
		dashboard.GET("/tickets/overview", h.Ticket.Overview)
		dashboard.GET("/tickets/:id", h.Ticket.Get)
		dashboard.GET("/tickets/:id/video", h.Ticket.GetVideo)
		dashboard.PATCH("/tickets/:id", h.Ticket.Update)
		dashboard.POST("/tickets/:id/close", h.Ticket.Close)
		dashboard.POST("/tickets/:id/retry", h.Ticket.RetryAnalysis)
		dashboard.GET("/tickets/:id/report", h.Report.GetByTicket)
		dashboard.GET("/tickets/:id/chat", h.Chat.List)
		dashboard.POST("/tickets/:id/chat", h.Chat.Post)

		dashboard.GET("/jobs/:id", h.Job.Get)
		dashboard.POST("/jobs/:id/retry", h.Job.Retry)

		dashboard.POST("/projects", h.Project.Create)
		dashboard.GET("/projects", h.Project.List)
		dashboard.GET("/projects/:id", h.Project.Get)
		dashboard.GET("/projects/:id/questions", h.Project.GetQuestions)
		dashboard.PUT("/projects/:id/questions", h.Project.UpdateQuestions)
	}

	r.GET("/ws/tickets/:id/chat", h.Chat.Stream)
}
