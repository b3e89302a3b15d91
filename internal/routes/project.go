package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/handlers"
)

type ProjectRoutes struct {
	handler      *handlers.ProjectHandler
	requireAdmin gin.HandlerFunc
}

func NewProjectRoutes(handler *handlers.ProjectHandler, requireAdmin gin.HandlerFunc) *ProjectRoutes {
	return &ProjectRoutes{
		handler:      handler,
		requireAdmin: requireAdmin,
	}
}

func (r *ProjectRoutes) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("/:id", r.handler.GetProject)

		// Admin-only routes
		projects.GET("", r.requireAdmin, r.handler.ListProjects)
		projects.POST("", r.requireAdmin, r.handler.CreateProject)
		projects.PUT("/:id", r.requireAdmin, r.handler.UpdateProject)
		projects.DELETE("/:id", r.requireAdmin, r.handler.DeleteProject)
	}
}
