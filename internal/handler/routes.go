package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-advisor-api/internal/middleware"
	"github.com/noah-isme/degree-advisor-api/internal/models"
	"github.com/noah-isme/degree-advisor-api/internal/service"
)

// Router bundles the handlers mounted under the API prefix.
type Router struct {
	Plans   *PlanHandler
	Catalog *CatalogHandler
	Exports *ExportHandler
	Auth    *service.AuthService
}

// Register mounts the advisor routes. Students reach only their own plan;
// advisors and admins reach any plan.
func (r Router) Register(api *gin.RouterGroup) {
	api.GET("/exports/:token", r.Exports.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(r.Auth))
	secured.GET("/courses/:code", r.Catalog.Course)
	secured.GET("/programs", r.Catalog.Programs)
	secured.GET("/programs/:program/requirements", r.Catalog.Requirements)

	plans := secured.Group("/plans/:studentId")
	plans.Use(middleware.RBAC(string(models.RoleAdmin), string(models.RoleAdvisor), "SELF"))
	plans.GET("", r.Plans.Get)
	plans.PUT("", r.Plans.Import)
	plans.POST("/admission", r.Plans.CheckAdmission)
	plans.GET("/courses", r.Plans.Courses)
	plans.POST("/courses", r.Plans.AddCourse)
	plans.DELETE("/semesters/:semester/courses/:code", r.Plans.RemoveCourse)
	plans.GET("/audit", middleware.WithResponseMeta(), r.Plans.Audit)
	plans.POST("/export", r.Exports.Export)
}
