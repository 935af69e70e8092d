package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"github.com/Macaies/Permit-app/cmd/middleware"
	"github.com/Macaies/Permit-app/internal/service"
)

type Routers struct {
	Service     service.Service
	FrontendDir string
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(middleware.RoleFromHeader())
	app.Use(cors.Default())

	// Applicant surface.
	app.POST("/submit", r.Service.Submit)
	app.GET("/uploads/:filename", r.Service.ServeUpload)
	app.GET("/api/events", r.Service.CalendarEvents)

	// Staff surface: role comes from the request, never process state.
	staff := app.Group("/", middleware.RequireStaff())
	staff.GET("/api/applications", r.Service.ListApplications)
	staff.GET("/export/:format", r.Service.Export)
	staff.GET("/admin/event/:id/:action", r.Service.AdminAction)
	staff.POST("/api/event/:id/status", r.Service.UpdateStatusAPI)
	staff.POST("/admin/quick_book", r.Service.QuickBook)
	staff.GET("/admin", func(c *ginext.Context) {
		c.File(r.FrontendDir + "/admin.html")
	})

	app.GET("/", func(c *ginext.Context) {
		c.File(r.FrontendDir + "/index.html")
	})
	app.GET("/success", func(c *ginext.Context) {
		c.File(r.FrontendDir + "/success.html")
	})
	// The calendar view stays public; only the review page is gated.
	app.GET("/calendar", func(c *ginext.Context) {
		c.File(r.FrontendDir + "/calendar.html")
	})
	app.Static("/frontend", r.FrontendDir)

	return app
}
