package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes.
// Backups may be nil when snapshots are disabled.
type Handlers struct {
	Events   *EventHandler
	Transfer *TransferHandler
	Calendar *CalendarHandler
	Backups  *BackupHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts every endpoint on r, API routes under prefix.
func RegisterRoutes(r gin.IRouter, prefix string, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/metrics/summary", h.Metrics.Summary)

	api := r.Group("/" + strings.Trim(prefix, "/"))

	events := api.Group("/events")
	events.GET("", h.Events.List)
	events.POST("", h.Events.Create)
	events.DELETE("", h.Events.Purge)
	events.GET("/summary", h.Events.Summary)
	events.POST("/import", h.Transfer.Import)
	events.GET("/import/sample", h.Transfer.Sample)
	events.GET("/export", h.Transfer.Export)
	events.GET("/:id", h.Events.Get)
	events.PUT("/:id", h.Events.Update)
	events.DELETE("/:id", h.Events.Delete)

	api.GET("/palette", h.Events.Palette)
	api.GET("/calendar/feed", h.Calendar.Feed)
	api.GET("/calendar/month", h.Calendar.Month)
	api.GET("/calendar/month.png", h.Calendar.MonthImage)
	api.GET("/gantt", h.Calendar.Gantt)

	if h.Backups != nil {
		api.POST("/backups", h.Backups.Create)
		api.GET("/backups", h.Backups.List)
		api.GET("/backups/:token", h.Backups.Download)
	}
}
