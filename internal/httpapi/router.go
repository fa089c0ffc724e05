package httpapi

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/tvan04/workflow-management-system-sub001/internal/metrics"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

type RouterOptions struct {
	Metrics *metrics.Collectors
	//applied to write routes only; nil disables limiting
	Limiter *RateLimiter
	Logger  log.FieldLogger
}

func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(pageTemplates)
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(requestLogger(opts.Logger))
	}
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if opts.Limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{opts.Limiter.Middleware(), h}
	}

	r.GET("/healthz", healthz)
	r.GET("/sign/:id", h.sign)

	api := r.Group("/api")
	{
		api.POST("/applications", write(h.submit)...)
		api.GET("/applications", h.list)
		api.GET("/applications/search", h.search)
		api.GET("/applications/:id", h.get)
		api.GET("/applications/:id/cv", h.downloadCV)
		api.POST("/applications/:id/approve", write(h.approve)...)
		api.GET("/metrics", h.metrics)
	}
	return r
}
