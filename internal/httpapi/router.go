package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// Options configures NewRouter.
type Options struct {
	Logger zerolog.Logger

	// Gatherer serves /metrics when non-nil.
	Gatherer prometheus.Gatherer
}

// NewRouter registers every route on a new gin engine.
func NewRouter(store types.RuleStore, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(opts.Logger))

	r.GET("/healthz", Health(store))
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/rules")
	api.GET("", GetRules(store))
	api.GET("/tree", GetTree(store))
	api.GET("/expand", GetExpand(store))

	api.POST("/group/add", Write[addGroupRequest](store))
	api.POST("/group/update", Write[updateGroupRequest](store))
	api.POST("/group/toggle", Write[toggleGroupRequest](store))
	api.POST("/group/delete", Write[deleteGroupRequest](store))
	api.POST("/group/batch", Write[batchGroupsRequest](store))

	api.POST("/keyword/add", Write[addKeywordRequest](store))
	api.POST("/keyword/remove", Write[removeKeywordRequest](store))
	api.POST("/keyword/enable", Write[enableKeywordRequest](store))

	api.POST("/hierarchy/add", Write[addEdgeRequest](store))
	api.POST("/hierarchy/remove", Write[removeEdgeRequest](store))
	api.POST("/hierarchy/move", Write[moveGroupsRequest](store))

	return r
}
