package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/route"
)

const rssContentType = "application/rss+xml; charset=utf-8"

type Server struct {
	registry *route.Registry
}

func NewServer(registry *route.Registry) *Server {
	return &Server{registry: registry}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/routes", s.listRoutes)
	r.GET("/feeds/:namespace/*path", s.serveFeed)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    s.registry.Metas(),
	})
}

// serveFeed 默认输出 RSS 2.0，?format=json 输出 JSON 文档
func (s *Server) serveFeed(c *gin.Context) {
	namespace := c.Param("namespace")
	adapter, params, err := s.registry.Match(namespace, c.Param("path"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "route not found",
		})
		return
	}

	doc, err := adapter.Run(c.Request.Context(), params)
	if err != nil {
		log.WithFields(log.Fields{
			"route": c.Request.URL.Path,
		}).WithError(err).Error("api: generate feed failed")
		code := "upstream_error"
		if c.Request.Context().Err() != nil {
			code = "canceled"
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    code,
			"message": err.Error(),
		})
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, doc)
		return
	}
	c.Data(http.StatusOK, rssContentType, []byte(feed.RSS(doc, selfLink(c))))
}

func selfLink(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}
