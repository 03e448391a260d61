// Package http 提供只读的议价查询、健康检查与 Prometheus 指标端点
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/bargain/internal/app/version"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// Reader 议价只读视图
type Reader interface {
	Get(ctx context.Context, id string) (*negotiation.Negotiation, error)
	List(ctx context.Context) ([]*negotiation.Negotiation, error)
	Address() string
}

// Summary 列表中的一条议价
type Summary struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Messages    int    `json:"messages"`
	LastType    string `json:"last_type,omitempty"`
	NextRole    string `json:"next_role,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	PayerExpiry int64  `json:"payer_expiry,omitempty"`
}

// Summarize 生成议价摘要
func Summarize(n *negotiation.Negotiation) Summary {
	s := Summary{
		ID:        n.ID(),
		Status:    string(n.Status()),
		Messages:  n.Len(),
		NextRole:  string(n.NextActiveRole()),
		CreatedAt: n.CreatedAt(),
	}
	if last := n.LastMessage(); last != nil {
		s.LastType = string(last.Type)
	}
	if exp, ok := n.ExpiryForRole(message.RolePayer); ok {
		s.PayerExpiry = exp
	}
	return s
}

// Server 状态服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	reader     Reader
	logger     log.Logger
}

// NewServer 创建服务器，尚未监听
func NewServer(addr string, reader Reader, logger log.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		reader: reader,
		logger: logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.health)
	s.router.GET("/version", s.version)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	api.GET("/negotiations", s.listNegotiations)
	api.GET("/negotiations/:id", s.getNegotiation)
}

// Handler 路由，供测试直接调用
func (s *Server) Handler() http.Handler { return s.router }

// Start 在后台开始监听
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Infof("status server listening on %s", ln.Addr())
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && s.logger != nil {
			s.logger.Errorf("status server stopped: %v", err)
		}
	}()
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "address": s.reader.Address()})
}

func (s *Server) version(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetBuildInfo())
}

func (s *Server) listNegotiations(c *gin.Context) {
	list, err := s.reader.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]Summary, 0, len(list))
	for _, n := range list {
		if st := c.Query("status"); st != "" && st != string(n.Status()) {
			continue
		}
		out = append(out, Summarize(n))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getNegotiation(c *gin.Context) {
	n, err := s.reader.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, negotiation.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unable to find the negotiation"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// 快照格式与会话存储一致
	c.JSON(http.StatusOK, gin.H{"summary": Summarize(n), "negotiation": n})
}
