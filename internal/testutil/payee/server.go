package payee

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
)

// Exchange 服务端记录的一次请求
type Exchange struct {
	ContentType    string
	TransferEncode string
	Accept         string
	Type           message.Type
	ResponseType   message.Type
	ResponseStatus int
}

// Server 以 HTTP 暴露 Payee
type Server struct {
	*httptest.Server
	payee *Payee

	mu        sync.Mutex
	exchanges []Exchange
	override  gin.HandlerFunc
}

// NewServer 启动测试服务器，REQUEST_ACK 中的地址指向本服务器
func NewServer(cfg Config, clk clock.Clock) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST("/bargain", s.handle)
	engine.POST("/nego", s.handle)
	s.Server = httptest.NewServer(engine)

	cfg.BargainURI = s.URL + "/nego"
	s.payee = New(cfg, clk)
	return s
}

// Payee 被包装的收款方
func (s *Server) Payee() *Payee { return s.payee }

// InitialURI 付款方发送 REQUEST 的地址
func (s *Server) InitialURI() string { return s.URL + "/bargain" }

// SetOverride h 非空时替代正常处理，用于模拟异常的收款方节点；传 nil 恢复
func (s *Server) SetOverride(h gin.HandlerFunc) {
	s.mu.Lock()
	s.override = h
	s.mu.Unlock()
}

// Exchanges 已处理请求的副本
func (s *Server) Exchanges() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Exchange(nil), s.exchanges...)
}

func (s *Server) handle(c *gin.Context) {
	x := Exchange{
		ContentType:    c.GetHeader("Content-Type"),
		TransferEncode: c.GetHeader("Content-Transfer-Encoding"),
		Accept:         c.GetHeader("Accept"),
	}
	defer func() {
		x.ResponseStatus = c.Writer.Status()
		s.mu.Lock()
		s.exchanges = append(s.exchanges, x)
		s.mu.Unlock()
	}()

	s.mu.Lock()
	override := s.override
	s.mu.Unlock()
	if override != nil {
		override(c)
		return
	}

	t, err := message.ParseMediaType(x.ContentType)
	if err != nil || x.TransferEncode != "binary" {
		c.String(http.StatusUnsupportedMediaType, "unsupported media type")
		return
	}
	x.Type = t

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	reply, err := s.payee.Handle(body)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	if reply == nil {
		c.Status(http.StatusOK)
		return
	}
	if !accepts(x.Accept, reply.Type) {
		c.String(http.StatusNotAcceptable, "reply type not accepted")
		return
	}

	x.ResponseType = reply.Type
	c.Header("Content-Transfer-Encoding", "binary")
	c.Data(http.StatusOK, reply.Type.MediaType(), reply.Payload)
}

func accepts(header string, t message.Type) bool {
	for _, part := range strings.Split(header, ",") {
		if got, err := message.ParseMediaType(part); err == nil && got == t {
			return true
		}
	}
	return false
}
