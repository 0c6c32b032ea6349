// Package server hosts the transport adapters for the ToolBridge core: a
// REST/SSE HTTP server and a JSON-RPC-over-stdio adapter. Adapters are thin;
// all protocol decisions live in the chat engine and the tool registry.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toolbridge/toolbridge/chat"
	"github.com/toolbridge/toolbridge/config"
	"github.com/toolbridge/toolbridge/conversation"
	"github.com/toolbridge/toolbridge/core"
	"github.com/toolbridge/toolbridge/logging"
	"github.com/toolbridge/toolbridge/metrics"
	"github.com/toolbridge/toolbridge/tool"
)

// HTTPServer wraps the gin engine with graceful shutdown helpers.
type HTTPServer struct {
	cfg      *config.Config
	engine   *gin.Engine
	chat     *chat.Engine
	store    conversation.Store
	registry *tool.Registry
	log      logging.Logger
}

// New constructs the HTTP server with default middleware and all routes
// registered.
func New(cfg *config.Config, chatEngine *chat.Engine, store conversation.Store, registry *tool.Registry, log logging.Logger) *HTTPServer {
	if log == nil {
		log = logging.NoOpLogger{}
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), corsMiddleware(), metricsMiddleware())

	s := &HTTPServer{
		cfg:      cfg,
		engine:   engine,
		chat:     chatEngine,
		store:    store,
		registry: registry,
		log:      log,
	}
	s.registerRoutes()
	return s
}

// Handler exposes the underlying http.Handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler { return s.engine }

// Run starts the HTTP listener and shuts down gracefully when ctx is
// cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server.http.listening", "addr", s.cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info("server.http.shutdown")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *HTTPServer) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.GET("/events", s.handleEvents)

	s.engine.POST("/chat", s.handleChat)
	s.engine.GET("/conversations", s.handleListConversations)
	s.engine.GET("/conversations/:id/messages", s.handleConversationMessages)
	s.engine.DELETE("/conversations/:id", s.handleDeleteConversation)

	s.engine.GET("/tools", s.handleListTools)
	s.engine.GET("/tools/:name", s.handleToolDetails)
	s.engine.POST("/tools/execute", s.handleExecuteTool)
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": s.cfg.ServiceName})
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	UseTools       *bool  `json:"use_tools"` // default true
}

func (s *HTTPServer) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	useTools := true
	if req.UseTools != nil {
		useTools = *req.UseTools
	}

	resp, err := s.chat.Chat(c.Request.Context(), chat.Request{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		UseTools:       useTools,
	})
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			metrics.ChatTurnsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		s.log.Error("server.chat.error", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.ChatTurnsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) handleListConversations(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.List())
}

type messageView struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func (s *HTTPServer) handleConversationMessages(c *gin.Context) {
	conv, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	out := make([]messageView, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		out = append(out, messageView{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp.Format(time.RFC3339Nano),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) handleDeleteConversation(c *gin.Context) {
	if !s.store.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}

type toolView struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func (s *HTTPServer) handleListTools(c *gin.Context) {
	tools := s.registry.List()
	out := make([]toolView, 0, len(tools))
	for _, t := range tools {
		out = append(out, toolView{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) handleToolDetails(c *gin.Context) {
	t, ok := s.registry.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tool not found"})
		return
	}
	c.JSON(http.StatusOK, toolView{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()})
}

type executeToolRequest struct {
	Name      string         `json:"name" binding:"required"`
	Arguments map[string]any `json:"arguments"`
}

// handleExecuteTool runs one tool directly. Unknown tools are 404; argument
// and execution failures come back as a core.ToolResult with the error field
// set, matching the recovery rule the chat engine applies.
func (s *HTTPServer) handleExecuteTool(c *gin.Context) {
	var req executeToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.registry.Execute(c.Request.Context(), req.Name, req.Arguments)
	if err != nil {
		if errors.Is(err, tool.ErrToolNotFound) {
			metrics.ToolExecutionsTotal.WithLabelValues(req.Name, "not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		metrics.ToolExecutionsTotal.WithLabelValues(req.Name, "error").Inc()
		c.JSON(http.StatusOK, core.ToolResult{ToolName: req.Name, Error: err.Error()})
		return
	}

	metrics.ToolExecutionsTotal.WithLabelValues(req.Name, "ok").Inc()
	c.JSON(http.StatusOK, core.ToolResult{ToolName: req.Name, Result: result})
}

// corsMiddleware allows any origin; this is a demo surface fronted by a
// local web UI.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
