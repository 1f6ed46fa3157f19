// Package mockserver is an in-memory stand-in for the records service, used
// for local development and end-to-end tests.
package mockserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/andy/clientes/internal/domain"
)

// Server serves the clientes contract under /api
type Server struct {
	store  *Store
	logger *logrus.Logger
	token  string
	engine *gin.Engine
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(l *logrus.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithToken requires "Authorization: Bearer <token>" on every /api route
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// New builds the router over store
func New(store *Store, opts ...Option) *Server {
	s := &Server{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.New()
		s.logger.SetLevel(logrus.PanicLevel)
	}
	s.engine = s.setupRouter()
	return s
}

// Handler exposes the router, mostly for httptest
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(s.requestLogger())
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		})
	})

	api := router.Group("/api")
	if s.token != "" {
		api.Use(s.authMiddleware())
	}
	{
		api.GET("/clientes", s.listClientes)
		api.GET("/clientes/search", s.searchClientes)
		api.GET("/clientes/:id", s.getCliente)
		api.POST("/clientes", s.createCliente)
		api.PUT("/clientes/:id", s.updateCliente)
		api.DELETE("/clientes/:id", s.deleteCliente)
	}

	return router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("mock server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("mock server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)

		c.Next()

		s.logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"request_id": reqID,
		}).Info("request")
	}
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+s.token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No autorizado"})
			return
		}
		c.Next()
	}
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorJSON(c, http.StatusBadRequest, "El id debe ser un número positivo")
		return 0, false
	}
	return id, true
}

func (s *Server) listClientes(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) searchClientes(c *gin.Context) {
	nombre := c.Query("nombre")
	if strings.TrimSpace(nombre) == "" {
		errorJSON(c, http.StatusBadRequest, "El parámetro nombre es obligatorio")
		return
	}
	c.JSON(http.StatusOK, s.store.Search(nombre))
}

func (s *Server) getCliente(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	detalle, err := s.store.Get(id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "Cliente no encontrado")
		return
	}
	c.JSON(http.StatusOK, detalle)
}

func (s *Server) createCliente(c *gin.Context) {
	var req domain.CreateClienteDto
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Cuerpo inválido: "+err.Error())
		return
	}

	form := formFromDto(req.Nombres, req.Apellidos, req.FechaNacimiento, req.CUIT, req.Domicilio, req.TelefonoCelular, req.Email)
	if err := form.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, "Datos inválidos: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, s.store.Create(req))
}

func (s *Server) updateCliente(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req domain.UpdateClienteDto
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Cuerpo inválido: "+err.Error())
		return
	}

	form := formFromDto(req.Nombres, req.Apellidos, req.FechaNacimiento, req.CUIT, req.Domicilio, req.TelefonoCelular, req.Email)
	if err := form.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, "Datos inválidos: "+err.Error())
		return
	}

	switch err := s.store.Update(id, req); {
	case errors.Is(err, ErrIDMismatch):
		errorJSON(c, http.StatusBadRequest, "El id del cliente no coincide")
	case errors.Is(err, ErrNotFound):
		errorJSON(c, http.StatusNotFound, "Cliente no encontrado")
	case err != nil:
		errorJSON(c, http.StatusInternalServerError, err.Error())
	default:
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) deleteCliente(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.store.Delete(id); err != nil {
		errorJSON(c, http.StatusNotFound, "Cliente no encontrado")
		return
	}
	c.Status(http.StatusNoContent)
}
