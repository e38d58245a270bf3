// Package httpapi is the HTTP transport for the server. It owns routing,
// request/response shaping, CORS, and the bearer-token middleware; all
// authentication and authorization decisions live in the services layer.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"authkeeper/internal/logging"
	"authkeeper/internal/server/models"
	"authkeeper/internal/server/services"
)

// UserService is the slice of the services layer the transport consumes.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, login, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	RequireAdmin(user *models.User) error
	UpdateProfile(ctx context.Context, userID int64, email, fullName *string) (*models.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]*models.User, error)
	DeleteUser(ctx context.Context, callerID, targetID int64) error
}

const shutdownTimeout = 5 * time.Second

type Server struct {
	address     string
	environment string
	logger      logging.Logger
	users       UserService
}

func NewServer(address, environment string, l logging.Logger, us UserService) *Server {
	return &Server{
		address:     address,
		environment: environment,
		logger:      l.With("module", "http_server"),
		users:       us,
	}
}

// Router builds the gin engine with all routes attached. Exposed for tests.
func (s *Server) Router() *gin.Engine {
	if s.environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	// Cross-origin requests are allowed only in development; outside of it
	// the middleware is absent, so no CORS headers are ever emitted.
	if s.environment == "development" {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:    []string{"Authorization", "Content-Type"},
		}))
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)
		authGroup.POST("/refresh", s.refresh)
		authGroup.POST("/logout", s.logout)
	}

	usersGroup := r.Group("/users")
	usersGroup.Use(s.authRequired())
	{
		usersGroup.GET("/me", s.getSelf)
		usersGroup.PUT("/me", s.updateSelf)

		adminGroup := usersGroup.Group("/admin")
		adminGroup.Use(s.adminRequired())
		{
			adminGroup.GET("/users", s.listUsers)
			adminGroup.DELETE("/users/:id", s.deleteUser)
		}
	}

	r.GET("/health", s.health)
	r.GET("/", s.root)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "environment": s.environment})
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "authkeeper API",
		"version": "1.0.0",
	})
}
