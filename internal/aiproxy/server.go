// Package aiproxy serves the recognition and macro functions on top of an
// OpenAI-compatible chat completions API.
package aiproxy

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/cors"
)

const (
	BasePath        = "/functions/v1"
	DefaultBaseURL  = "https://gen.pollinations.ai/v1"
	DefaultModel    = "gpt-5-mini"
	contextUserID   = "user_id"
	upstreamTimeout = 90 * time.Second
)

var releaseMode sync.Once

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	JWTSecret  string
	HTTPClient *http.Client
	Log        *slog.Logger
}

type Server struct {
	cfg    Config
	http   *http.Client
	log    *slog.Logger
	engine *gin.Engine
}

func New(cfg Config) *Server {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	s := &Server{cfg: cfg, http: cfg.HTTPClient, log: cfg.Log}
	if s.http == nil {
		s.http = &http.Client{Timeout: upstreamTimeout}
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	releaseMode.Do(func() { gin.SetMode(gin.ReleaseMode) })
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	fn := r.Group(BasePath)
	if cfg.JWTSecret != "" {
		fn.Use(s.auth())
	}
	{
		fn.POST("/recognize-food", s.recognizeFood)
		fn.POST("/recognize-food-text", s.recognizeFoodText)
		fn.POST("/calculate-macros", s.calculateMacros)
	}
	s.engine = r
	return s
}

// Handler returns the routes wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
	})
	return c.Handler(s.engine)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) auth() gin.HandlerFunc {
	secret := []byte(s.cfg.JWTSecret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
			c.Set(contextUserID, sub)
		}
		c.Next()
	}
}
