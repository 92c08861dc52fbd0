package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-edge-gateway/internal/config"
	"github.com/jrsteele09/go-edge-gateway/ratelimit"
	"github.com/jrsteele09/go-edge-gateway/session"
	"github.com/jrsteele09/go-edge-gateway/upstream"
)

// limiters groups the independent per-action rate limiters. Each action
// owns its own instance so budgets never bleed into each other.
type limiters struct {
	login          *ratelimit.Limiter
	signup         *ratelimit.Limiter
	passwordChange *ratelimit.Limiter
}

type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	handler  http.HandlerFunc
	config   config.Config
	sessions *session.Manager
	auth     *upstream.Client
	relay    *upstream.Relay
	limits   limiters
	events   zerolog.Logger
}

func New(cfg config.Config, events zerolog.Logger) (*Server, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("[Server New] config validation: %w", err)
	}

	sessionManager, err := session.NewManager(cfg.GetSigningSecret(), cfg.GetSessionTTL(), cfg.GetCookieDomain())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session manager: %w", err)
	}

	loginLimit, loginWindow := cfg.GetLoginLimit()
	signupLimit, signupWindow := cfg.GetSignupLimit()
	passwordLimit, passwordWindow := cfg.GetPasswordChangeLimit()

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: sessionManager,
		auth:     upstream.New(cfg.GetAuthServiceURL(), cfg.GetUpstreamTimeout()),
		limits: limiters{
			login:          ratelimit.New(loginLimit, loginWindow),
			signup:         ratelimit.New(signupLimit, signupWindow),
			passwordChange: ratelimit.New(passwordLimit, passwordWindow),
		},
		events: events,
	}
	s.env = cfg.GetEnv()

	s.relay, err = upstream.NewRelay(cfg.GetAppServiceURL(), s.relayErrorHandler)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create relay: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	// Every request passes through the edge gate behind the standard
	// middleware stack, so no code path can skip classification or headers.
	s.handler = ChainMiddleware(s.EdgeHandler(),
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.SecurityHeadersMiddleware,
	)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
