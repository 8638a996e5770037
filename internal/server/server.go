package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"tonehub/internal/api"
	"tonehub/internal/download"
	"tonehub/internal/entitlement"
	"tonehub/internal/logging"
	"tonehub/internal/preview"
	"tonehub/internal/services"
)

// requestIDHeader carries the correlation id in both directions.
const requestIDHeader = "X-Request-ID"

// Deps are the components the server routes to.
type Deps struct {
	Library   *api.Library
	Gate      *entitlement.Gate
	Preview   *preview.Engine
	Downloads *download.Dispatcher
	// Token guards mutating endpoints when non-empty.
	Token  string
	Logger *slog.Logger
}

// Server is the local HTTP API.
type Server struct {
	bind   string
	deps   Deps
	logger *slog.Logger

	observed    observations
	unsubscribe func()

	listener net.Listener
	server   *http.Server
}

// New validates deps and builds the routing table.
func New(bind string, deps Deps) (*Server, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, services.Wrap(services.ErrConfiguration, "server", "new", "bind address is empty", nil)
	}
	if deps.Library == nil || deps.Gate == nil || deps.Preview == nil || deps.Downloads == nil {
		return nil, errors.New("server requires library, gate, preview engine, and download dispatcher")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		bind:   bind,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "api-server"),
	}
	s.unsubscribe = deps.Preview.Subscribe(s.onPreviewEvent)
	deps.Gate.Subscribe(s.onEntitlementChange)
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with correlation ids applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	guard := func(h http.HandlerFunc) http.HandlerFunc { return authMiddleware(s.deps.Token, h) }

	mux.HandleFunc("GET /api/items", s.handleItems)
	mux.HandleFunc("GET /api/items/{id}", s.handleItem)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/packs", s.handlePacks)
	mux.HandleFunc("POST /api/catalog/reload", guard(s.handleReload))

	mux.HandleFunc("GET /api/preview", s.handlePreviewStatus)
	mux.HandleFunc("POST /api/preview/{id}", guard(s.handlePreviewStart))
	mux.HandleFunc("DELETE /api/preview", guard(s.handlePreviewStop))
	mux.HandleFunc("DELETE /api/preview/error", guard(s.handlePreviewDismiss))

	mux.HandleFunc("GET /api/entitlement", s.handleEntitlement)
	mux.HandleFunc("POST /api/entitlement/verify", guard(s.handleVerify))
	mux.HandleFunc("POST /api/entitlement/payment", guard(s.handlePayment))

	mux.HandleFunc("POST /api/download/{id}", guard(s.handleDownload))
	return s.withRequestID(mux)
}

// Start listens on the bind address and serves until ctx is done or Stop
// is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down and detaches it from the preview engine.
func (s *Server) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := services.WithRequestID(r.Context(), id)
		logging.WithContext(ctx, s.logger).Debug("api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, kind string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message, Kind: kind})
}

// writeServiceError maps component errors onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	kind := ""
	var verr *entitlement.VerifyError
	var derr *download.Error
	switch {
	case errors.As(err, &verr):
		kind = "invalid_key"
		if errors.Is(err, entitlement.ErrInvalidKey) {
			status = http.StatusForbidden
		}
	case preview.KindOf(err) != 0:
		kind = preview.KindOf(err).String()
	case errors.As(err, &derr):
		kind = "download_failed"
	case errors.Is(err, services.ErrNotFound):
		kind = "not_found"
	}
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "api request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Error(err))
	}
	s.writeError(w, status, err.Error(), kind)
}
