// Package server wraps the backtest service in a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantframe-lab/quantframe/internal/composition"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/optimizer"
	"github.com/quantframe-lab/quantframe/internal/service"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

const shutdownTimeout = 5 * time.Second

// Server serves the strategy API over HTTP.
type Server struct {
	service    *service.Service
	logger     *logger.Logger
	listener   net.Listener
	httpServer *http.Server
}

func NewServer(svc *service.Service, log *logger.Logger) *Server {
	return &Server{
		service:    svc,
		logger:     log,
		listener:   nil,
		httpServer: nil,
	}
}

// Router builds the route table. Exposed so tests can drive handlers through
// httptest without binding a socket.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/strategies", s.handleListStrategies).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/strategies/{id}/backtest", s.handleBacktest).Methods(http.MethodPost)

	return router
}

// Start begins serving on address. With ":0" a random port is chosen; use
// Address to discover it.
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeResourceUnavailable, err,
			"failed to listen on %s", address)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("http server listening", zap.String("address", s.Address()))

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the bound listen address, or "" before Start.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

type backtestRequest struct {
	// Parameters maps hyperparameter names to integer values. Omitted or
	// empty means sweep the strategy's full parameter space.
	Parameters map[string]int `json:"parameters,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListStrategies(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.ListStrategies())
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	strategyID := mux.Vars(r)["id"]

	var req backtestRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, errors.Wrap(
				errors.ErrCodeInvalidParameter, "malformed request body", err))
			return
		}
	}

	params := optional.None[optimizer.ParameterMap]()

	if len(req.Parameters) > 0 {
		parameterMap := make(optimizer.ParameterMap, len(req.Parameters))
		for name, value := range req.Parameters {
			parameterMap[name] = composition.Size(value)
		}

		params = optional.Some(parameterMap)
	}

	response, err := s.service.RunBacktest(strategyID, params)
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeStrategyNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMissingParameter, errors.ErrCodeInvalidParameter:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	s.writeJSON(w, status, errorResponse{
		Error: err.Error(),
		Code:  int(errors.GetCode(err)),
	})
}
