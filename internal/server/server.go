// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes the classifier over HTTP: single and batch
// classification, session statistics, and a health probe.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jeranaias/supportq/internal/classify"
	"github.com/jeranaias/supportq/internal/logger"
	"github.com/jeranaias/supportq/internal/router"
	"github.com/jeranaias/supportq/internal/telemetry"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// maxBodySize bounds request bodies; queries top out at 2000 chars
	// so anything near the limit is garbage.
	maxBodySize = "64K"

	// maxBatchSize bounds one batch request.
	maxBatchSize = 100

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// classifyRequest is the body of POST /v1/classify.
type classifyRequest struct {
	Text      string            `json:"text"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// batchRequest is the body of POST /v1/classify/batch.
type batchRequest struct {
	Queries []classifyRequest `json:"queries"`
}

// classifyResponse pairs a classification with its routing decision.
type classifyResponse struct {
	RequestID string                        `json:"request_id"`
	Result    classify.ClassificationResult `json:"result"`
	Routing   router.RoutingDecision        `json:"routing"`
}

// batchResponse is the body returned by the batch endpoint.
type batchResponse struct {
	RequestID string             `json:"request_id"`
	Count     int                `json:"count"`
	Results   []classifyResponse `json:"results"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// SERVER
// =============================================================================

// Options configures the server.
type Options struct {
	Port      int
	RateLimit float64
	Burst     int
}

// Server hosts the classification API.
type Server struct {
	echo    *echo.Echo
	opts    Options
	hybrid  *classify.HybridClassifier
	routes  *router.Router
	tracker *telemetry.SessionTracker
}

// New wires the API around a hybrid classifier, router, and session
// tracker.
func New(opts Options, hybrid *classify.HybridClassifier, routes *router.Router, tracker *telemetry.SessionTracker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		opts:    opts,
		hybrid:  hybrid,
		routes:  routes,
		tracker: tracker,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(requestIDMiddleware())
	e.Use(requestLogMiddleware())
	if opts.RateLimit > 0 {
		e.Use(rateLimitMiddleware(opts.RateLimit, opts.Burst))
	}

	e.GET("/health", s.handleHealth)
	e.POST("/v1/classify", s.handleClassify)
	e.POST("/v1/classify/batch", s.handleClassifyBatch)
	e.GET("/v1/stats", s.handleStats)
	e.DELETE("/v1/stats", s.handleStatsReset)

	return s
}

// Start blocks serving HTTP until the context is canceled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(fmt.Sprintf(":%d", s.opts.Port))
	}()

	logger.Info("http server listening", "port", s.opts.Port)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClassify(c echo.Context) error {
	var req classifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	q, err := buildQuery(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result := s.hybrid.Classify(c.Request().Context(), q)
	s.tracker.Record(result)

	return c.JSON(http.StatusOK, classifyResponse{
		RequestID: requestID(c),
		Result:    result,
		Routing:   s.routes.Route(result),
	})
}

func (s *Server) handleClassifyBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if len(req.Queries) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "queries is empty"})
	}
	if len(req.Queries) > maxBatchSize {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("batch too large: %d queries (max %d)", len(req.Queries), maxBatchSize)})
	}

	// Validate everything up front so a bad entry fails the whole batch
	// before any classification work happens.
	queries := make([]classify.QueryInput, 0, len(req.Queries))
	for i, entry := range req.Queries {
		q, err := buildQuery(entry)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{
				Error: fmt.Sprintf("queries[%d]: %v", i, err)})
		}
		queries = append(queries, q)
	}

	results := s.hybrid.ClassifyBatch(c.Request().Context(), queries)

	id := requestID(c)
	out := make([]classifyResponse, len(results))
	for i, r := range results {
		s.tracker.Record(r)
		out[i] = classifyResponse{
			RequestID: id,
			Result:    r,
			Routing:   s.routes.Route(r),
		}
	}

	return c.JSON(http.StatusOK, batchResponse{
		RequestID: id,
		Count:     len(out),
		Results:   out,
	})
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) handleStatsReset(c echo.Context) error {
	s.tracker.Reset()
	return c.NoContent(http.StatusNoContent)
}

// buildQuery validates a request entry into a QueryInput.
func buildQuery(req classifyRequest) (classify.QueryInput, error) {
	q, err := classify.NewQueryInput(req.Text)
	if err != nil {
		return classify.QueryInput{}, err
	}
	return q.WithUser(req.UserID).WithSession(req.SessionID).WithMetadata(req.Metadata), nil
}
