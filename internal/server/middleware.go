// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/jeranaias/supportq/internal/logger"
)

// requestIDKey stores the request ID in the echo context.
const requestIDKey = "request_id"

// requestIDMiddleware tags every request with a UUID, echoed back in the
// X-Request-ID header.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(requestIDKey, id)
			c.Response().Header().Set("X-Request-ID", id)
			return next(c)
		}
	}
}

// requestID fetches the ID set by requestIDMiddleware.
func requestID(c echo.Context) string {
	if id, ok := c.Get(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// requestLogMiddleware logs one line per request.
func requestLogMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"request_id", requestID(c))
			return err
		}
	}
}

// rateLimitMiddleware applies a global token-bucket limit. One bucket
// for the whole process: this guards the LLM budget, not per-client
// fairness.
func rateLimitMiddleware(perSecond float64, burst int) echo.MiddlewareFunc {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
