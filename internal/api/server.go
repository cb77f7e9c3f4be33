//*****************************************************************************
// Copyright 2025 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//*****************************************************************************

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/server"
)

const shutdownTimeout = 30 * time.Second

// RustlensCoreServer holds the gin router and the services its handlers call.
type RustlensCoreServer struct {
	Router         *gin.Engine
	Comparison     server.Comparison
	Model          server.Model
	History        server.History
	Health         server.Health
	Version        server.Version
	MaxUploadBytes int64
}

// NewRustlensCoreServer builds the router and registers every route.
func NewRustlensCoreServer(comparison server.Comparison, model server.Model, history server.History,
	health server.Health, maxUploadBytes int64,
) *RustlensCoreServer {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), accessLog())
	r.MaxMultipartMemory = maxUploadBytes

	s := &RustlensCoreServer{
		Router:         r,
		Comparison:     comparison,
		Model:          model,
		History:        history,
		Health:         health,
		Version:        server.NewVersion(),
		MaxUploadBytes: maxUploadBytes,
	}
	InjectRouter(s)
	return s
}

// Run serves on addr until ctx is done, then shuts the listener down gracefully.
func (s *RustlensCoreServer) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.ApiLogger.Info("[API] listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.ApiLogger.Info("[API] Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.ApiLogger.Info("[API] HTTP server stopped gracefully")
	return nil
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.ApiLogger.Info("[API] request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).String(),
			"client", c.ClientIP())
	}
}
