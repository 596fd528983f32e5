// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package api serves the tools as a JSON HTTP API.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pdxmaps/pdxmaps/portlandmaps"
	"github.com/pdxmaps/pdxmaps/resolve"
	"github.com/pdxmaps/pdxmaps/spatial"
	"github.com/pdxmaps/pdxmaps/tools"
)

// Server exposes a Toolbox over HTTP.
type Server struct {
	tools *tools.Toolbox
}

// NewServer returns a Server answering with toolbox.
func NewServer(toolbox *tools.Toolbox) *Server {
	return &Server{tools: toolbox}
}

// Router registers every route on a new gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/api/resolve", s.resolveAddress)
	r.GET("/api/property", s.textTool(tools.NamePropertyDetails))
	r.GET("/api/zoning", s.textTool(tools.NameZoning))
	r.GET("/api/permits", s.textTool(tools.NamePermits))
	r.GET("/api/tax", s.textTool(tools.NameTaxInfo))

	return r
}

// Run serves the API on addr until it fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) resolveAddress(ctx *gin.Context) {
	req := resolve.ResolveRequest{Query: ctx.Query("query")}

	if v := ctx.Query("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "max_results must be an integer"})

			return
		}

		req.MaxResults = resolve.Limit(n)
	}

	if v := ctx.Query("bbox"); v != "" {
		bbox, err := spatial.ParseBBox(v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

			return
		}

		req.BBox = bbox.Slice()
	}

	if v := ctx.Query("include_raw"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "include_raw must be a boolean"})

			return
		}

		req.IncludeRaw = b
	}

	result, err := s.tools.ResolveAddress(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (s *Server) textTool(name string) gin.HandlerFunc {
	run := s.tools.TextTools()[name]

	return func(ctx *gin.Context) {
		text, err := run(ctx.Request.Context(), ctx.Query("address"))
		if err != nil {
			ctx.JSON(statusFor(err), gin.H{"error": err.Error()})

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"tool": name, "text": text})
	}
}

// statusFor maps tool errors to HTTP statuses.
func statusFor(err error) int {
	var validationErr *resolve.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	var transportErr *portlandmaps.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
