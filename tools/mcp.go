// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pdxmaps/pdxmaps/resolve"
)

const addressDescription = "Street address in Portland, Oregon, e.g. \"1234 SW Main St\""

// NewMCPServer returns an MCP server exposing every tool of t.
func NewMCPServer(t *Toolbox, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"pdxmaps",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(resolveAddressTool(), t.handleResolveAddress)

	for _, def := range []struct {
		name, description string
		run               TextTool
	}{
		{NamePropertyDetails, "Summarize the property at an address with links to its official PortlandMaps pages.", t.PropertyDetails},
		{NameZoning, "Link the zoning information for the property at an address.", t.Zoning},
		{NamePermits, "Link the building permit history for the property at an address.", t.Permits},
		{NameTaxInfo, "Link the assessor and property tax records for the property at an address.", t.TaxInfo},
	} {
		s.AddTool(addressTool(def.name, def.description), textHandler(def.run))
	}

	return s
}

func resolveAddressTool() mcp.Tool {
	return mcp.NewTool(NameResolveAddress,
		mcp.WithDescription("Resolve free text into ranked Portland address candidates with WGS84 coordinates, "+
			"a 0-100 confidence score and the provenance of each coordinate."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.MinLength(resolve.MinQueryLength),
			mcp.Description("Free text address query"),
		),
		mcp.WithNumber("max_results",
			mcp.Min(1),
			mcp.Max(resolve.MaxMaxResults),
			mcp.DefaultNumber(resolve.DefaultMaxResults),
			mcp.Description("Maximum number of candidates to return"),
		),
		mcp.WithArray("bbox",
			mcp.Items(map[string]any{"type": "number"}),
			mcp.Description("Optional bounding box [minLon, minLat, maxLon, maxLat]; candidates outside are dropped"),
		),
		mcp.WithBoolean("include_raw",
			mcp.DefaultBool(false),
			mcp.Description("Attach the unmodified suggestion record to each candidate"),
		),
	)
}

func addressTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("address",
			mcp.Required(),
			mcp.MinLength(resolve.MinQueryLength),
			mcp.Description(addressDescription),
		),
	)
}

func (t *Toolbox) handleResolveAddress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	bbox, err := floats(request.GetArguments()["bbox"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid bbox: %v", err)), nil
	}

	result, err := t.ResolveAddress(ctx, resolve.ResolveRequest{
		Query:      query,
		MaxResults: resolve.Limit(request.GetInt("max_results", resolve.DefaultMaxResults)),
		BBox:       bbox,
		IncludeRaw: request.GetBool("include_raw", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}

	return mcp.NewToolResultText(string(data)), nil
}

func textHandler(run TextTool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		address, err := request.RequireString("address")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text, err := run(ctx, address)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(text), nil
	}
}

// floats converts a decoded JSON array of numbers. nil stays nil.
func floats(v any) ([]float64, error) {
	if v == nil {
		return nil, nil
	}

	switch vv := v.(type) {
	case []float64:
		return vv, nil
	case []any:
		out := make([]float64, 0, len(vv))

		for i, e := range vv {
			f, ok := e.(float64)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not a number", i, e)
			}

			out = append(out, f)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("expected an array of numbers, got %T", v)
	}
}
