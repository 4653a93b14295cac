// Package resources implements MCP resource handlers for storykeeper.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (storykeeper://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storykeeper/internal/store"
)

// SeriesURI addresses the series outline resource.
const SeriesURI = "storykeeper://series"

// OutlineSource is the part of the store the resource reads.
type OutlineSource interface {
	ListSeries(ctx context.Context) ([]store.Series, error)
	Outline(ctx context.Context, seriesID int64) (*store.SeriesOutline, error)
}

// Handler manages storykeeper resource endpoints.
type Handler struct {
	source OutlineSource
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(source OutlineSource) *Handler {
	return &Handler{source: source}
}

// SeriesResource returns the MCP resource definition for the series outlines.
func (h *Handler) SeriesResource() mcp.Resource {
	return mcp.NewResource(
		SeriesURI,
		"Series outlines",
		mcp.WithResourceDescription("Every series with its books, chapters and characters, in reading order"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSeries returns all series outlines as JSON.
func (h *Handler) HandleSeries(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := h.source.ListSeries(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	outlines := make([]*store.SeriesOutline, 0, len(list))
	for _, sr := range list {
		out, err := h.source.Outline(ctx, sr.ID)
		if err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		outlines = append(outlines, out)
	}

	data, err := json.MarshalIndent(map[string]any{"series": outlines}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling series: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
