package resources

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storykeeper/internal/store"
)

func readReq() mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = SeriesURI
	return req
}

func contentText(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content type = %T", contents[0])
	}
	return tc
}

func TestHandleSeries(t *testing.T) {
	s, err := store.New(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	sr, err := s.CreateSeries(ctx, "Dune Chronicles", "")
	if err != nil {
		t.Fatalf("CreateSeries: %v", err)
	}
	if _, err := s.CreateBook(ctx, sr.ID, "Dune", 1); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	h := NewHandler(s)
	if def := h.SeriesResource(); def.URI != SeriesURI {
		t.Errorf("URI = %q", def.URI)
	}

	contents, err := h.HandleSeries(ctx, readReq())
	if err != nil {
		t.Fatalf("HandleSeries: %v", err)
	}
	tc := contentText(t, contents)
	if tc.MIMEType != "application/json" {
		t.Errorf("MIMEType = %q", tc.MIMEType)
	}

	var body struct {
		Series []store.SeriesOutline `json:"series"`
	}
	if err := json.Unmarshal([]byte(tc.Text), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Series) != 1 || body.Series[0].Title != "Dune Chronicles" || len(body.Series[0].Books) != 1 {
		t.Errorf("body = %+v", body)
	}
}

type failingSource struct{}

func (failingSource) ListSeries(context.Context) ([]store.Series, error) {
	return nil, errors.New("database is closed")
}

func (failingSource) Outline(context.Context, int64) (*store.SeriesOutline, error) {
	return nil, errors.New("unreachable")
}

func TestHandleSeries_Error(t *testing.T) {
	contents, err := NewHandler(failingSource{}).HandleSeries(context.Background(), readReq())
	if err != nil {
		t.Fatalf("HandleSeries: %v", err)
	}
	tc := contentText(t, contents)
	if tc.MIMEType != "text/plain" || !strings.Contains(tc.Text, "database is closed") {
		t.Errorf("content = %+v", tc)
	}
}
