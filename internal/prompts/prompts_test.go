package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptReq(args map[string]string) mcp.GetPromptRequest {
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = args
	return req
}

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	if len(res.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(res.Messages))
	}
	tc, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", res.Messages[0].Content)
	}
	return tc.Text
}

func TestScenePreflightPrompt(t *testing.T) {
	p := NewScenePreflightPrompt()
	if def := p.Definition(); def.Name != "scene-preflight" || len(def.Arguments) != 2 {
		t.Fatalf("definition = %+v", def)
	}

	res, err := p.Handle(context.Background(), promptReq(map[string]string{"character_id": "7", "chapter_id": "12"}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	text := promptText(t, res)
	for _, want := range []string{
		"get_character_knowledge_state", "character_id=7", "chapter_id=12",
		"check_character_can_reference", "validate_scene_against_knowledge",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if _, err := p.Handle(context.Background(), promptReq(map[string]string{"character_id": "7"})); err == nil {
		t.Error("expected error without chapter_id")
	}
}

func TestKnowledgeAuditPrompt(t *testing.T) {
	p := NewKnowledgeAuditPrompt()

	res, err := p.Handle(context.Background(), promptReq(map[string]string{"character_id": "3", "knowledge_item": "the map"}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	text := promptText(t, res)
	if !strings.Contains(text, `knowledge_item="the map"`) || !strings.Contains(text, "get_character_knowledge_history") {
		t.Errorf("unexpected prompt: %s", text)
	}

	if _, err := p.Handle(context.Background(), promptReq(nil)); err == nil {
		t.Error("expected error without character_id")
	}
}
