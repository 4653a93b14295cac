// Package prompts implements MCP prompt handlers for storykeeper.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// argOr returns the named prompt argument, or def when it is absent or empty.
func argOr(req mcp.GetPromptRequest, name, def string) string {
	if args := req.Params.Arguments; args != nil {
		if v, ok := args[name]; ok && v != "" {
			return v
		}
	}
	return def
}

// ScenePreflightPrompt handles the scene-preflight MCP prompt.
// It walks the AI through checking a character's knowledge before and
// after drafting a scene.
type ScenePreflightPrompt struct{}

// NewScenePreflightPrompt creates a ScenePreflightPrompt.
func NewScenePreflightPrompt() *ScenePreflightPrompt {
	return &ScenePreflightPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ScenePreflightPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("scene-preflight",
		mcp.WithPromptDescription(
			"Prepare to write a scene from one character's point of view. "+
				"Loads what the character knows at the chapter, checks the items you plan to use, "+
				"and validates the draft afterwards.",
		),
		mcp.WithArgument("character_id",
			mcp.ArgumentDescription("ID of the point-of-view character"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("chapter_id",
			mcp.ArgumentDescription("ID of the chapter the scene belongs to"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the scene-preflight prompt request.
func (p *ScenePreflightPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	character := argOr(req, "character_id", "")
	chapter := argOr(req, "chapter_id", "")
	if character == "" || chapter == "" {
		return nil, fmt.Errorf("scene-preflight: character_id and chapter_id are required")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Scene preflight for character %s at chapter %s", character, chapter),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I am about to write a scene for character %[1]s in chapter %[2]s.\n\n"+
						"Please:\n"+
						"1. Run `get_character_knowledge_state` with character_id=%[1]s and chapter_id=%[2]s "+
						"and summarize what the character knows, suspects, doesn't know, and has forgotten\n"+
						"2. Ask me which pieces of information the scene should touch, then run "+
						"`check_character_can_reference` for each one with at_chapter=%[2]s\n"+
						"3. Draft the scene while respecting every restriction you found\n"+
						"4. Run `validate_scene_against_knowledge` on the draft with the right content_type "+
						"(dialogue, internal_thought or narration) and fix every violation before showing it to me\n\n"+
						"Anything the character has never been recorded as knowing should be treated as unknown.",
					character, chapter,
				)),
			},
		},
	}, nil
}
