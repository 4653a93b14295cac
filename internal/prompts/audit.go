package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// KnowledgeAuditPrompt handles the knowledge-audit MCP prompt.
type KnowledgeAuditPrompt struct{}

// NewKnowledgeAuditPrompt creates a KnowledgeAuditPrompt.
func NewKnowledgeAuditPrompt() *KnowledgeAuditPrompt {
	return &KnowledgeAuditPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *KnowledgeAuditPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("knowledge-audit",
		mcp.WithPromptDescription(
			"Review how a character's knowledge evolves across the series and flag entries that look inconsistent.",
		),
		mcp.WithArgument("character_id",
			mcp.ArgumentDescription("ID of the character to audit"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("knowledge_item",
			mcp.ArgumentDescription("Limit the audit to one knowledge item"),
		),
	)
}

// Handle processes the knowledge-audit prompt request.
func (p *KnowledgeAuditPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	character := argOr(req, "character_id", "")
	if character == "" {
		return nil, fmt.Errorf("knowledge-audit: character_id is required")
	}

	scope := "every knowledge item"
	call := fmt.Sprintf("character_id=%s", character)
	if item := argOr(req, "knowledge_item", ""); item != "" {
		scope = fmt.Sprintf("the knowledge item %q", item)
		call += fmt.Sprintf(" and knowledge_item=%q", item)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Knowledge audit for character %s", character),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Audit %s for character %s.\n\n"+
						"Please:\n"+
						"1. Run `get_character_knowledge_history` with %s\n"+
						"2. Walk the entries in story order and point out anything suspicious: knowledge that is lost "+
						"without a memory_gap, suspicions marked certain, or items that can be acted on but never referenced\n"+
						"3. Propose corrections as `set_character_knowledge_state` calls, but do not run them until I confirm",
					scope, character, call,
				)),
			},
		},
	}, nil
}
