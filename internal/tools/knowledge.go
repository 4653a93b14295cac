package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
	"github.com/HendryAvila/storykeeper/internal/metrics"
)

// Tool names of the knowledge operations.
const (
	SetKnowledgeStateName = "set_character_knowledge_state"
	CanReferenceName      = "check_character_can_reference"
	KnowledgeStateName    = "get_character_knowledge_state"
	ValidateSceneName     = "validate_scene_against_knowledge"
	KnowledgeHistoryName  = "get_character_knowledge_history"
)

// ─── SetKnowledgeStateTool ───────────────────────────────────────────────────

// SetKnowledgeStateTool handles the set_character_knowledge_state MCP tool.
type SetKnowledgeStateTool struct {
	engine *knowledge.Engine
}

// NewSetKnowledgeStateTool creates a SetKnowledgeStateTool.
func NewSetKnowledgeStateTool(engine *knowledge.Engine) *SetKnowledgeStateTool {
	return &SetKnowledgeStateTool{engine: engine}
}

// Definition returns the MCP tool definition for set_character_knowledge_state.
func (t *SetKnowledgeStateTool) Definition() mcp.Tool {
	return mcp.NewTool(SetKnowledgeStateName,
		mcp.WithDescription(
			"Record what a character knows, suspects, or is unaware of as of a specific chapter. "+
				"Calling it again for the same character, item, book and chapter overwrites the previous entry. "+
				"Entries at later chapters do not affect earlier ones.",
		),
		mcp.WithNumber("character_id", mcp.Required(), mcp.Description("Character ID")),
		mcp.WithNumber("book_id", mcp.Required(), mcp.Description("Book ID")),
		mcp.WithNumber("chapter_id", mcp.Required(), mcp.Description("Chapter ID (must belong to book_id)")),
		mcp.WithString("knowledge_item",
			mcp.Required(),
			mcp.Description("Short key for the piece of information (e.g. \"killer's identity\")"),
		),
		mcp.WithString("knowledge_state",
			mcp.Required(),
			mcp.Description("What the character knows about the item"),
			mcp.Enum(knowledge.StateValues()...),
		),
		mcp.WithString("source", mcp.Description("How the character learned it")),
		mcp.WithString("confidence_level",
			mcp.Description("How certain the character is"),
			mcp.Enum(knowledge.ConfidenceValues()...),
		),
		mcp.WithBoolean("can_act_on", mcp.Description("Character can act on this knowledge (default: true)")),
		mcp.WithBoolean("can_reference_directly", mcp.Description("Character can mention it explicitly (default: true)")),
		mcp.WithBoolean("can_reference_indirectly", mcp.Description("Character can hint at it (default: true)")),
		mcp.WithBoolean("internal_thought_ok", mcp.Description("Character may say it aloud, not just think it (default: true)")),
		mcp.WithString("restrictions", mcp.Description("Free-text limits on how the knowledge may be used")),
		mcp.WithString("dialogue_restriction", mcp.Description("Free-text limits on dialogue use")),
	)
}

// Handle processes the set_character_knowledge_state tool call.
func (t *SetKnowledgeStateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	ids, err := idArgs(req, "character_id", "book_id", "chapter_id")
	if err != nil {
		return finish(SetKnowledgeStateName, start, nil, err)
	}
	res, err := t.engine.SetKnowledgeState(ctx, knowledge.SetFactParams{
		CharacterID:            ids[0],
		BookID:                 ids[1],
		ChapterID:              ids[2],
		KnowledgeItem:          req.GetString("knowledge_item", ""),
		State:                  req.GetString("knowledge_state", ""),
		Source:                 req.GetString("source", ""),
		Confidence:             req.GetString("confidence_level", ""),
		CanActOn:               optionalBool(req, "can_act_on"),
		CanReferenceDirectly:   optionalBool(req, "can_reference_directly"),
		CanReferenceIndirectly: optionalBool(req, "can_reference_indirectly"),
		InternalThoughtOK:      optionalBool(req, "internal_thought_ok"),
		Restrictions:           req.GetString("restrictions", ""),
		DialogueRestriction:    req.GetString("dialogue_restriction", ""),
	})
	return finish(SetKnowledgeStateName, start, res, err)
}

// ─── CanReferenceTool ────────────────────────────────────────────────────────

// CanReferenceTool handles the check_character_can_reference MCP tool.
type CanReferenceTool struct {
	engine *knowledge.Engine
}

// NewCanReferenceTool creates a CanReferenceTool.
func NewCanReferenceTool(engine *knowledge.Engine) *CanReferenceTool {
	return &CanReferenceTool{engine: engine}
}

// Definition returns the MCP tool definition for check_character_can_reference.
func (t *CanReferenceTool) Definition() mcp.Tool {
	return mcp.NewTool(CanReferenceName,
		mcp.WithDescription(
			"Check whether a character can reference a specific piece of information at a chapter. "+
				"Call this BEFORE writing dialogue or thoughts that mention the item. "+
				"Items never recorded for the character count as unknown.",
		),
		mcp.WithNumber("character_id", mcp.Required(), mcp.Description("Character ID")),
		mcp.WithString("knowledge_item", mcp.Required(), mcp.Description("The knowledge item to check")),
		mcp.WithNumber("at_chapter", mcp.Required(), mcp.Description("Chapter ID where the reference would happen")),
	)
}

// Handle processes the check_character_can_reference tool call.
func (t *CanReferenceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	ids, err := idArgs(req, "character_id", "at_chapter")
	if err != nil {
		return finish(CanReferenceName, start, nil, err)
	}
	res, err := t.engine.CanReference(ctx, ids[0], req.GetString("knowledge_item", ""), ids[1])
	return finish(CanReferenceName, start, res, err)
}

// ─── KnowledgeStateTool ──────────────────────────────────────────────────────

// KnowledgeStateTool handles the get_character_knowledge_state MCP tool.
type KnowledgeStateTool struct {
	engine *knowledge.Engine
}

// NewKnowledgeStateTool creates a KnowledgeStateTool.
func NewKnowledgeStateTool(engine *knowledge.Engine) *KnowledgeStateTool {
	return &KnowledgeStateTool{engine: engine}
}

// Definition returns the MCP tool definition for get_character_knowledge_state.
func (t *KnowledgeStateTool) Definition() mcp.Tool {
	return mcp.NewTool(KnowledgeStateName,
		mcp.WithDescription(
			"Get everything a character knows, suspects, doesn't know, or has forgotten as of a chapter. "+
				"Only entries at or before the chapter are considered; the latest entry per item wins.",
		),
		mcp.WithNumber("character_id", mcp.Required(), mcp.Description("Character ID")),
		mcp.WithNumber("chapter_id", mcp.Required(), mcp.Description("Chapter ID to resolve knowledge at")),
	)
}

// Handle processes the get_character_knowledge_state tool call.
func (t *KnowledgeStateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	ids, err := idArgs(req, "character_id", "chapter_id")
	if err != nil {
		return finish(KnowledgeStateName, start, nil, err)
	}
	res, err := t.engine.KnowledgeState(ctx, ids[0], ids[1])
	return finish(KnowledgeStateName, start, res, err)
}

// ─── ValidateSceneTool ───────────────────────────────────────────────────────

// ValidateSceneTool handles the validate_scene_against_knowledge MCP tool.
type ValidateSceneTool struct {
	engine *knowledge.Engine
}

// NewValidateSceneTool creates a ValidateSceneTool.
func NewValidateSceneTool(engine *knowledge.Engine) *ValidateSceneTool {
	return &ValidateSceneTool{engine: engine}
}

// Definition returns the MCP tool definition for validate_scene_against_knowledge.
func (t *ValidateSceneTool) Definition() mcp.Tool {
	return mcp.NewTool(ValidateSceneName,
		mcp.WithDescription(
			"Validate scene content against what a character knows at a chapter. "+
				"Returns critical/high violations (scene is invalid) and medium warnings. "+
				"Call this AFTER drafting dialogue, internal thoughts, or narration from a character's point of view.",
		),
		mcp.WithNumber("character_id", mcp.Required(), mcp.Description("Character ID")),
		mcp.WithNumber("chapter_id", mcp.Required(), mcp.Description("Chapter ID where the scene occurs")),
		mcp.WithString("scene_content", mcp.Required(), mcp.Description("The drafted scene text")),
		mcp.WithString("content_type",
			mcp.Description("Kind of content (default: dialogue)"),
			mcp.Enum(knowledge.ContentTypeValues()...),
		),
	)
}

// Handle processes the validate_scene_against_knowledge tool call.
func (t *ValidateSceneTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	ids, err := idArgs(req, "character_id", "chapter_id")
	if err != nil {
		return finish(ValidateSceneName, start, nil, err)
	}
	res, err := t.engine.ValidateScene(ctx,
		ids[0],
		ids[1],
		req.GetString("scene_content", ""),
		knowledge.ContentType(req.GetString("content_type", string(knowledge.ContentDialogue))),
	)
	if err == nil {
		metrics.RecordFindings(res)
	}
	return finish(ValidateSceneName, start, res, err)
}

// ─── KnowledgeHistoryTool ────────────────────────────────────────────────────

// KnowledgeHistoryTool handles the get_character_knowledge_history MCP tool.
type KnowledgeHistoryTool struct {
	engine *knowledge.Engine
}

// NewKnowledgeHistoryTool creates a KnowledgeHistoryTool.
func NewKnowledgeHistoryTool(engine *knowledge.Engine) *KnowledgeHistoryTool {
	return &KnowledgeHistoryTool{engine: engine}
}

// Definition returns the MCP tool definition for get_character_knowledge_history.
func (t *KnowledgeHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool(KnowledgeHistoryName,
		mcp.WithDescription(
			"List every knowledge entry recorded for a character in story order. "+
				"Use it to audit how a character's knowledge evolves across books and chapters.",
		),
		mcp.WithNumber("character_id", mcp.Required(), mcp.Description("Character ID")),
		mcp.WithString("knowledge_item", mcp.Description("Limit the history to one item")),
	)
}

// Handle processes the get_character_knowledge_history tool call.
func (t *KnowledgeHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	characterID, err := idArg(req, "character_id")
	if err != nil {
		return finish(KnowledgeHistoryName, start, nil, err)
	}
	facts, err := t.engine.History(ctx, characterID, req.GetString("knowledge_item", ""))
	return finish(KnowledgeHistoryName, start, facts, err)
}
