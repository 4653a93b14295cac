// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it opens the store, builds the knowledge
// engine and injects them into the tools, prompts and resources that depend
// on them. No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/storykeeper/internal/config"
	"github.com/HendryAvila/storykeeper/internal/knowledge"
	"github.com/HendryAvila/storykeeper/internal/prompts"
	"github.com/HendryAvila/storykeeper/internal/resources"
	"github.com/HendryAvila/storykeeper/internal/store"
	"github.com/HendryAvila/storykeeper/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Name is the MCP server name.
const Name = "storykeeper"

// App holds everything a transport needs.
type App struct {
	MCP    *server.MCPServer
	Engine *knowledge.Engine
	Store  *store.Store
	// Tools lists the registered tool names in registration order.
	Tools []string
}

// New creates the store, the knowledge engine and the MCP server with all
// tools, prompts, and resources registered.
//
// The returned cleanup function closes the store's database connection and
// must be called on shutdown (typically via defer). It is always non-nil.
func New(cfg config.Config, logger *zap.Logger) (*App, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	scanner, err := knowledge.ScannerByName(cfg.Scanner)
	if err != nil {
		return nil, noop, err
	}

	st, err := store.New(cfg.StoreConfig())
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("store close failed", zap.Error(err))
		}
	}
	logger.Debug("store opened", zap.String("path", st.Path()))

	engine := knowledge.NewEngine(st, st,
		knowledge.WithScanner(scanner),
		knowledge.WithTimeout(time.Duration(cfg.QueryTimeout)),
	)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	app := &App{MCP: s, Engine: engine, Store: st}

	// --- Register knowledge tools ---

	register := func(t tools.Tool) {
		def := t.Definition()
		s.AddTool(def, instrument(logger, def.Name, t.Handle))
		app.Tools = append(app.Tools, def.Name)
	}

	register(tools.NewSetKnowledgeStateTool(engine))
	register(tools.NewCanReferenceTool(engine))
	register(tools.NewKnowledgeStateTool(engine))
	register(tools.NewValidateSceneTool(engine))
	register(tools.NewKnowledgeHistoryTool(engine))

	// --- Register series registry tools ---

	register(tools.NewCreateSeriesTool(st))
	register(tools.NewCreateBookTool(st))
	register(tools.NewCreateChapterTool(st))
	register(tools.NewCreateCharacterTool(st))
	register(tools.NewGetCharactersTool(st))
	register(tools.NewSeriesOutlineTool(st))

	// --- Register prompts ---

	preflight := prompts.NewScenePreflightPrompt()
	s.AddPrompt(preflight.Definition(), preflight.Handle)

	audit := prompts.NewKnowledgeAuditPrompt()
	s.AddPrompt(audit.Definition(), audit.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(st)
	s.AddResource(resourceHandler.SeriesResource(), resourceHandler.HandleSeries)

	logger.Debug("mcp server ready", zap.Strings("tools", app.Tools))
	return app, cleanup, nil
}

// noop is the cleanup returned when nothing was opened.
func noop() {}

// instrument logs every tool call at debug level.
func instrument(logger *zap.Logger, name string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := next(ctx, req)

		fields := []zap.Field{
			zap.String("tool", name),
			zap.Duration("duration", time.Since(start)),
		}
		switch {
		case err != nil:
			logger.Error("tool call failed", append(fields, zap.Error(err))...)
		case res != nil && res.IsError:
			logger.Debug("tool call rejected", fields...)
		default:
			logger.Debug("tool call", fields...)
		}
		return res, err
	}
}

// serverInstructions returns the system instructions that tell the AI
// how to use storykeeper effectively.
func serverInstructions() string {
	return `You have access to storykeeper, a character knowledge tracker for multi-book fiction series.

## WHAT IT DOES
storykeeper records what each character knows, suspects, doesn't know, or has forgotten
at specific chapters, and checks drafted scenes against those boundaries. It prevents a
character from mentioning a secret before they learn it in the story.

## SETUP
1. create_series, then create_book for each book (book_number = reading order)
2. create_chapter for each chapter (chapter_number = order inside the book)
3. create_character for each point-of-view character
4. get_series_outline returns every ID you need later

## RECORDING KNOWLEDGE
Call set_character_knowledge_state whenever a scene changes what a character knows.
- knowledge_state: knows, knows_with_protection, suspects, unaware, memory_gap
- Entries are "as of" a chapter. A later entry for the same item supersedes earlier ones
  from that chapter on; chapters before it are unaffected.
- Use unaware explicitly for secrets the character must NOT reveal. Items never recorded
  are not scanned by the validator.
- Set internal_thought_ok=false when the character may think about something but must not
  say it aloud; can_reference_directly=false when they should only hint at it.

## WRITING SCENES
1. get_character_knowledge_state for the POV character at the chapter
2. check_character_can_reference for any sensitive item you plan to use
3. Write the scene
4. validate_scene_against_knowledge with the correct content_type
   (dialogue, internal_thought, narration). Fix every critical or high violation;
   medium warnings mean "be more vague".

## AUDITING
get_character_knowledge_history lists a character's entries in story order.`
}
