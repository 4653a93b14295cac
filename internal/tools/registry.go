package tools

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
	"github.com/HendryAvila/storykeeper/internal/store"
)

// Tool names of the series registry operations.
const (
	CreateSeriesName    = "create_series"
	CreateBookName      = "create_book"
	CreateChapterName   = "create_chapter"
	CreateCharacterName = "create_character"
	GetCharactersName   = "get_characters"
	SeriesOutlineName   = "get_series_outline"
)

func required(field string) error {
	return &knowledge.ValidationInputError{Field: field, Message: "is required"}
}

func positive(field string) error {
	return &knowledge.ValidationInputError{Field: field, Message: "must be a positive number"}
}

// ─── CreateSeriesTool ────────────────────────────────────────────────────────

// CreateSeriesTool handles the create_series MCP tool.
type CreateSeriesTool struct {
	store *store.Store
}

// NewCreateSeriesTool creates a CreateSeriesTool.
func NewCreateSeriesTool(s *store.Store) *CreateSeriesTool {
	return &CreateSeriesTool{store: s}
}

// Definition returns the MCP tool definition for create_series.
func (t *CreateSeriesTool) Definition() mcp.Tool {
	return mcp.NewTool(CreateSeriesName,
		mcp.WithDescription("Create a new book series. Books, chapters and characters all belong to a series."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Series title")),
		mcp.WithString("description", mcp.Description("Short description of the series")),
	)
}

// Handle processes the create_series tool call.
func (t *CreateSeriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	title := strings.TrimSpace(req.GetString("title", ""))
	if title == "" {
		return finish(CreateSeriesName, start, nil, required("title"))
	}
	sr, err := t.store.CreateSeries(ctx, title, req.GetString("description", ""))
	return finish(CreateSeriesName, start, sr, err)
}

// ─── CreateBookTool ──────────────────────────────────────────────────────────

// CreateBookTool handles the create_book MCP tool.
type CreateBookTool struct {
	store *store.Store
}

// NewCreateBookTool creates a CreateBookTool.
func NewCreateBookTool(s *store.Store) *CreateBookTool {
	return &CreateBookTool{store: s}
}

// Definition returns the MCP tool definition for create_book.
func (t *CreateBookTool) Definition() mcp.Tool {
	return mcp.NewTool(CreateBookName,
		mcp.WithDescription("Add a book to a series. book_number sets its place in reading order and must be unique within the series."),
		mcp.WithNumber("series_id", mcp.Required(), mcp.Description("Series ID")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Book title")),
		mcp.WithNumber("book_number", mcp.Required(), mcp.Description("Position of the book in the series (1, 2, ...)")),
	)
}

// Handle processes the create_book tool call.
func (t *CreateBookTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	title := strings.TrimSpace(req.GetString("title", ""))
	number := intArg(req, "book_number", 0)
	switch {
	case title == "":
		return finish(CreateBookName, start, nil, required("title"))
	case number <= 0:
		return finish(CreateBookName, start, nil, positive("book_number"))
	}
	seriesID, err := idArg(req, "series_id")
	if err != nil {
		return finish(CreateBookName, start, nil, err)
	}
	b, err := t.store.CreateBook(ctx, seriesID, title, number)
	return finish(CreateBookName, start, b, err)
}

// ─── CreateChapterTool ───────────────────────────────────────────────────────

// CreateChapterTool handles the create_chapter MCP tool.
type CreateChapterTool struct {
	store *store.Store
}

// NewCreateChapterTool creates a CreateChapterTool.
func NewCreateChapterTool(s *store.Store) *CreateChapterTool {
	return &CreateChapterTool{store: s}
}

// Definition returns the MCP tool definition for create_chapter.
func (t *CreateChapterTool) Definition() mcp.Tool {
	return mcp.NewTool(CreateChapterName,
		mcp.WithDescription("Add a chapter to a book. chapter_number orders it inside the book and must be unique there."),
		mcp.WithNumber("book_id", mcp.Required(), mcp.Description("Book ID")),
		mcp.WithNumber("chapter_number", mcp.Required(), mcp.Description("Position of the chapter in the book (1, 2, ...)")),
		mcp.WithString("title", mcp.Description("Chapter title")),
	)
}

// Handle processes the create_chapter tool call.
func (t *CreateChapterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	number := intArg(req, "chapter_number", 0)
	if number <= 0 {
		return finish(CreateChapterName, start, nil, positive("chapter_number"))
	}
	bookID, err := idArg(req, "book_id")
	if err != nil {
		return finish(CreateChapterName, start, nil, err)
	}
	c, err := t.store.CreateChapter(ctx, bookID, number, req.GetString("title", ""))
	return finish(CreateChapterName, start, c, err)
}

// ─── CreateCharacterTool ─────────────────────────────────────────────────────

// CreateCharacterTool handles the create_character MCP tool.
type CreateCharacterTool struct {
	store *store.Store
}

// NewCreateCharacterTool creates a CreateCharacterTool.
func NewCreateCharacterTool(s *store.Store) *CreateCharacterTool {
	return &CreateCharacterTool{store: s}
}

// Definition returns the MCP tool definition for create_character.
func (t *CreateCharacterTool) Definition() mcp.Tool {
	return mcp.NewTool(CreateCharacterName,
		mcp.WithDescription("Add a character to a series so their knowledge can be tracked."),
		mcp.WithNumber("series_id", mcp.Required(), mcp.Description("Series ID")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Character name")),
		mcp.WithString("description", mcp.Description("Who the character is")),
	)
}

// Handle processes the create_character tool call.
func (t *CreateCharacterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return finish(CreateCharacterName, start, nil, required("name"))
	}
	seriesID, err := idArg(req, "series_id")
	if err != nil {
		return finish(CreateCharacterName, start, nil, err)
	}
	c, err := t.store.CreateCharacter(ctx, seriesID, name, req.GetString("description", ""))
	return finish(CreateCharacterName, start, c, err)
}

// ─── GetCharactersTool ───────────────────────────────────────────────────────

// GetCharactersTool handles the get_characters MCP tool.
type GetCharactersTool struct {
	store *store.Store
}

// NewGetCharactersTool creates a GetCharactersTool.
func NewGetCharactersTool(s *store.Store) *GetCharactersTool {
	return &GetCharactersTool{store: s}
}

// Definition returns the MCP tool definition for get_characters.
func (t *GetCharactersTool) Definition() mcp.Tool {
	return mcp.NewTool(GetCharactersName,
		mcp.WithDescription("List the characters of a series with their IDs."),
		mcp.WithNumber("series_id", mcp.Required(), mcp.Description("Series ID")),
	)
}

// Handle processes the get_characters tool call.
func (t *GetCharactersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	seriesID, err := idArg(req, "series_id")
	if err != nil {
		return finish(GetCharactersName, start, nil, err)
	}
	if _, err := t.store.GetSeries(ctx, seriesID); err != nil {
		return finish(GetCharactersName, start, nil, err)
	}
	chars, err := t.store.ListCharacters(ctx, seriesID)
	return finish(GetCharactersName, start, chars, err)
}

// ─── SeriesOutlineTool ───────────────────────────────────────────────────────

// SeriesOutlineTool handles the get_series_outline MCP tool.
type SeriesOutlineTool struct {
	store *store.Store
}

// NewSeriesOutlineTool creates a SeriesOutlineTool.
func NewSeriesOutlineTool(s *store.Store) *SeriesOutlineTool {
	return &SeriesOutlineTool{store: s}
}

// Definition returns the MCP tool definition for get_series_outline.
func (t *SeriesOutlineTool) Definition() mcp.Tool {
	return mcp.NewTool(SeriesOutlineName,
		mcp.WithDescription(
			"Get a series with its books, chapters and characters in reading order. "+
				"Use it to look up the book_id and chapter_id values the knowledge tools need.",
		),
		mcp.WithNumber("series_id", mcp.Required(), mcp.Description("Series ID")),
	)
}

// Handle processes the get_series_outline tool call.
func (t *SeriesOutlineTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	seriesID, err := idArg(req, "series_id")
	if err != nil {
		return finish(SeriesOutlineName, start, nil, err)
	}
	out, err := t.store.Outline(ctx, seriesID)
	return finish(SeriesOutlineName, start, out, err)
}
