package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
)

// ─── Types ───────────────────────────────────────────────────────────────────

// Series is a multi-book story universe.
type Series struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Book is one volume of a series. BookNumber is its reading-order ordinal.
type Book struct {
	ID         int64  `json:"id"`
	SeriesID   int64  `json:"series_id"`
	Title      string `json:"title"`
	BookNumber int    `json:"book_number"`
	CreatedAt  string `json:"created_at"`
}

// Chapter is one chapter of a book. ChapterNumber orders it inside the book.
type Chapter struct {
	ID            int64  `json:"id"`
	BookID        int64  `json:"book_id"`
	ChapterNumber int    `json:"chapter_number"`
	Title         string `json:"title,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// Character is a person tracked by the knowledge ledger.
type Character struct {
	ID          int64  `json:"id"`
	SeriesID    int64  `json:"series_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// BookOutline is a book with its chapters in reading order.
type BookOutline struct {
	Book
	Chapters []Chapter `json:"chapters"`
}

// SeriesOutline is a series with its books and characters.
type SeriesOutline struct {
	Series
	Books      []BookOutline `json:"books"`
	Characters []Character   `json:"characters"`
}

// ─── Create ──────────────────────────────────────────────────────────────────

// CreateSeries registers a new series.
func (s *Store) CreateSeries(ctx context.Context, title, description string) (*Series, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO series (title, description) VALUES (?, ?)`,
		title, nullableString(description),
	)
	if err != nil {
		return nil, fmt.Errorf("create series: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetSeries(ctx, id)
}

// CreateBook adds a book to a series. The series must exist.
func (s *Store) CreateBook(ctx context.Context, seriesID int64, title string, bookNumber int) (*Book, error) {
	if err := s.requireExists(ctx, knowledge.EntitySeries, seriesID); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO books (series_id, title, book_number) VALUES (?, ?, ?)`,
		seriesID, title, bookNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetBook(ctx, id)
}

// CreateChapter adds a chapter to a book. The book must exist.
func (s *Store) CreateChapter(ctx context.Context, bookID int64, chapterNumber int, title string) (*Chapter, error) {
	if err := s.requireExists(ctx, knowledge.EntityBook, bookID); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chapters (book_id, chapter_number, title) VALUES (?, ?, ?)`,
		bookID, chapterNumber, nullableString(title),
	)
	if err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetChapter(ctx, id)
}

// CreateCharacter adds a character to a series. The series must exist.
func (s *Store) CreateCharacter(ctx context.Context, seriesID int64, name, description string) (*Character, error) {
	if err := s.requireExists(ctx, knowledge.EntitySeries, seriesID); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO characters (series_id, name, description) VALUES (?, ?, ?)`,
		seriesID, name, nullableString(description),
	)
	if err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetCharacter(ctx, id)
}

// ─── Get ─────────────────────────────────────────────────────────────────────

// GetSeries retrieves a series by ID.
func (s *Store) GetSeries(ctx context.Context, id int64) (*Series, error) {
	var (
		sr   Series
		desc sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, created_at FROM series WHERE id = ?`, id,
	).Scan(&sr.ID, &sr.Title, &desc, &sr.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, knowledge.EntitySeries, id)
	}
	sr.Description = desc.String
	return &sr, nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id int64) (*Book, error) {
	var b Book
	err := s.db.QueryRowContext(ctx,
		`SELECT id, series_id, title, book_number, created_at FROM books WHERE id = ?`, id,
	).Scan(&b.ID, &b.SeriesID, &b.Title, &b.BookNumber, &b.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, knowledge.EntityBook, id)
	}
	return &b, nil
}

// GetChapter retrieves a chapter by ID.
func (s *Store) GetChapter(ctx context.Context, id int64) (*Chapter, error) {
	var (
		c     Chapter
		title sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, book_id, chapter_number, title, created_at FROM chapters WHERE id = ?`, id,
	).Scan(&c.ID, &c.BookID, &c.ChapterNumber, &title, &c.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, knowledge.EntityChapter, id)
	}
	c.Title = title.String
	return &c, nil
}

// GetCharacter retrieves a character by ID.
func (s *Store) GetCharacter(ctx context.Context, id int64) (*Character, error) {
	var (
		c    Character
		desc sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, series_id, name, description, created_at FROM characters WHERE id = ?`, id,
	).Scan(&c.ID, &c.SeriesID, &c.Name, &desc, &c.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, knowledge.EntityCharacter, id)
	}
	c.Description = desc.String
	return &c, nil
}

// ─── Lists ───────────────────────────────────────────────────────────────────

// ListSeries returns every series ordered by ID.
func (s *Store) ListSeries(ctx context.Context) ([]Series, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, created_at FROM series ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Series
	for rows.Next() {
		var (
			sr   Series
			desc sql.NullString
		)
		if err := rows.Scan(&sr.ID, &sr.Title, &desc, &sr.CreatedAt); err != nil {
			return nil, err
		}
		sr.Description = desc.String
		out = append(out, sr)
	}
	return out, rows.Err()
}

// ListCharacters returns the characters of a series ordered by name.
func (s *Store) ListCharacters(ctx context.Context, seriesID int64) ([]Character, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, series_id, name, description, created_at
		 FROM characters WHERE series_id = ? ORDER BY name, id`, seriesID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []Character{}
	for rows.Next() {
		var (
			c    Character
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.SeriesID, &c.Name, &desc, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Description = desc.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// Outline returns a series with its books, chapters and characters, all in
// reading order.
func (s *Store) Outline(ctx context.Context, seriesID int64) (*SeriesOutline, error) {
	sr, err := s.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	out := &SeriesOutline{Series: *sr, Books: []BookOutline{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.series_id, b.title, b.book_number, b.created_at,
		        c.id, c.chapter_number, c.title, c.created_at
		 FROM books b
		 LEFT JOIN chapters c ON c.book_id = b.id
		 WHERE b.series_id = ?
		 ORDER BY b.book_number, c.chapter_number`, seriesID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			b         Book
			chID      sql.NullInt64
			chNumber  sql.NullInt64
			chTitle   sql.NullString
			chCreated sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.SeriesID, &b.Title, &b.BookNumber, &b.CreatedAt,
			&chID, &chNumber, &chTitle, &chCreated); err != nil {
			return nil, err
		}
		if n := len(out.Books); n == 0 || out.Books[n-1].ID != b.ID {
			out.Books = append(out.Books, BookOutline{Book: b, Chapters: []Chapter{}})
		}
		if chID.Valid {
			last := &out.Books[len(out.Books)-1]
			last.Chapters = append(last.Chapters, Chapter{
				ID:            chID.Int64,
				BookID:        b.ID,
				ChapterNumber: int(chNumber.Int64),
				Title:         chTitle.String,
				CreatedAt:     chCreated.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chars, err := s.ListCharacters(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	out.Characters = chars
	return out, nil
}

// ─── knowledge.Registry ──────────────────────────────────────────────────────

var existsQueries = map[knowledge.EntityKind]string{
	knowledge.EntitySeries:    `SELECT 1 FROM series WHERE id = ?`,
	knowledge.EntityBook:      `SELECT 1 FROM books WHERE id = ?`,
	knowledge.EntityChapter:   `SELECT 1 FROM chapters WHERE id = ?`,
	knowledge.EntityCharacter: `SELECT 1 FROM characters WHERE id = ?`,
}

// Exists reports whether an entity of the given kind exists.
func (s *Store) Exists(ctx context.Context, kind knowledge.EntityKind, id int64) (bool, error) {
	query, ok := existsQueries[kind]
	if !ok {
		return false, fmt.Errorf("unknown entity kind %q", kind)
	}
	var one int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

var seriesQueries = map[knowledge.EntityKind]string{
	knowledge.EntitySeries:    `SELECT id FROM series WHERE id = ?`,
	knowledge.EntityBook:      `SELECT series_id FROM books WHERE id = ?`,
	knowledge.EntityChapter:   `SELECT b.series_id FROM chapters c JOIN books b ON b.id = c.book_id WHERE c.id = ?`,
	knowledge.EntityCharacter: `SELECT series_id FROM characters WHERE id = ?`,
}

// SeriesOf returns the id of the series an entity belongs to.
func (s *Store) SeriesOf(ctx context.Context, kind knowledge.EntityKind, id int64) (int64, error) {
	query, ok := seriesQueries[kind]
	if !ok {
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}
	var seriesID int64
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&seriesID); err != nil {
		return 0, notFoundOr(err, kind, id)
	}
	return seriesID, nil
}

// ChapterPosition resolves a chapter to its book and reading-order ordinals.
func (s *Store) ChapterPosition(ctx context.Context, chapterID int64) (knowledge.StoryPosition, error) {
	var pos knowledge.StoryPosition
	err := s.db.QueryRowContext(ctx,
		`SELECT b.id, c.id, b.book_number, c.chapter_number
		 FROM chapters c JOIN books b ON b.id = c.book_id
		 WHERE c.id = ?`, chapterID,
	).Scan(&pos.BookID, &pos.ChapterID, &pos.BookNumber, &pos.ChapterNumber)
	if err != nil {
		return knowledge.StoryPosition{}, notFoundOr(err, knowledge.EntityChapter, chapterID)
	}
	return pos, nil
}

func (s *Store) requireExists(ctx context.Context, kind knowledge.EntityKind, id int64) error {
	ok, err := s.Exists(ctx, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return knowledge.NotFound(kind, id)
	}
	return nil
}

// notFoundOr maps sql.ErrNoRows to a knowledge.NotFoundError.
func notFoundOr(err error, kind knowledge.EntityKind, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return knowledge.NotFound(kind, id)
	}
	return err
}
