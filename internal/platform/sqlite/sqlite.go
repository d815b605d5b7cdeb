// Package sqlite provides a store.Repository implementation backed by an
// embedded SQLite database via the pure-Go modernc.org/sqlite driver. It is
// the zero-dependency relational alternative to the snapshot filestore;
// atomicity and cascade deletes are delegated to the engine.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck-api/internal/domain"
	"github.com/phrazzld/flashdeck-api/internal/store"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// schema is applied idempotently on every open; it mirrors the snapshot
// data model. Grades are INTEGER ordinals and timestamps RFC 3339 text.
const schema = `
CREATE TABLE IF NOT EXISTS decks (
  id          TEXT PRIMARY KEY,
  name        TEXT NOT NULL UNIQUE,
  created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
  id                TEXT PRIMARY KEY,
  deck_id           TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
  front             TEXT NOT NULL,
  back              TEXT NOT NULL,
  hint              TEXT,
  tags              TEXT NOT NULL DEFAULT '[]',
  reps              INTEGER NOT NULL DEFAULT 0,
  interval_days     INTEGER NOT NULL DEFAULT 0,
  ef                REAL    NOT NULL DEFAULT 2.5,
  due_at            TEXT    NOT NULL,
  last_grade        INTEGER,
  last_reviewed_at  TEXT,
  suspended         INTEGER NOT NULL DEFAULT 0,
  created_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reviews (
  id               TEXT PRIMARY KEY,
  card_id          TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
  grade            INTEGER NOT NULL,
  reviewed_at      TEXT NOT NULL,
  interval_applied INTEGER NOT NULL,
  ef_after         REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cards_deck_due ON cards (deck_id, due_at);
CREATE INDEX IF NOT EXISTS idx_reviews_card_time ON reviews (card_id, reviewed_at);
`

// Store implements store.Repository over an SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure Store implements store.Repository
var _ store.Repository = (*Store)(nil)

// Open opens (or creates) the database at path and ensures the schema is in
// place. Foreign-key enforcement is enabled per connection through the DSN
// so cascade deletes work across the pool. If logger is nil, the default
// logger is used.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening sqlite database: %v", store.ErrStorage, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to sqlite database: %v", store.ErrStorage, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: applying sqlite schema: %v", store.ErrStorage, err)
	}

	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_store")),
	}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q: %v", store.ErrInvalid, s, err)
	}
	return t, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("%w: encoding tags: %v", store.ErrStorage, err)
	}
	return string(data), nil
}

func decodeTags(raw string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("%w: bad tags column %q: %v", store.ErrInvalid, raw, err)
	}
	return tags, nil
}

// CreateDeck implements store.Repository.CreateDeck.
func (s *Store) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		return nil, store.NewStoreError("deck", "create", err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM decks WHERE lower(name) = lower(?) LIMIT 1`, name).Scan(&exists)
	switch {
	case err == nil:
		return nil, store.ErrDeckNameExists
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%w: checking deck name: %v", store.ErrStorage, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO decks (id, name, created_at) VALUES (?, ?, ?)`,
		deck.ID.String(), deck.Name, formatTime(deck.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, store.ErrDeckNameExists
		}
		return nil, fmt.Errorf("%w: inserting deck: %v", store.ErrStorage, err)
	}

	return deck, nil
}

// GetDeck implements store.Repository.GetDeck.
func (s *Store) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM decks WHERE id = ?`, id.String())
	return scanDeck(row)
}

// ListDecks implements store.Repository.ListDecks.
func (s *Store) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM decks ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing decks: %v", store.ErrStorage, err)
	}
	defer rows.Close()

	decks := []domain.Deck{}
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, *deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing decks: %v", store.ErrStorage, err)
	}
	return decks, nil
}

// DeleteDeck implements store.Repository.DeleteDeck. Cascade deletion of
// cards and reviews is performed by the engine through the foreign keys.
func (s *Store) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("%w: deleting deck: %v", store.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: deleting deck: %v", store.ErrStorage, err)
	}
	if n == 0 {
		return store.ErrDeckNotFound
	}
	return nil
}

// AddCard implements store.Repository.AddCard.
func (s *Store) AddCard(ctx context.Context, deckID uuid.UUID, front, back, hint string, tags []string) (*domain.Card, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM decks WHERE id = ? LIMIT 1`, deckID.String()).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrDeckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: checking deck: %v", store.ErrStorage, err)
	}

	card, err := domain.NewCard(deckID, front, back)
	if err != nil {
		return nil, store.NewStoreError("card", "create", err)
	}
	card.Hint = hint
	card.Tags = append([]string{}, tags...)

	if err := s.insertCard(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *Store) insertCard(ctx context.Context, card *domain.Card) error {
	tags, err := encodeTags(card.Tags)
	if err != nil {
		return err
	}

	var lastGrade any
	if card.LastGrade != nil {
		lastGrade = int(*card.LastGrade)
	}
	var lastReviewedAt any
	if card.LastReviewedAt != nil {
		lastReviewedAt = formatTime(*card.LastReviewedAt)
	}
	var hint any
	if card.Hint != "" {
		hint = card.Hint
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cards (
			id, deck_id, front, back, hint, tags,
			reps, interval_days, ef, due_at, last_grade, last_reviewed_at,
			suspended, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID.String(), card.DeckID.String(), card.Front, card.Back, hint, tags,
		card.Reps, card.IntervalDays, card.EF, formatTime(card.DueAt), lastGrade, lastReviewedAt,
		boolToInt(card.Suspended), formatTime(card.CreatedAt))
	if err != nil {
		return fmt.Errorf("%w: inserting card: %v", store.ErrStorage, err)
	}
	return nil
}

// GetCard implements store.Repository.GetCard.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx, selectCardColumns+` WHERE id = ?`, id.String())
	return scanCard(row)
}

// ListCards implements store.Repository.ListCards.
func (s *Store) ListCards(ctx context.Context, deckID *uuid.UUID) ([]domain.Card, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if deckID != nil {
		rows, err = s.db.QueryContext(ctx, selectCardColumns+` WHERE deck_id = ?`, deckID.String())
	} else {
		rows, err = s.db.QueryContext(ctx, selectCardColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: listing cards: %v", store.ErrStorage, err)
	}
	defer rows.Close()

	cards := []domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing cards: %v", store.ErrStorage, err)
	}
	return cards, nil
}

// UpdateCard implements store.Repository.UpdateCard.
func (s *Store) UpdateCard(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	tags, err := encodeTags(card.Tags)
	if err != nil {
		return nil, err
	}

	var lastGrade any
	if card.LastGrade != nil {
		lastGrade = int(*card.LastGrade)
	}
	var lastReviewedAt any
	if card.LastReviewedAt != nil {
		lastReviewedAt = formatTime(*card.LastReviewedAt)
	}
	var hint any
	if card.Hint != "" {
		hint = card.Hint
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE cards SET
			deck_id = ?, front = ?, back = ?, hint = ?, tags = ?,
			reps = ?, interval_days = ?, ef = ?, due_at = ?,
			last_grade = ?, last_reviewed_at = ?, suspended = ?
		WHERE id = ?`,
		card.DeckID.String(), card.Front, card.Back, hint, tags,
		card.Reps, card.IntervalDays, card.EF, formatTime(card.DueAt),
		lastGrade, lastReviewedAt, boolToInt(card.Suspended),
		card.ID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: updating card: %v", store.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: updating card: %v", store.ErrStorage, err)
	}
	if n == 0 {
		return nil, store.ErrCardNotFound
	}

	updated := *card
	return &updated, nil
}

// DeleteCard implements store.Repository.DeleteCard. Reviews cascade via
// the foreign key.
func (s *Store) DeleteCard(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("%w: deleting card: %v", store.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: deleting card: %v", store.ErrStorage, err)
	}
	if n == 0 {
		return store.ErrCardNotFound
	}
	return nil
}

// SetSuspended implements store.Repository.SetSuspended.
func (s *Store) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cards SET suspended = ? WHERE id = ?`, boolToInt(suspended), id.String())
	if err != nil {
		return fmt.Errorf("%w: suspending card: %v", store.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: suspending card: %v", store.ErrStorage, err)
	}
	if n == 0 {
		return store.ErrCardNotFound
	}
	return nil
}

// InsertReview implements store.Repository.InsertReview.
func (s *Store) InsertReview(ctx context.Context, review *domain.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, card_id, grade, reviewed_at, interval_applied, ef_after)
		VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID.String(), review.CardID.String(), int(review.Grade),
		formatTime(review.ReviewedAt), review.IntervalApplied, review.EFAfter)
	if err != nil {
		return fmt.Errorf("%w: inserting review: %v", store.ErrStorage, err)
	}
	return nil
}

// ListReviewsForCard implements store.Repository.ListReviewsForCard.
func (s *Store) ListReviewsForCard(ctx context.Context, cardID uuid.UUID) ([]domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, card_id, grade, reviewed_at, interval_applied, ef_after
		FROM reviews WHERE card_id = ? ORDER BY reviewed_at ASC`, cardID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: listing reviews: %v", store.ErrStorage, err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var (
			r          domain.Review
			id, cid    string
			grade      int
			reviewedAt string
		)
		if err := rows.Scan(&id, &cid, &grade, &reviewedAt, &r.IntervalApplied, &r.EFAfter); err != nil {
			return nil, fmt.Errorf("%w: scanning review: %v", store.ErrStorage, err)
		}
		if r.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		if r.CardID, err = parseUUID(cid); err != nil {
			return nil, err
		}
		r.Grade = domain.Grade(grade)
		if !r.Grade.IsValid() {
			return nil, fmt.Errorf("%w: persisted grade %d", store.ErrInvalid, grade)
		}
		if r.ReviewedAt, err = parseTime(reviewedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing reviews: %v", store.ErrStorage, err)
	}
	return reviews, nil
}

// scanner abstracts *sql.Row and *sql.Rows for the row mappers.
type scanner interface {
	Scan(dest ...any) error
}

const selectCardColumns = `
	SELECT id, deck_id, front, back, hint, tags,
	       reps, interval_days, ef, due_at, last_grade, last_reviewed_at,
	       suspended, created_at
	FROM cards`

func scanDeck(row scanner) (*domain.Deck, error) {
	var (
		deck          domain.Deck
		id, createdAt string
	)
	err := row.Scan(&id, &deck.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrDeckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanning deck: %v", store.ErrStorage, err)
	}
	if deck.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if deck.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &deck, nil
}

func scanCard(row scanner) (*domain.Card, error) {
	var (
		card             domain.Card
		id, deckID       string
		hint             sql.NullString
		tags             string
		dueAt, createdAt string
		lastGrade        sql.NullInt64
		lastReviewedAt   sql.NullString
		suspended        int
	)
	err := row.Scan(&id, &deckID, &card.Front, &card.Back, &hint, &tags,
		&card.Reps, &card.IntervalDays, &card.EF, &dueAt, &lastGrade, &lastReviewedAt,
		&suspended, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanning card: %v", store.ErrStorage, err)
	}

	if card.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if card.DeckID, err = parseUUID(deckID); err != nil {
		return nil, err
	}
	card.Hint = hint.String
	if card.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	if card.DueAt, err = parseTime(dueAt); err != nil {
		return nil, err
	}
	if lastGrade.Valid {
		g := domain.Grade(lastGrade.Int64)
		if !g.IsValid() {
			return nil, fmt.Errorf("%w: persisted grade %d", store.ErrInvalid, lastGrade.Int64)
		}
		card.LastGrade = &g
	}
	if lastReviewedAt.Valid {
		t, err := parseTime(lastReviewedAt.String)
		if err != nil {
			return nil, err
		}
		card.LastReviewedAt = &t
	}
	card.Suspended = suspended != 0
	if card.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &card, nil
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad identifier %q: %v", store.ErrInvalid, s, err)
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
