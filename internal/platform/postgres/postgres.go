// Package postgres provides a store.Repository implementation backed by
// PostgreSQL through the pgx stdlib driver. Schema management uses embedded
// goose migrations; atomicity and cascade deletes are delegated to the
// database engine.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/flashdeck-api/internal/domain"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint
// violations, used to map duplicate deck names to ErrDeckNameExists.
const uniqueViolationCode = "23505"

// Store implements store.Repository over a PostgreSQL database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure Store implements store.Repository
var _ store.Repository = (*Store)(nil)

// Open connects to the database at url, verifies connectivity, and applies
// any pending migrations. If logger is nil, the default logger is used.
func Open(url string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("%w: opening postgres connection: %v", store.ErrStorage, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to postgres: %v", store.ErrStorage, err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrating postgres schema: %v", store.ErrStorage, err)
	}

	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_store")),
	}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateDeck implements store.Repository.CreateDeck. Uniqueness is enforced
// by the case-insensitive unique index; a violation maps to
// ErrDeckNameExists.
func (s *Store) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		return nil, store.NewStoreError("deck", "create", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO decks (id, name, created_at) VALUES ($1, $2, $3)`,
		deck.ID, deck.Name, deck.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDeckNameExists
		}
		return nil, fmt.Errorf("%w: inserting deck: %v", store.ErrStorage, err)
	}

	return deck, nil
}

// GetDeck implements store.Repository.GetDeck.
func (s *Store) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id::text, name, created_at FROM decks WHERE id = $1`, id)
	return scanDeck(row)
}

// ListDecks implements store.Repository.ListDecks.
func (s *Store) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id::text, name, created_at FROM decks ORDER BY created_at ASC`)
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

// DeleteDeck implements store.Repository.DeleteDeck. Cards and reviews
// cascade through the foreign keys.
func (s *Store) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
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
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM decks WHERE id = $1)`, deckID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: checking deck: %v", store.ErrStorage, err)
	}
	if !exists {
		return nil, store.ErrDeckNotFound
	}

	card, err := domain.NewCard(deckID, front, back)
	if err != nil {
		return nil, store.NewStoreError("card", "create", err)
	}
	card.Hint = hint
	card.Tags = append([]string{}, tags...)

	tagsJSON, err := json.Marshal(card.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding tags: %v", store.ErrStorage, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cards (
			id, deck_id, front, back, hint, tags,
			reps, interval_days, ef, due_at, last_grade, last_reviewed_at,
			suspended, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		card.ID, card.DeckID, card.Front, card.Back, nullString(card.Hint), string(tagsJSON),
		card.Reps, card.IntervalDays, card.EF, card.DueAt, nullGrade(card.LastGrade),
		nullTime(card.LastReviewedAt), card.Suspended, card.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: inserting card: %v", store.ErrStorage, err)
	}

	return card, nil
}

// GetCard implements store.Repository.GetCard.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx, selectCardColumns+` WHERE id = $1`, id)
	return scanCard(row)
}

// ListCards implements store.Repository.ListCards.
func (s *Store) ListCards(ctx context.Context, deckID *uuid.UUID) ([]domain.Card, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if deckID != nil {
		rows, err = s.db.QueryContext(ctx, selectCardColumns+` WHERE deck_id = $1`, *deckID)
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
	tagsJSON, err := json.Marshal(card.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding tags: %v", store.ErrStorage, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE cards SET
			deck_id = $1, front = $2, back = $3, hint = $4, tags = $5,
			reps = $6, interval_days = $7, ef = $8, due_at = $9,
			last_grade = $10, last_reviewed_at = $11, suspended = $12
		WHERE id = $13`,
		card.DeckID, card.Front, card.Back, nullString(card.Hint), string(tagsJSON),
		card.Reps, card.IntervalDays, card.EF, card.DueAt,
		nullGrade(card.LastGrade), nullTime(card.LastReviewedAt), card.Suspended,
		card.ID)
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

// DeleteCard implements store.Repository.DeleteCard.
func (s *Store) DeleteCard(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
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
		`UPDATE cards SET suspended = $1 WHERE id = $2`, suspended, id)
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
		VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.CardID, int(review.Grade), review.ReviewedAt,
		review.IntervalApplied, review.EFAfter)
	if err != nil {
		return fmt.Errorf("%w: inserting review: %v", store.ErrStorage, err)
	}
	return nil
}

// ListReviewsForCard implements store.Repository.ListReviewsForCard.
func (s *Store) ListReviewsForCard(ctx context.Context, cardID uuid.UUID) ([]domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, card_id::text, grade, reviewed_at, interval_applied, ef_after
		FROM reviews WHERE card_id = $1 ORDER BY reviewed_at ASC`, cardID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing reviews: %v", store.ErrStorage, err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var (
			r       domain.Review
			id, cid string
			grade   int
		)
		if err := rows.Scan(&id, &cid, &grade, &r.ReviewedAt, &r.IntervalApplied, &r.EFAfter); err != nil {
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
	SELECT id::text, deck_id::text, front, back, hint, tags::text,
	       reps, interval_days, ef, due_at, last_grade, last_reviewed_at,
	       suspended, created_at
	FROM cards`

func scanDeck(row scanner) (*domain.Deck, error) {
	var (
		deck domain.Deck
		id   string
	)
	err := row.Scan(&id, &deck.Name, &deck.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrDeckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanning deck: %v", store.ErrStorage, err)
	}
	if deck.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	return &deck, nil
}

func scanCard(row scanner) (*domain.Card, error) {
	var (
		card           domain.Card
		id, deckID     string
		hint           sql.NullString
		tagsJSON       string
		lastGrade      sql.NullInt64
		lastReviewedAt sql.NullTime
	)
	err := row.Scan(&id, &deckID, &card.Front, &card.Back, &hint, &tagsJSON,
		&card.Reps, &card.IntervalDays, &card.EF, &card.DueAt, &lastGrade, &lastReviewedAt,
		&card.Suspended, &card.CreatedAt)
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
	if err := json.Unmarshal([]byte(tagsJSON), &card.Tags); err != nil {
		return nil, fmt.Errorf("%w: bad tags column %q: %v", store.ErrInvalid, tagsJSON, err)
	}
	if lastGrade.Valid {
		g := domain.Grade(lastGrade.Int64)
		if !g.IsValid() {
			return nil, fmt.Errorf("%w: persisted grade %d", store.ErrInvalid, lastGrade.Int64)
		}
		card.LastGrade = &g
	}
	if lastReviewedAt.Valid {
		t := lastReviewedAt.Time
		card.LastReviewedAt = &t
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

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullGrade(g *domain.Grade) sql.NullInt64 {
	if g == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*g), Valid: true}
}
