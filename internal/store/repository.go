package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck-api/internal/domain"
)

// Repository defines the interface for deck, card, and review persistence.
// Every storage backend implements it with identical semantics, including
// the error kinds defined in this package.
type Repository interface {
	// CreateDeck creates a deck with the given name.
	// Returns ErrDeckNameExists if a deck with the same name already
	// exists; names are compared case-insensitively.
	CreateDeck(ctx context.Context, name string) (*domain.Deck, error)

	// GetDeck retrieves a deck by its ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// ListDecks returns all decks. No ordering is guaranteed; callers sort
	// by creation time when presentation order matters.
	ListDecks(ctx context.Context) ([]domain.Deck, error)

	// DeleteDeck removes a deck and cascades: every card in the deck and
	// every review of those cards is deleted with it.
	// Returns ErrDeckNotFound if the deck does not exist.
	DeleteDeck(ctx context.Context, id uuid.UUID) error

	// AddCard creates a card in the given deck. Tags are stored as given;
	// deduplication and case folding are edit-time concerns, not enforced
	// on insert.
	// Returns ErrDeckNotFound if the deck does not exist.
	AddCard(ctx context.Context, deckID uuid.UUID, front, back, hint string, tags []string) (*domain.Card, error)

	// GetCard retrieves a card by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListCards returns all cards, or only the cards of one deck when
	// deckID is non-nil.
	ListCards(ctx context.Context, deckID *uuid.UUID) ([]domain.Card, error)

	// UpdateCard replaces the stored card with the given one (full-replace
	// semantics, matched by ID).
	// Returns ErrCardNotFound if the card does not exist.
	UpdateCard(ctx context.Context, card *domain.Card) (*domain.Card, error)

	// DeleteCard removes a card and cascades to its reviews.
	// Returns ErrCardNotFound if the card does not exist.
	DeleteCard(ctx context.Context, id uuid.UUID) error

	// SetSuspended marks a card suspended or unsuspended.
	// Returns ErrCardNotFound if the card does not exist.
	SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) error

	// InsertReview appends a review record. The referenced card is not
	// re-validated: a review inserted while a concurrent delete races is
	// tolerated rather than rejected.
	InsertReview(ctx context.Context, review *domain.Review) error

	// ListReviewsForCard returns the card's reviews ordered by reviewed_at
	// ascending. A card with no reviews yields an empty slice, not an
	// error.
	ListReviewsForCard(ctx context.Context, cardID uuid.UUID) ([]domain.Review, error)

	// Close releases any resources held by the backend.
	Close() error
}
