// Package memstore provides an in-memory implementation of the
// store.Repository contract. It is the reference backend for semantics and
// the test double used throughout the codebase; nothing it holds survives
// the process.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck-api/internal/domain"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

// Store implements store.Repository over plain maps guarded by a single
// read/write lock. Operations are linearizable; there is no durability.
type Store struct {
	mu      sync.RWMutex
	decks   map[uuid.UUID]domain.Deck
	cards   map[uuid.UUID]domain.Card
	reviews map[uuid.UUID][]domain.Review
}

// Ensure Store implements store.Repository
var _ store.Repository = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		decks:   make(map[uuid.UUID]domain.Deck),
		cards:   make(map[uuid.UUID]domain.Card),
		reviews: make(map[uuid.UUID][]domain.Review),
	}
}

// CreateDeck implements store.Repository.CreateDeck.
func (s *Store) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		return nil, store.NewStoreError("deck", "create", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.decks {
		if strings.EqualFold(d.Name, name) {
			return nil, store.ErrDeckNameExists
		}
	}
	s.decks[deck.ID] = *deck

	return deck, nil
}

// GetDeck implements store.Repository.GetDeck.
func (s *Store) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck, ok := s.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return &deck, nil
}

// ListDecks implements store.Repository.ListDecks.
func (s *Store) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decks := make([]domain.Deck, 0, len(s.decks))
	for _, d := range s.decks {
		decks = append(decks, d)
	}
	return decks, nil
}

// DeleteDeck implements store.Repository.DeleteDeck. The cascade is
// two-phase inside one critical section: collect the deck's card IDs, then
// remove the cards and their reviews.
func (s *Store) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decks[id]; !ok {
		return store.ErrDeckNotFound
	}
	delete(s.decks, id)

	var orphaned []uuid.UUID
	for cid, c := range s.cards {
		if c.DeckID == id {
			orphaned = append(orphaned, cid)
		}
	}
	for _, cid := range orphaned {
		delete(s.cards, cid)
		delete(s.reviews, cid)
	}

	return nil
}

// AddCard implements store.Repository.AddCard.
func (s *Store) AddCard(ctx context.Context, deckID uuid.UUID, front, back, hint string, tags []string) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decks[deckID]; !ok {
		return nil, store.ErrDeckNotFound
	}

	card, err := domain.NewCard(deckID, front, back)
	if err != nil {
		return nil, store.NewStoreError("card", "create", err)
	}
	card.Hint = hint
	card.Tags = append([]string{}, tags...)

	s.cards[card.ID] = *card
	return card, nil
}

// GetCard implements store.Repository.GetCard.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return &card, nil
}

// ListCards implements store.Repository.ListCards.
func (s *Store) ListCards(ctx context.Context, deckID *uuid.UUID) ([]domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make([]domain.Card, 0, len(s.cards))
	for _, c := range s.cards {
		if deckID != nil && c.DeckID != *deckID {
			continue
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// UpdateCard implements store.Repository.UpdateCard.
func (s *Store) UpdateCard(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[card.ID]; !ok {
		return nil, store.ErrCardNotFound
	}
	s.cards[card.ID] = *card

	updated := *card
	return &updated, nil
}

// DeleteCard implements store.Repository.DeleteCard.
func (s *Store) DeleteCard(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(s.cards, id)
	delete(s.reviews, id)

	return nil
}

// SetSuspended implements store.Repository.SetSuspended.
func (s *Store) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	card.Suspended = suspended
	s.cards[id] = card

	return nil
}

// InsertReview implements store.Repository.InsertReview. The referenced
// card is not checked; see the contract.
func (s *Store) InsertReview(ctx context.Context, review *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviews[review.CardID] = append(s.reviews[review.CardID], *review)
	return nil
}

// ListReviewsForCard implements store.Repository.ListReviewsForCard.
func (s *Store) ListReviewsForCard(ctx context.Context, cardID uuid.UUID) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := append([]domain.Review{}, s.reviews[cardID]...)
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].ReviewedAt.Before(reviews[j].ReviewedAt)
	})
	return reviews, nil
}

// Close implements store.Repository.Close. It is a no-op for the in-memory
// backend.
func (s *Store) Close() error {
	return nil
}
