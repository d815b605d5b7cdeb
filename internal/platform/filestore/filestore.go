// Package filestore provides the durable file-backed implementation of the
// store.Repository contract. State lives in an in-memory index; every
// mutation is mirrored to disk as a full JSON snapshot via atomic replace
// plus rotating timestamped backups before the mutation is reported
// successful (write-through, not write-behind).
//
// The store assumes a single process owns the snapshot path and backups
// directory for its lifetime. Multiple processes opening the same paths
// produce undefined last-writer-wins results.
package filestore

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck-api/internal/domain"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

// DefaultMaxBackups is the backup retention used when the configuration
// does not supply one.
const DefaultMaxBackups = 10

// Store implements store.Repository backed by a single JSON snapshot file.
//
// Two locks cooperate on the write path. mu guards the in-memory index:
// reads hold it shared and never touch the filesystem; mutations hold it
// exclusively only long enough to mutate the index. writeMu serializes
// whole save cycles and is acquired before the index is snapshotted, so
// captures reach the disk in capture order and a slow writer can never
// overwrite a newer snapshot with an older image.
type Store struct {
	path       string
	backupsDir string
	maxBackups int
	logger     *slog.Logger

	mu    sync.RWMutex
	state state

	writeMu sync.Mutex
}

// Ensure Store implements store.Repository
var _ store.Repository = (*Store)(nil)

// Open loads the snapshot at path, or initializes an empty store if no file
// exists yet. A fresh store persists immediately, so an opened store always
// has a valid primary file and an existing backups directory.
//
// An existing but unparseable snapshot is a fatal open error (ErrInvalid);
// the store never reinitializes over data it cannot read. maxBackups below
// 1 is raised to 1; zero selects DefaultMaxBackups. If logger is nil, the
// default logger is used.
func Open(path, backupsDir string, maxBackups int, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBackups == 0 {
		maxBackups = DefaultMaxBackups
	}
	if maxBackups < 1 {
		maxBackups = 1
	}

	s := &Store{
		path:       path,
		backupsDir: backupsDir,
		maxBackups: maxBackups,
		logger:     logger.With(slog.String("component", "filestore")),
	}

	now := time.Now().UTC()
	if _, err := os.Stat(path); err == nil {
		img, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		s.state = stateFromImage(img)
		s.state.updatedAt = now
		s.logger.Info("snapshot loaded",
			slog.String("path", path),
			slog.Int("decks", len(s.state.decks)),
			slog.Int("cards", len(s.state.cards)))
	} else if os.IsNotExist(err) {
		s.state = newEmptyState(now)
		if err := writeSnapshot(s.path, s.backupsDir, s.maxBackups, s.state.image()); err != nil {
			return nil, err
		}
		s.logger.Info("initialized empty snapshot", slog.String("path", path))
	} else {
		return nil, store.NewStoreError("snapshot", "open", store.ErrStorage)
	}

	return s, nil
}

// save captures the current index as a snapshot and persists it durably.
// The write lock is taken before the image is captured: capture and write
// form one critical section per writer, so snapshots hit the disk in the
// order they were taken and the file always holds the newest acknowledged
// state. The index lock is still released before the disk I/O, so reads
// and concurrent index mutations are never blocked on the filesystem.
func (s *Store) save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.state.updatedAt = time.Now().UTC()
	img := s.state.image()
	s.mu.Unlock()

	return writeSnapshot(s.path, s.backupsDir, s.maxBackups, img)
}

// CreateDeck implements store.Repository.CreateDeck.
func (s *Store) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		return nil, store.NewStoreError("deck", "create", err)
	}

	s.mu.Lock()
	for _, d := range s.state.decks {
		if strings.EqualFold(d.Name, name) {
			s.mu.Unlock()
			return nil, store.ErrDeckNameExists
		}
	}
	s.state.decks[deck.ID] = *deck
	s.mu.Unlock()

	if err := s.save(); err != nil {
		return nil, err
	}
	return deck, nil
}

// GetDeck implements store.Repository.GetDeck.
func (s *Store) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck, ok := s.state.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return &deck, nil
}

// ListDecks implements store.Repository.ListDecks.
func (s *Store) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decks := make([]domain.Deck, 0, len(s.state.decks))
	for _, d := range s.state.decks {
		decks = append(decks, d)
	}
	return decks, nil
}

// DeleteDeck implements store.Repository.DeleteDeck. The cascade is
// two-phase inside one critical section: collect the deck's card IDs, then
// remove cards and reviews, then persist once.
func (s *Store) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.state.decks[id]; !ok {
		s.mu.Unlock()
		return store.ErrDeckNotFound
	}
	delete(s.state.decks, id)

	var orphaned []uuid.UUID
	for cid, c := range s.state.cards {
		if c.DeckID == id {
			orphaned = append(orphaned, cid)
		}
	}
	for _, cid := range orphaned {
		delete(s.state.cards, cid)
		delete(s.state.reviews, cid)
	}
	s.mu.Unlock()

	return s.save()
}

// AddCard implements store.Repository.AddCard.
func (s *Store) AddCard(ctx context.Context, deckID uuid.UUID, front, back, hint string, tags []string) (*domain.Card, error) {
	card, err := domain.NewCard(deckID, front, back)
	if err != nil {
		return nil, store.NewStoreError("card", "create", err)
	}
	card.Hint = hint
	card.Tags = append([]string{}, tags...)

	s.mu.Lock()
	if _, ok := s.state.decks[deckID]; !ok {
		s.mu.Unlock()
		return nil, store.ErrDeckNotFound
	}
	s.state.cards[card.ID] = *card
	s.mu.Unlock()

	if err := s.save(); err != nil {
		return nil, err
	}
	return card, nil
}

// GetCard implements store.Repository.GetCard.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.state.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return &card, nil
}

// ListCards implements store.Repository.ListCards.
func (s *Store) ListCards(ctx context.Context, deckID *uuid.UUID) ([]domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make([]domain.Card, 0, len(s.state.cards))
	for _, c := range s.state.cards {
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
	if _, ok := s.state.cards[card.ID]; !ok {
		s.mu.Unlock()
		return nil, store.ErrCardNotFound
	}
	s.state.cards[card.ID] = *card
	s.mu.Unlock()

	if err := s.save(); err != nil {
		return nil, err
	}

	updated := *card
	return &updated, nil
}

// DeleteCard implements store.Repository.DeleteCard.
func (s *Store) DeleteCard(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.state.cards[id]; !ok {
		s.mu.Unlock()
		return store.ErrCardNotFound
	}
	delete(s.state.cards, id)
	delete(s.state.reviews, id)
	s.mu.Unlock()

	return s.save()
}

// SetSuspended implements store.Repository.SetSuspended.
func (s *Store) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool) error {
	s.mu.Lock()
	card, ok := s.state.cards[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrCardNotFound
	}
	card.Suspended = suspended
	s.state.cards[id] = card
	s.mu.Unlock()

	return s.save()
}

// InsertReview implements store.Repository.InsertReview. The referenced
// card is not checked; see the contract.
func (s *Store) InsertReview(ctx context.Context, review *domain.Review) error {
	s.mu.Lock()
	s.state.reviews[review.CardID] = append(s.state.reviews[review.CardID], *review)
	s.mu.Unlock()

	return s.save()
}

// ListReviewsForCard implements store.Repository.ListReviewsForCard.
func (s *Store) ListReviewsForCard(ctx context.Context, cardID uuid.UUID) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := append([]domain.Review{}, s.state.reviews[cardID]...)
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].ReviewedAt.Before(reviews[j].ReviewedAt)
	})
	return reviews, nil
}

// Close implements store.Repository.Close. All mutations are already
// durable when they return, so there is nothing to flush.
func (s *Store) Close() error {
	return nil
}
