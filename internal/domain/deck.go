package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = errors.New("deck ID cannot be empty")

	// ErrDeckNameEmpty is returned when a deck name is empty or blank.
	ErrDeckNameEmpty = errors.New("deck name cannot be empty")
)

// Deck is a named collection of flashcards. Deck names are unique
// case-insensitively; the store enforces uniqueness at creation time.
type Deck struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDeck creates a Deck with a fresh ID and UTC creation timestamp.
// Returns an error if validation fails.
func NewDeck(name string) (*Deck, error) {
	deck := &Deck{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if strings.TrimSpace(d.Name) == "" {
		return ErrDeckNameEmpty
	}

	return nil
}
