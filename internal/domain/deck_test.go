package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashdeck-api/internal/domain"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	deck, err := domain.NewDeck("Spanish Vocabulary")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, deck.ID)
	assert.Equal(t, "Spanish Vocabulary", deck.Name)
	assert.False(t, deck.CreatedAt.IsZero())
}

func TestNewDeck_EmptyName(t *testing.T) {
	t.Parallel()

	_, err := domain.NewDeck("")
	assert.ErrorIs(t, err, domain.ErrDeckNameEmpty)

	_, err = domain.NewDeck("   ")
	assert.ErrorIs(t, err, domain.ErrDeckNameEmpty)
}

func TestReviewValidate(t *testing.T) {
	t.Parallel()

	review := domain.NewReview(uuid.New(), domain.GradeEasy, time.Now().UTC(), 6, 2.6)
	assert.NoError(t, review.Validate())

	bad := *review
	bad.Grade = domain.Grade(9)
	assert.ErrorIs(t, bad.Validate(), domain.ErrReviewGradeInvalid)

	bad = *review
	bad.CardID = uuid.Nil
	assert.ErrorIs(t, bad.Validate(), domain.ErrReviewCardIDEmpty)
}
