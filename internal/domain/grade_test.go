package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashdeck-api/internal/domain"
)

func TestGradeOrdinals(t *testing.T) {
	t.Parallel()

	// The integer values are load-bearing: stored data encodes them.
	assert.Equal(t, 1, domain.GradeHard.Score())
	assert.Equal(t, 2, domain.GradeMedium.Score())
	assert.Equal(t, 3, domain.GradeEasy.Score())
}

func TestGradeIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.GradeHard.IsValid())
	assert.True(t, domain.GradeMedium.IsValid())
	assert.True(t, domain.GradeEasy.IsValid())
	assert.False(t, domain.Grade(0).IsValid())
	assert.False(t, domain.Grade(4).IsValid())
	assert.False(t, domain.Grade(-1).IsValid())
}

func TestGradeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hard", domain.GradeHard.String())
	assert.Equal(t, "medium", domain.GradeMedium.String())
	assert.Equal(t, "easy", domain.GradeEasy.String())
	assert.Equal(t, "grade(7)", domain.Grade(7).String())
}

func TestParseGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  domain.Grade
	}{
		{"1", domain.GradeHard},
		{"h", domain.GradeHard},
		{"HARD", domain.GradeHard},
		{"2", domain.GradeMedium},
		{"m", domain.GradeMedium},
		{"med", domain.GradeMedium},
		{"Medium", domain.GradeMedium},
		{"3", domain.GradeEasy},
		{"e", domain.GradeEasy},
		{"easy", domain.GradeEasy},
		{"  easy  ", domain.GradeEasy},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := domain.ParseGrade(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseGrade_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "0", "4", "ok", "hardd"} {
		_, err := domain.ParseGrade(input)
		assert.ErrorIs(t, err, domain.ErrInvalidGrade, "input %q", input)
	}
}
