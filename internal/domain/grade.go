package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGrade is returned when a grade value or name cannot be parsed.
var ErrInvalidGrade = errors.New("invalid grade")

// Grade is the learner's self-assessed recall quality for one review.
//
// The integer values are a persistence contract: Hard=1, Medium=2, Easy=3 is
// how grades are encoded in the snapshot file, in SQL columns, and on the
// wire. They must never be renumbered; existing data depends on them.
type Grade int

const (
	GradeHard   Grade = 1
	GradeMedium Grade = 2
	GradeEasy   Grade = 3
)

// Score returns the ordinal used by the scheduling formula.
func (g Grade) Score() int {
	return int(g)
}

// IsValid reports whether g is one of the three defined grades.
func (g Grade) IsValid() bool {
	return g >= GradeHard && g <= GradeEasy
}

// String returns the lowercase name of the grade, matching the names
// accepted by ParseGrade.
func (g Grade) String() string {
	switch g {
	case GradeHard:
		return "hard"
	case GradeMedium:
		return "medium"
	case GradeEasy:
		return "easy"
	default:
		return fmt.Sprintf("grade(%d)", int(g))
	}
}

// ParseGrade converts user input into a Grade. It accepts the ordinal
// ("1".."3"), a single-letter shorthand, or the full name, case-insensitively.
func ParseGrade(s string) (Grade, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "h", "hard":
		return GradeHard, nil
	case "2", "m", "med", "medium":
		return GradeMedium, nil
	case "3", "e", "easy":
		return GradeEasy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
}
