package app

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hylla/dragboard/internal/domain"
)

// IDStyle selects how new item ids look.
type IDStyle string

// IDStyleNumeric and IDStyleUUID are the supported id styles.
const (
	IDStyleNumeric IDStyle = "numeric"
	IDStyleUUID    IDStyle = "uuid"
)

// maxNumericID is the inclusive upper bound of numeric item ids.
const maxNumericID = 1_000_000

// NewIDGenerator returns the generator for style.
func NewIDGenerator(style IDStyle) (domain.IDGenerator, error) {
	switch IDStyle(strings.ToLower(strings.TrimSpace(string(style)))) {
	case "", IDStyleNumeric:
		return NumericIDGenerator(nil), nil
	case IDStyleUUID:
		return uuid.NewString, nil
	default:
		return nil, fmt.Errorf("unknown id style %q", style)
	}
}

// NumericIDGenerator returns random decimal ids in [0, 1000000]. A nil rng
// uses the global source.
func NumericIDGenerator(rng *rand.Rand) domain.IDGenerator {
	return func() string {
		if rng == nil {
			return strconv.Itoa(rand.IntN(maxNumericID + 1))
		}
		return strconv.Itoa(rng.IntN(maxNumericID + 1))
	}
}
