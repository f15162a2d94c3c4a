package proposals

import (
	"strconv"
	"strings"

	"github.com/koscakluka/ema-perspective/internal/utils"
)

func clampWeight(w int) int {
	return utils.Clamp(w, MinWeight, MaxWeight)
}

func clampConfidence(c float64) float64 {
	if c != c {
		return MinConfidence
	}
	return utils.Clamp(c, MinConfidence, MaxConfidence)
}

// ParseWeight reads a weight typed by the user. Out of range values clamp to
// the nearest bound; input that is not a number keeps current.
func ParseWeight(input string, current int) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || v != v {
		return current
	}
	if v > MaxWeight {
		return MaxWeight
	}
	if v < MinWeight {
		return MinWeight
	}
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// ParseConfidence reads a confidence typed by the user, either as a fraction
// or as a percentage ("80%"). Out of range values clamp; input that is not a
// number keeps current.
func ParseConfidence(input string, current float64) float64 {
	input = strings.TrimSpace(input)
	scale := 1.0
	if trimmed, ok := strings.CutSuffix(input, "%"); ok {
		input = strings.TrimSpace(trimmed)
		scale = 100
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil || v != v {
		return current
	}
	return clampConfidence(v / scale)
}
