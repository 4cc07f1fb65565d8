package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Attribute clamping bounds.
const (
	minBrightness = 0
	maxBrightness = 100
	minFanSpeed   = 1
	maxFanSpeed   = 5
)

// namedValue pairs a spoken expression with the value it implies.
// Ordered: longer, more specific phrases first so "really cold" wins
// over "cold".
type namedValue struct {
	phrase string
	value  float64
}

var namedTemperatures = []namedValue{
	{"really hot", 28},
	{"really cold", 16},
	{"freezing", 15},
	{"boiling", 28},
	{"hot", 26},
	{"warm", 24},
	{"chilly", 19},
	{"cold", 18},
	{"cool", 21},
}

var namedBrightness = []namedValue{
	{"very dim", 20},
	{"very bright", 100},
	{"dim", 40},
	{"bright", 80},
	{"dark", 20},
	{"full", 100},
}

var namedSpeeds = []namedValue{
	{"maximum", 5},
	{"max", 5},
	{"full", 5},
	{"high", 5},
	{"medium", 3},
	{"low", 1},
	{"minimum", 1},
}

var (
	temperatureRe = regexp.MustCompile(`(\d{1,3})\s*(degrees?|°)?\s*(c|f)?\b`)
	numberRe      = regexp.MustCompile(`\d{1,3}`)
)

// extractTemperature finds a temperature in the text: named expressions
// first, then a numeric match.
func extractTemperature(normalized string) *float64 {
	for _, nv := range namedTemperatures {
		if containsPhrase(normalized, nv.phrase) {
			v := nv.value
			return &v
		}
	}

	if m := temperatureRe.FindStringSubmatch(normalized); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &v
		}
	}
	return nil
}

// extractBrightness finds a brightness level: named expressions first,
// then a bare number, clamped to [0, 100].
func extractBrightness(normalized string) *int {
	for _, nv := range namedBrightness {
		if containsPhrase(normalized, nv.phrase) {
			v := clamp(int(nv.value), minBrightness, maxBrightness)
			return &v
		}
	}

	if m := numberRe.FindString(normalized); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			v = clamp(v, minBrightness, maxBrightness)
			return &v
		}
	}
	return nil
}

// extractSpeed finds a fan speed: named expressions first, then a bare
// number, clamped to [1, 5].
func extractSpeed(normalized string) *int {
	for _, nv := range namedSpeeds {
		if containsPhrase(normalized, nv.phrase) {
			v := clamp(int(nv.value), minFanSpeed, maxFanSpeed)
			return &v
		}
	}

	if m := numberRe.FindString(normalized); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			v = clamp(v, minFanSpeed, maxFanSpeed)
			return &v
		}
	}
	return nil
}

// extractSong returns everything after the first standalone word
// "play", trimmed. Empty when nothing follows.
func extractSong(normalized string) string {
	words := strings.Fields(normalized)
	for i, w := range words {
		if w == "play" && i+1 < len(words) {
			return strings.Join(words[i+1:], " ")
		}
	}
	return ""
}

// containsPhrase reports whether the phrase appears in the text on word
// boundaries, so "ac" matches "turn on the ac" but not "back door".
func containsPhrase(text, phrase string) bool {
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
