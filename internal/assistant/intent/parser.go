package intent

import (
	"github.com/argentmirror/argent-core/internal/assistant/fuzzy"
)

// RoomSource supplies the live room names for parameter extraction.
// Satisfied by the home registry.
type RoomSource interface {
	RoomNames() []string
}

// Parser matches input text against the intent catalog.
//
// A Parser is immutable after construction and safe for concurrent use.
type Parser struct {
	rooms         RoomSource
	roomThreshold float64
}

// NewParser creates a parser resolving rooms against the given source.
// roomThreshold is the minimum fuzzy similarity for a room reference to
// count; zero selects the default.
func NewParser(rooms RoomSource, roomThreshold float64) *Parser {
	if roomThreshold <= 0 {
		roomThreshold = fuzzy.DefaultThreshold
	}
	return &Parser{
		rooms:         rooms,
		roomThreshold: roomThreshold,
	}
}

// Parse resolves the input to an intent.
//
// The first catalog rule whose keyword groups are all satisfied wins;
// its extractors then pull parameters from the same text. Unmatched
// input yields ActionUnknown at the floor confidence.
func (p *Parser) Parse(text string) Intent {
	normalized := fuzzy.Normalize(text)
	if normalized == "" {
		return Intent{Action: ActionUnknown, Confidence: ConfidenceUnknown}
	}

	for _, r := range catalog {
		if !p.matches(normalized, r) {
			continue
		}

		params := p.extractParams(normalized, r)
		confidence := ConfidenceBareMatch
		if params.count() > 0 {
			confidence = ConfidenceWithParams
		}

		return Intent{
			Action:     r.action,
			Params:     params,
			Confidence: confidence,
		}
	}

	return Intent{Action: ActionUnknown, Confidence: ConfidenceUnknown}
}

func (p *Parser) matches(normalized string, r rule) bool {
	for _, veto := range r.none {
		if containsPhrase(normalized, veto) {
			return false
		}
	}

	for _, group := range r.all {
		satisfied := false
		for _, phrase := range group {
			if containsPhrase(normalized, phrase) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}

func (p *Parser) extractParams(normalized string, r rule) Params {
	var params Params

	for _, kind := range r.extract {
		switch kind {
		case paramRoom:
			if room, ok := fuzzy.ResolveRoom(normalized, p.rooms.RoomNames(), p.roomThreshold); ok {
				params.Room = room
			}
		case paramTemperature:
			params.Temperature = extractTemperature(normalized)
		case paramBrightness:
			params.Brightness = extractBrightness(normalized)
		case paramSpeed:
			params.Speed = extractSpeed(normalized)
		case paramSong:
			params.Song = extractSong(normalized)
		}
	}

	return params
}
