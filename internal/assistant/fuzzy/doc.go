// Package fuzzy matches free-form spoken text against known room names.
//
// Voice transcription mangles room names constantly: "livingroom",
// "living-room", "the living room". Matching runs in two stages over
// normalised text: a containment check in either direction scores a
// perfect match immediately, and otherwise Levenshtein edit distance
// produces a similarity score that must clear a configurable threshold.
//
// The package is pure string work with no dependencies; every consumer
// of room names in the assistant resolves through it so a phrase is
// matched the same way everywhere.
package fuzzy
