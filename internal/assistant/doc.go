// Package assistant is the voice-command pipeline.
//
// Incoming text (typed quick-commands or speech transcripts) runs
// through the local intent parser first. A confident match goes
// straight to the action dispatcher; anything below the configured
// confidence threshold falls through to the conversational model,
// which can still control devices via function calling.
//
// Subpackages: fuzzy (room-name matching), intent (text to action),
// dispatch (action execution and narration), llm (conversational
// fallback).
package assistant
