// Package intent turns free-form command text into a structured intent.
//
// Recognition is driven by an ordered catalog of rules. A rule names an
// action and the keyword groups that select it: every group must be
// satisfied by at least one of its phrases, phrases match on word
// boundaries against normalised text, and the first rule to match wins.
// Matched rules then run their parameter extractors (room, temperature,
// brightness, fan speed, song title).
//
// Room references resolve against the live room list through the fuzzy
// matcher, so the parser recognises whatever rooms actually exist
// rather than a fixed lexicon.
//
// Confidence is a fixed heuristic: 0.95 when at least one parameter was
// extracted, 0.85 for a bare keyword match, 0.1 for no match at all.
// Callers compare it against a configured threshold to decide between
// direct dispatch and the conversational fallback.
package intent
