// Package llm provides the conversational fallback for commands the
// local intent parser cannot handle confidently.
//
// The raw text goes to an OpenAI-compatible chat endpoint with a system
// prompt enumerating the user's rooms and devices and a control_devices
// tool definition. A tool call comes back for device control and is
// resolved against the registry; a plain reply is returned as-is, with
// an occasional follow-up question to keep the conversation going.
//
// A bounded history of recent turns is replayed on every request, and a
// new request cancels any still in flight. Any failure, from the
// network up to a malformed tool call, is replaced with a canned local
// reply: raw provider errors never reach the user.
package llm
