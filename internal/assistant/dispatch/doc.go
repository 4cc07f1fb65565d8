// Package dispatch executes resolved intents against the device registry.
//
// The dispatcher maps each action to a device category, resolves the
// room constraint through the fuzzy matcher, partitions the matched
// devices into already-in-state and needs-change, and mutates only the
// latter, sequentially. A write failure aborts the remaining writes;
// earlier writes in the same batch are not rolled back.
//
// Every outcome, including failure, is reported as a natural-language
// response string plus a structured Outcome code. Execute never returns
// an error: the caller always has something to say to the user.
package dispatch
