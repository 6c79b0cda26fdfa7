// Package tools defines the tool contract shared by the dialogue agent and
// the outbound weather tools, plus the conversions from provider-agnostic
// tool schemas to each LLM backend's wire format.
package tools

// ResultKind tags the outcome of a tool execution.
type ResultKind int

const (
	// ResultOk means the tool produced a usable payload.
	ResultOk ResultKind = iota
	// ResultNotFound means the lookup succeeded but matched nothing
	// (e.g. no geocoding hit for the query).
	ResultNotFound
	// ResultFailure means the outbound call failed (transport error,
	// non-2xx status, malformed response).
	ResultFailure
)

// Result is the tagged outcome of a tool execution. Internally the three
// kinds are distinct so branching stays testable without string matching;
// at the conversation boundary everything degrades to Text(), keeping the
// model's reasoning loop uniform.
type Result struct {
	Kind ResultKind
	text string
}

// Ok wraps a successful payload.
func Ok(text string) Result {
	return Result{Kind: ResultOk, text: text}
}

// NotFound wraps a no-match outcome, phrased so the agent can ask the user
// to rephrase.
func NotFound(text string) Result {
	return Result{Kind: ResultNotFound, text: text}
}

// Failure wraps a transport or service failure description. It is never
// raised as a Go error across the tool boundary.
func Failure(text string) Result {
	return Result{Kind: ResultFailure, text: text}
}

// Text renders the result to the string the model sees. All three kinds
// render the same way; the tag exists for logging and tests.
func (r Result) Text() string {
	return r.text
}
