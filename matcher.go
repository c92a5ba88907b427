package pbstream

// DecisionKind discriminates the four things a Matcher may decide to do
// with a field.
type DecisionKind int

const (
	// SkipDecision means the field (and, for length-delimited fields, its
	// whole payload) is not of interest; the Scanner advances past it
	// without surfacing its value.
	SkipDecision DecisionKind = iota
	// EmitDecision means the Scanner should surface the field's value to
	// the caller as a Matched event, tagged with Decision.Tag.
	EmitDecision
	// EnterDecision pushes a frame bounded by a length-delimited field's
	// declared length and resumes matching at the next nesting depth.
	// Entering produces no event, so Decision.Tag is not surfaced. For a
	// field that is not length-delimited and so has no payload to descend
	// into, the Scanner treats it the same as EmitDecision instead.
	EnterDecision
	// ContDecision is handled by the Scanner exactly like SkipDecision:
	// the field is passed over without being surfaced.
	ContDecision
)

// Decision is what a Matcher returns for a field it was just asked about.
// The zero value is SkipDecision with no tag.
type Decision[T any] struct {
	Kind DecisionKind
	Tag  T
}

// Skip discards the field without surfacing it.
func Skip[T any]() Decision[T] {
	return Decision[T]{Kind: SkipDecision}
}

// Emit surfaces the field's value as a Matched event labeled tag.
func Emit[T any](tag T) Decision[T] {
	return Decision[T]{Kind: EmitDecision, Tag: tag}
}

// Enter descends into a length-delimited field's payload as a new nested
// scope; no event is produced for the entry itself. On a field that isn't
// length-delimited, the Scanner degrades this to an Emit of the field's
// value labeled tag instead.
func Enter[T any](tag T) Decision[T] {
	return Decision[T]{Kind: EnterDecision, Tag: tag}
}

// Cont passes over the field; the Scanner treats it the same as Skip.
func Cont[T any]() Decision[T] {
	return Decision[T]{Kind: ContDecision}
}

// Matcher is a user-supplied decision function plus its own state: a small
// DFA that tells the Scanner what to do with each field it encounters. The
// Matcher itself holds whatever state its decisions depend on (the current
// node of its DFA, an accumulator, counters) — the Scanner only ever calls
// back into it, never owns or inspects that state.
//
// T is the opaque label a Matcher attaches to the fields it cares about;
// the Scanner threads it back unchanged on Matched events (emitted values
// and end-of-scope markers) so the caller can tell events apart without
// re-deriving them from raw tag numbers.
type Matcher[T any] interface {
	// Match is called once per field encountered at the current nesting
	// depth, before any of its bytes are consumed beyond the header.
	// depth is the number of currently open Enter scopes (0 at the
	// document's top level).
	Match(depth int, field FieldID) Decision[T]

	// Closed is called each time the Scanner pops a frame that was opened
	// by a prior Enter decision, immediately after the last byte of that
	// scope has been accounted for. depth is the depth inside the scope
	// that just closed: one more than the value that was passed to Match
	// when it chose Enter. Returning ok == true surfaces an end-of-scope Matched event
	// tagged with the returned value; ok == false closes silently.
	Closed(depth int) (tag T, ok bool)
}
