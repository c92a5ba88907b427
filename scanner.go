package pbstream

import (
	"errors"
	"math"

	"github.com/aristanetworks/pbstream/internal/wire"
)

// Matched is a field value the Scanner decided to surface, either because
// the Matcher chose Emit (or Enter on a field that is not length-delimited),
// or because a scope opened by Enter closed and the Matcher's Closed
// callback asked for a marker event.
type Matched[T any] struct {
	// Offset is the absolute input offset of the field's tag header for a
	// varint or fixed-width value, of the payload's first byte for a
	// length-delimited SliceValue (the same as Value.SliceOffset), or, for
	// an end-of-scope event, the offset immediately past the closed scope.
	Offset uint64
	// Depth is the nesting depth the field was read at, or for
	// end-of-scope events, the depth of the scope that just closed.
	Depth int
	Tag   T
	Value Value
}

// StepKind discriminates the result of a single Scanner.Advance call.
type StepKind int

const (
	// StepMatched carries a Matched event: an emitted field value or an
	// end-of-scope marker. Entering a scope produces no event of its own.
	StepMatched StepKind = iota
	// StepSkipped reports that a Skip'd field (and, if length-delimited,
	// its entire payload) has been fully passed over. NewCursor is the
	// absolute offset immediately past it.
	StepSkipped
	// StepNeedMoreBytes reports that the window ended before a pending
	// operation (reading a header, buffering a value, resuming a skip)
	// could complete. The caller must supply at least MinAdditional more
	// bytes, with all previously-supplied bytes still at the same
	// offsets, and call Advance again. AtOuterBoundary is true when this
	// suspension occurs with no frames open and no partial decode
	// in flight — the only point at which a clean end of input is valid.
	StepNeedMoreBytes
	// StepDone reports that the outermost scope (only reachable when the
	// Scanner was constructed with a finite outer limit) has closed.
	StepDone
)

// Step is the result of one Scanner.Advance call.
type Step[T any] struct {
	Kind StepKind

	Matched Matched[T]

	NewCursor uint64

	MinAdditional   int
	AtOuterBoundary bool
}

type scannerFrame struct {
	end   uint64
	depth int
}

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingSkip
	pendingEmitSlice
)

// Scanner is a matcher-driven, pull-based reader over protobuf's wire
// format. It never allocates or retains its input: every call either
// reports progress against the window it was given, or asks for more bytes
// at the same logical offset. Nesting is tracked with an explicit stack
// rather than recursion, bounded by Options.MaxDepth.
type Scanner[T any] struct {
	matcher  Matcher[T]
	maxDepth int

	offset uint64
	frames []scannerFrame

	pending       pendingKind
	pendingTag    T
	pendingStart  uint64
	pendingRemain uint64
	pendingTotal  uint64
}

// OuterUnbounded is passed to NewScanner for input whose total length is
// not known up front (the common streaming case): the outermost scope
// never closes on its own, and it is the Adapter's job to recognize a
// clean end of input at a field boundary.
const OuterUnbounded = math.MaxUint64

// NewScanner constructs a Scanner over a scope ending outerLimit bytes from
// the start of input (absolute offset). Pass OuterUnbounded when the total
// length of the input is not known ahead of time.
func NewScanner[T any](matcher Matcher[T], maxDepth int, outerLimit uint64) *Scanner[T] {
	return &Scanner[T]{
		matcher:  matcher,
		maxDepth: maxDepth,
		frames:   []scannerFrame{{end: outerLimit, depth: 0}},
	}
}

// Offset is the absolute input offset the Scanner will next read from.
func (s *Scanner[T]) Offset() uint64 { return s.offset }

// Depth is the number of currently open Enter scopes.
func (s *Scanner[T]) Depth() int { return len(s.frames) - 1 }

// AtFieldBoundary reports whether the Scanner is positioned to begin
// reading a fresh field header — false while a skip or buffering operation
// is suspended mid-flight. The Adapter does not call it: it relies on
// Step.AtOuterBoundary, which the Scanner only sets when this holds at
// depth 0 with an empty window.
func (s *Scanner[T]) AtFieldBoundary() bool { return s.pending == pendingNone }

// Advance attempts one unit of progress from the front of view, which must
// begin at the Scanner's current Offset. It returns the number of bytes of
// view consumed this call. A call may consume bytes and still report
// StepNeedMoreBytes: part of a skip already in progress, or a field header
// it has already acted on (an Enter, or an Emit of a length-delimited field
// still waiting for its payload). Those bytes are gone for good, so the
// caller retries with a view starting at the new Offset and holding at
// least MinAdditional more bytes than the unconsumed remainder. A call
// that consumed nothing can be retried with the same view once more bytes
// are appended.
func (s *Scanner[T]) Advance(view []byte) (Step[T], int, error) {
	var total int
	for {
		popAgain := true
		for popAgain {
			var step Step[T]
			var hasEvent bool
			var err error
			popAgain, hasEvent, step, err = s.tryPopFrame()
			if err != nil {
				return Step[T]{}, total, err
			}
			if hasEvent {
				return step, total, nil
			}
		}

		if s.pending == pendingSkip {
			n, done := s.resumeSkip(view)
			total += n
			view = view[n:]
			if !done {
				return Step[T]{Kind: StepNeedMoreBytes, MinAdditional: 1}, total, nil
			}
			step := Step[T]{Kind: StepSkipped, NewCursor: s.offset}
			s.pending = pendingNone
			return step, total, nil
		}

		if s.pending == pendingEmitSlice {
			need := int(s.pendingRemain)
			if len(view) < need {
				return Step[T]{Kind: StepNeedMoreBytes, MinAdditional: need - len(view)}, total, nil
			}
			val := Value{Kind: SliceValue, SliceOffset: s.pendingStart, SliceLen: s.pendingTotal}
			depth := s.Depth()
			tag := s.pendingTag
			s.offset += uint64(need)
			total += need
			s.pending = pendingNone
			return Step[T]{Kind: StepMatched, Matched: Matched[T]{Offset: s.pendingStart, Depth: depth, Tag: tag, Value: val}}, total, nil
		}

		f, minNeeded, status, err := wire.Reader{}.Next(view)
		switch status {
		case wire.StatusNeedMore:
			if len(view) == 0 && s.Depth() == 0 {
				return Step[T]{Kind: StepNeedMoreBytes, MinAdditional: minNeeded, AtOuterBoundary: true}, total, nil
			}
			return Step[T]{Kind: StepNeedMoreBytes, MinAdditional: minNeeded}, total, nil
		case wire.StatusInvalid:
			return Step[T]{}, total, s.translateFieldError(err)
		}

		fieldStart := s.offset
		depth := s.Depth()
		remaining := s.frames[len(s.frames)-1].end - s.offset

		footprint := uint64(f.Consumed)
		if f.Kind == wire.LengthDelimited {
			footprint += uint64(f.Value.DataLen)
		}
		if footprint > remaining {
			remainingAfterHeader := uint64(0)
			if remaining > uint64(f.Consumed) {
				remainingAfterHeader = remaining - uint64(f.Consumed)
			}
			return Step[T]{}, total, &FramingError{
				DeclaredLen:      uint64(f.Value.DataLen),
				RemainingInFrame: remainingAfterHeader,
			}
		}

		fieldID := FieldID{Tag: f.Tag, Kind: fromWireKind(f.Kind)}
		decision := s.matcher.Match(depth, fieldID)

		// spec.md §4.3: Enter on a non-length-delimited field degrades to Emit,
		// since only a length-delimited field has a payload to descend into.
		effectiveKind := decision.Kind
		if effectiveKind == EnterDecision && f.Kind != wire.LengthDelimited {
			effectiveKind = EmitDecision
		}

		switch effectiveKind {
		case SkipDecision, ContDecision:
			if f.Kind == wire.LengthDelimited {
				view = view[f.Consumed:]
				total += f.Consumed
				s.offset += uint64(f.Consumed)
				s.pending = pendingSkip
				s.pendingRemain = uint64(f.Value.DataLen)
				continue
			}
			view = view[f.Consumed:]
			total += f.Consumed
			s.offset += uint64(f.Consumed)
			return Step[T]{Kind: StepSkipped, NewCursor: s.offset}, total, nil

		case EmitDecision:
			switch f.Kind {
			case wire.Varint:
				view = view[f.Consumed:]
				total += f.Consumed
				s.offset += uint64(f.Consumed)
				val := Value{Kind: VarintValue, Varint: f.Value.Varint}
				return Step[T]{Kind: StepMatched, Matched: Matched[T]{Offset: fieldStart, Depth: depth, Tag: decision.Tag, Value: val}}, total, nil
			case wire.Fixed32:
				view = view[f.Consumed:]
				total += f.Consumed
				s.offset += uint64(f.Consumed)
				val := Value{Kind: Fixed32Value, Fixed32: f.Value.Fixed32}
				return Step[T]{Kind: StepMatched, Matched: Matched[T]{Offset: fieldStart, Depth: depth, Tag: decision.Tag, Value: val}}, total, nil
			case wire.Fixed64:
				view = view[f.Consumed:]
				total += f.Consumed
				s.offset += uint64(f.Consumed)
				val := Value{Kind: Fixed64Value, Fixed64: f.Value.Fixed64}
				return Step[T]{Kind: StepMatched, Matched: Matched[T]{Offset: fieldStart, Depth: depth, Tag: decision.Tag, Value: val}}, total, nil
			case wire.LengthDelimited:
				view = view[f.Consumed:]
				total += f.Consumed
				s.offset += uint64(f.Consumed)
				s.pending = pendingEmitSlice
				s.pendingTag = decision.Tag
				s.pendingStart = s.offset
				s.pendingTotal = uint64(f.Value.DataLen)
				s.pendingRemain = uint64(f.Value.DataLen)
				continue
			}

		case EnterDecision:
			if len(s.frames) > s.maxDepth {
				return Step[T]{}, total, &NestingTooDeepError{MaxDepth: s.maxDepth}
			}
			view = view[f.Consumed:]
			total += f.Consumed
			s.offset += uint64(f.Consumed)
			s.frames = append(s.frames, scannerFrame{end: s.offset + uint64(f.Value.DataLen), depth: depth + 1})
			continue
		}
	}
}

// translateFieldError maps an internal/wire decode error onto the exported
// error kinds a caller can match with errors.As/errors.Is: wire's errors
// never cross the package boundary unwrapped.
func (s *Scanner[T]) translateFieldError(err error) error {
	var uwt *wire.UnsupportedWireTypeError
	if errors.As(err, &uwt) {
		return &UnsupportedWireTypeError{WireType: uwt.WireType}
	}
	if errors.Is(err, wire.ErrZeroTag) {
		return ErrZeroTag
	}
	return &InvalidVarintError{Offset: s.offset}
}

// tryPopFrame closes the innermost frame if the Scanner's offset has
// reached its end, invoking the Matcher's Closed callback. popped reports
// whether a frame was removed at all (regardless of whether it produced a
// visible event); hasEvent reports whether step is populated and should be
// returned to the caller immediately.
func (s *Scanner[T]) tryPopFrame() (popped bool, hasEvent bool, step Step[T], err error) {
	if len(s.frames) == 0 {
		return false, false, Step[T]{}, nil
	}
	top := s.frames[len(s.frames)-1]
	if s.offset != top.end {
		return false, false, Step[T]{}, nil
	}
	if len(s.frames) == 1 && top.end == OuterUnbounded {
		return false, false, Step[T]{}, nil
	}
	closedDepth := top.depth
	s.frames = s.frames[:len(s.frames)-1]
	if len(s.frames) == 0 {
		// The outermost frame was not opened by an Enter decision, so the
		// Matcher is not asked about it: closing it ends the scan.
		return true, true, Step[T]{Kind: StepDone}, nil
	}
	tag, ok := s.matcher.Closed(closedDepth)
	if ok {
		return true, true, Step[T]{Kind: StepMatched, Matched: Matched[T]{Offset: s.offset, Depth: closedDepth, Tag: tag, Value: Value{Kind: MarkerValue}}}, nil
	}
	return true, false, Step[T]{}, nil
}

// resumeSkip consumes as much of a pending skip as view holds, returning
// the number of bytes consumed and whether the skip is now complete.
func (s *Scanner[T]) resumeSkip(view []byte) (int, bool) {
	n := len(view)
	if uint64(n) >= s.pendingRemain {
		n = int(s.pendingRemain)
	}
	s.offset += uint64(n)
	s.pendingRemain -= uint64(n)
	return n, s.pendingRemain == 0
}
