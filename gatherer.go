package pbstream

// Gatherer folds the Matched events a Scanner produces into a typed
// record, one event at a time, without ever seeing more of the input than
// the Scanner itself buffers. T is the Matcher's tag type shared with the
// Scanner driving this Gatherer; R is the record type it produces.
//
// A Gatherer owns its own accumulation state (the fields of the record
// under construction). Update is called once per Matched event in
// document order; when it has everything a record needs it returns
// ready == true along with the assembled record, and resets itself to
// start accumulating the next one.
type Gatherer[T any, R any] interface {
	// Update folds one Matched event into the record currently being
	// assembled. resolve turns a SliceValue's (offset, length) into the
	// underlying bytes; the returned slice borrows the Adapter's buffer
	// and is only valid for the duration of this call.
	Update(m Matched[T], resolve func(offset, length uint64) []byte) (record R, ready bool, err error)
}

// GatherStepKind discriminates the result of a single Gathered.Advance
// call, mirroring Scanner's Step but replacing a raw matched event with
// either no record yet or a fully assembled one.
type GatherStepKind int

const (
	// GatherRecord carries a record the Gatherer just finished
	// assembling.
	GatherRecord GatherStepKind = iota
	// GatherProgress reports a Matched or Skipped event was folded in (or
	// passed over) but no record is ready yet.
	GatherProgress
	// GatherNeedMoreBytes mirrors StepNeedMoreBytes.
	GatherNeedMoreBytes
	// GatherDone mirrors StepDone.
	GatherDone
)

// GatherStep is the result of one Gathered.Advance call.
type GatherStep[R any] struct {
	Kind GatherStepKind

	Record R

	MinAdditional   int
	AtOuterBoundary bool
}

// Gathered drives a Scanner and a Gatherer together, resetting its own
// per-record bookkeeping (event count, record start) every time a record
// completes and
// enforcing Options.MaxGatheredEvents / Options.MaxRecordSize independently
// of whatever the Gatherer itself tracks.
type Gathered[T any, R any] struct {
	scanner  *Scanner[T]
	gatherer Gatherer[T, R]
	opts     Options

	eventCount  int
	spanStart   uint64
	spanStarted bool
}

// NewGathered wraps scanner so that records recognized by gatherer are
// assembled and returned one at a time as Advance is pumped.
func NewGathered[T any, R any](scanner *Scanner[T], gatherer Gatherer[T, R], opts Options) *Gathered[T, R] {
	return &Gathered[T, R]{scanner: scanner, gatherer: gatherer, opts: opts}
}

// Advance pumps the underlying Scanner once and folds whatever Matched
// event it produces into the Gatherer, resolving length-delimited bytes
// via resolve (typically the Adapter's buffer, addressed by absolute
// offset). It returns a GatherRecord step exactly when the Gatherer
// reports a record complete.
func (g *Gathered[T, R]) Advance(view []byte, resolve func(offset, length uint64) []byte) (GatherStep[R], int, error) {
	step, consumed, err := g.scanner.Advance(view)
	if err != nil {
		return GatherStep[R]{}, consumed, err
	}

	switch step.Kind {
	case StepNeedMoreBytes:
		return GatherStep[R]{Kind: GatherNeedMoreBytes, MinAdditional: step.MinAdditional, AtOuterBoundary: step.AtOuterBoundary}, consumed, nil
	case StepDone:
		return GatherStep[R]{Kind: GatherDone}, consumed, nil
	case StepSkipped:
		return GatherStep[R]{Kind: GatherProgress}, consumed, nil
	}

	m := step.Matched
	if !g.spanStarted {
		g.spanStart = m.Offset
		g.spanStarted = true
	}
	g.eventCount++
	if g.eventCount > g.opts.MaxGatheredEvents {
		g.resetSpan()
		return GatherStep[R]{}, consumed, ErrTooManyGatheredEvents
	}
	if m.Offset >= g.spanStart && m.Offset-g.spanStart > g.opts.MaxRecordSize {
		g.resetSpan()
		return GatherStep[R]{}, consumed, &RecordTooLargeError{Size: m.Offset - g.spanStart, Limit: g.opts.MaxRecordSize}
	}

	record, ready, err := g.gatherer.Update(m, resolve)
	if err != nil {
		g.resetSpan()
		return GatherStep[R]{}, consumed, err
	}
	if !ready {
		return GatherStep[R]{Kind: GatherProgress}, consumed, nil
	}
	g.resetSpan()
	return GatherStep[R]{Kind: GatherRecord, Record: record}, consumed, nil
}

func (g *Gathered[T, R]) resetSpan() {
	g.eventCount = 0
	g.spanStarted = false
}

// MinOffset is the earliest absolute offset this Gathered still needs
// resident: record_start_offset for a record currently being assembled, or
// the Scanner's own offset when nothing is pinned. spec.md §4.4 requires a
// GatheredFields to retain all bytes from record_start_offset onward so a
// Gatherer's resolve callback can still reach any field of the record in
// progress; a pump must not reclaim past this point.
func (g *Gathered[T, R]) MinOffset() uint64 {
	if g.spanStarted {
		return g.spanStart
	}
	return g.scanner.Offset()
}
