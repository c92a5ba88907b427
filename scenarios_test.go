package pbstream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioEvent is a driver-independent recording of one Matched step,
// copied out immediately since a SliceValue only borrows the Adapter's
// buffer for the duration of a single Advance/Next call.
type scenarioEvent struct {
	offset uint64
	depth  int
	tag    string
	kind   ValueKind
	varint uint64
	slice  string
}

// recordEvents pumps src through an Adapter until a clean end of input or a
// terminal error, recording every Matched event along the way. It returns
// (events, nil) at clean EOF and (partial events, err) otherwise.
func recordEvents(src Source, matcher Matcher[string], outerLimit uint64) ([]scenarioEvent, error) {
	scanner := NewScanner[string](matcher, 64, outerLimit)
	a := NewAdapter[string](src, scanner, DefaultOptions())
	var events []scenarioEvent
	for {
		m, err := a.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, err
		}
		ev := scenarioEvent{offset: m.Offset, depth: m.Depth, tag: m.Tag, kind: m.Value.Kind}
		switch m.Value.Kind {
		case VarintValue:
			ev.varint = m.Value.Varint
		case SliceValue:
			ev.slice = string(a.Resolve(m.Value.SliceOffset, m.Value.SliceLen))
		}
		events = append(events, ev)
	}
}

// runScenario checks the resumption-idempotence invariant from spec.md §8:
// feeding data whole through a bytes.Reader and feeding it one byte at a
// time through a chunkedSource must produce the identical event sequence.
// newMatcher is called once per driver since funcMatcher carries no state
// here, but a stateful Matcher would need a fresh instance per run too.
func runScenario(t *testing.T, data []byte, newMatcher func() Matcher[string], outerLimit uint64, want []scenarioEvent) {
	t.Helper()

	whole, err := recordEvents(bytes.NewReader(data), newMatcher(), outerLimit)
	require.NoError(t, err)
	assert.Equal(t, want, whole, "in-memory (bytes.Reader) driver")

	split, err := recordEvents(&chunkedSource{data: append([]byte{}, data...), chunkSize: 1}, newMatcher(), outerLimit)
	require.NoError(t, err)
	assert.Equal(t, want, split, "split-at-every-byte-boundary driver")
}

// runScenarioError is runScenario's counterpart for the two scenarios that
// end in an error rather than Done: both drivers must fail the same way.
func runScenarioError(t *testing.T, data []byte, newMatcher func() Matcher[string], outerLimit uint64, check func(t *testing.T, err error)) {
	t.Helper()

	_, err := recordEvents(bytes.NewReader(data), newMatcher(), outerLimit)
	check(t, err)

	_, err = recordEvents(&chunkedSource{data: append([]byte{}, data...), chunkSize: 1}, newMatcher(), outerLimit)
	check(t, err)
}

func emitAll(tag string) func() Matcher[string] {
	return func() Matcher[string] {
		return funcMatcher{match: func(depth int, f FieldID) Decision[string] { return Emit[string](tag) }}
	}
}

// TestScenarioSimpleVarintField is spec.md §8 scenario 1.
func TestScenarioSimpleVarintField(t *testing.T) {
	data := []byte{0x08, 0x96, 0x01}
	want := []scenarioEvent{{offset: 0, depth: 0, tag: "T", kind: VarintValue, varint: 150}}
	runScenario(t, data, emitAll("T"), OuterUnbounded, want)
}

// TestScenarioSkipLengthDelimited is spec.md §8 scenario 2.
func TestScenarioSkipLengthDelimited(t *testing.T) {
	data := []byte{0x12, 0x05, 0x68, 0x65, 0x6c, 0x6c, 0x6f, 0x08, 0x2a}
	newMatcher := func() Matcher[string] {
		return funcMatcher{match: func(depth int, f FieldID) Decision[string] {
			if f.Tag == 2 {
				return Skip[string]()
			}
			return Emit[string]("T")
		}}
	}
	want := []scenarioEvent{{offset: 7, depth: 0, tag: "T", kind: VarintValue, varint: 42}}
	runScenario(t, data, newMatcher, OuterUnbounded, want)
}

// TestScenarioEnterAndEmitNested is spec.md §8 scenario 3, and also covers
// scenario 4 (NeedMoreBytes across a varint): the split-at-every-byte-
// boundary driver run inside runScenario necessarily suspends mid-varint
// and resumes, producing the identical sequence asserted here.
func TestScenarioEnterAndEmitNested(t *testing.T) {
	data := []byte{0x0a, 0x04, 0x08, 0x2a, 0x10, 0x07}
	newMatcher := func() Matcher[string] {
		return funcMatcher{
			match: func(depth int, f FieldID) Decision[string] {
				switch {
				case depth == 0 && f.Tag == 1:
					return Enter[string]("enter")
				case depth == 1 && f.Tag == 1:
					return Emit[string]("A")
				case depth == 1 && f.Tag == 2:
					return Emit[string]("B")
				}
				return Skip[string]()
			},
			closed: func(depth int) (string, bool) { return "end", true },
		}
	}
	want := []scenarioEvent{
		{offset: 2, depth: 1, tag: "A", kind: VarintValue, varint: 42},
		{offset: 4, depth: 1, tag: "B", kind: VarintValue, varint: 7},
		{offset: 6, depth: 1, tag: "end", kind: MarkerValue},
	}
	runScenario(t, data, newMatcher, OuterUnbounded, want)
}

// TestScenarioFramingError is spec.md §8 scenario 5.
func TestScenarioFramingError(t *testing.T) {
	data := []byte{0x0a, 0x05, 0x08, 0x2a}
	newMatcher := func() Matcher[string] {
		return funcMatcher{match: func(depth int, f FieldID) Decision[string] { return Skip[string]() }}
	}
	runScenarioError(t, data, newMatcher, uint64(len(data)), func(t *testing.T, err error) {
		var fe *FramingError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, uint64(5), fe.DeclaredLen)
		assert.Equal(t, uint64(2), fe.RemainingInFrame)
	})
}

// TestScenarioInvalidWireType is spec.md §8 scenario 6.
func TestScenarioInvalidWireType(t *testing.T) {
	data := []byte{0x0b}
	newMatcher := func() Matcher[string] {
		return funcMatcher{match: func(depth int, f FieldID) Decision[string] { return Skip[string]() }}
	}
	runScenarioError(t, data, newMatcher, OuterUnbounded, func(t *testing.T, err error) {
		var uwt *UnsupportedWireTypeError
		require.ErrorAs(t, err, &uwt)
		assert.Equal(t, uint32(3), uwt.WireType)
	})
}
