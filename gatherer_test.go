package pbstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// link is the record type assembled by linkGatherer below: a minimal
// name/size pair read out of a nested length-delimited field, patterned
// after the kind of Merkle-link structure a DAG-style matcher would pull
// out of a larger message.
type link struct {
	name string
	size uint64
}

type linkGatherer struct {
	cur link
}

func (g *linkGatherer) Update(m Matched[string], resolve func(offset, length uint64) []byte) (link, bool, error) {
	switch m.Tag {
	case "name":
		g.cur.name = string(resolve(m.Value.SliceOffset, m.Value.SliceLen))
		return link{}, false, nil
	case "size":
		g.cur.size = m.Value.Varint
		return link{}, false, nil
	case "link-end":
		done := g.cur
		g.cur = link{}
		return done, true, nil
	}
	return link{}, false, nil
}

func TestGatheredAssemblesRecordFromNestedFields(t *testing.T) {
	// field 1: name "go", field 2: size 42, inside an Enter'd field 3.
	inner := []byte{0x0a, 0x02, 'g', 'o', 0x10, 0x2a}
	data := append([]byte{0x1a, byte(len(inner))}, inner...)

	m := funcMatcher{
		match: func(depth int, f FieldID) Decision[string] {
			switch {
			case depth == 0 && f.Tag == 3:
				return Enter[string]("link")
			case depth == 1 && f.Tag == 1:
				return Emit[string]("name")
			case depth == 1 && f.Tag == 2:
				return Emit[string]("size")
			}
			return Skip[string]()
		},
		closed: func(depth int) (string, bool) {
			return "link-end", true
		},
	}
	full := append([]byte{}, data...)
	view := full
	scanner := NewScanner[string](m, 64, uint64(len(full)))
	g := &linkGatherer{}
	gathered := NewGathered[string, link](scanner, g, DefaultOptions())

	resolve := func(offset, length uint64) []byte { return full[offset : offset+length] }

	var got link
	for {
		step, n, err := gathered.Advance(view, resolve)
		require.NoError(t, err)
		view = view[n:]
		if step.Kind == GatherRecord {
			got = step.Record
			break
		}
		if step.Kind == GatherDone {
			t.Fatal("scope closed before a record was produced")
		}
	}

	assert.Equal(t, "go", got.name)
	assert.Equal(t, uint64(42), got.size)
}
