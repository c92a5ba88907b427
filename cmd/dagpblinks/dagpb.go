package main

import "github.com/aristanetworks/pbstream"

// DAG-PB (github.com/ipfs/go-merkledag's wire format) numbers its fields:
//
//	PBNode  { bytes Data = 1; repeated PBLink Links = 2; }
//	PBLink  { bytes Hash = 1; string Name = 2; uint64 Tsize = 3; }
const (
	nodeDataField  = 1
	nodeLinksField = 2

	linkHashField  = 1
	linkNameField  = 2
	linkTsizeField = 3
)

// linkEventTag labels the Matched events dagpbMatcher surfaces from inside
// one PBLink entry.
type linkEventTag int

const (
	hashEvent linkEventTag = iota
	nameEvent
	tsizeEvent
	linkEndEvent
)

// dagpbMatcher descends into every top-level Links field of a PBNode and
// surfaces the three scalar fields of each PBLink it finds, skipping
// everything else (including the node's own Data field and any field
// numbers this version of the format doesn't know about).
type dagpbMatcher struct{}

func (dagpbMatcher) Match(depth int, field pbstream.FieldID) pbstream.Decision[linkEventTag] {
	switch depth {
	case 0:
		if field.Tag == nodeLinksField && field.Kind == pbstream.LengthDelimitedType {
			return pbstream.Enter[linkEventTag](0)
		}
		return pbstream.Skip[linkEventTag]()
	case 1:
		switch field.Tag {
		case linkHashField:
			return pbstream.Emit(hashEvent)
		case linkNameField:
			return pbstream.Emit(nameEvent)
		case linkTsizeField:
			return pbstream.Emit(tsizeEvent)
		}
		return pbstream.Skip[linkEventTag]()
	default:
		return pbstream.Skip[linkEventTag]()
	}
}

func (dagpbMatcher) Closed(depth int) (linkEventTag, bool) {
	if depth == 1 {
		return linkEndEvent, true
	}
	return 0, false
}

// Link is the record linkGatherer assembles from one PBLink entry.
type Link struct {
	Hash  []byte
	Name  string
	Tsize uint64
}

// linkGatherer folds the three scalar fields of a PBLink, in whatever
// order they arrive, into a Link once the enclosing scope closes.
type linkGatherer struct {
	cur Link
}

func (g *linkGatherer) Update(m pbstream.Matched[linkEventTag], resolve func(offset, length uint64) []byte) (Link, bool, error) {
	switch m.Tag {
	case hashEvent:
		raw := resolve(m.Value.SliceOffset, m.Value.SliceLen)
		g.cur.Hash = append([]byte{}, raw...)
	case nameEvent:
		g.cur.Name = string(resolve(m.Value.SliceOffset, m.Value.SliceLen))
	case tsizeEvent:
		g.cur.Tsize = m.Value.Varint
	case linkEndEvent:
		done := g.cur
		g.cur = Link{}
		return done, true, nil
	}
	return Link{}, false, nil
}
