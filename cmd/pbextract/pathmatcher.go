package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/aristanetworks/pbstream"
)

// pathTag is the opaque label pbstream.Matcher threads back through Matched
// events for a PathMatcher: there is only ever one path being tracked, so
// the label carries no information beyond marking "this is the field we
// were asked for".
type pathTag struct{}

// pathMatcher walks a single slash-separated chain of field numbers —
// "3/1/4" means "field 3, then within it field 1, then within that field
// 4" — skipping everything else at every depth along the way and emitting
// only the field at the end of the chain.
type pathMatcher struct {
	path []uint32
}

// parsePath turns "3/1/4" into the []uint32{3, 1, 4} a pathMatcher walks.
func parsePath(s string) ([]uint32, error) {
	parts := strings.Split(s, "/")
	ids := make([]uint32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid field number %q in path", p)
		}
		if n == 0 {
			return nil, errors.Errorf("field number 0 is never valid (path element %q)", p)
		}
		ids = append(ids, uint32(n))
	}
	if len(ids) == 0 {
		return nil, errors.New("path must name at least one field")
	}
	return ids, nil
}

func (p *pathMatcher) Match(depth int, field pbstream.FieldID) pbstream.Decision[pathTag] {
	if depth >= len(p.path) || field.Tag != p.path[depth] {
		return pbstream.Skip[pathTag]()
	}
	if depth == len(p.path)-1 {
		return pbstream.Emit[pathTag](pathTag{})
	}
	return pbstream.Enter[pathTag](pathTag{})
}

func (p *pathMatcher) Closed(depth int) (pathTag, bool) {
	return pathTag{}, false
}
