// Package pbstream decodes the protocol buffer wire format one field at a
// time, without ever requiring the whole encoded message to be resident in
// memory at once.
//
// The lowest layer, internal/wire, turns a byte window into a sequence of
// field headers: a tag, a wire type, and either an inline value or a
// length. Scanner sits above it holding a stack of currently-open
// length-delimited scopes and consulting a user-supplied Matcher before
// each field to decide whether to skip it, surface it as a Matched event,
// or descend into it as a nested scope. Gathered sits above Scanner,
// folding the Matched events belonging to one record into a Gatherer and
// handing back assembled values one record at a time. Adapter sits above
// all of it, pulling bytes from a blocking Source only when a Scanner
// genuinely needs more of them.
//
// Every layer is pull-based: a call either makes progress, asks for more
// bytes at the offset it has reached, or returns a terminal error. None of
// them retain input beyond what they are actively working on. A starved
// call keeps whatever progress it already made (a field header it acted
// on, part of a skip) and reports how many bytes it consumed; retrying from
// the Scanner's new Offset once more bytes are appended is always safe.
//
// This library consciously logs nothing on its own. Every failure reaches
// calling code through a returned error; the command-line tools under cmd/
// are where logging decisions get made.
package pbstream
