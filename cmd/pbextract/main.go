// Command pbextract pulls one field out of a protobuf-encoded stream on
// stdin by its tag path, without ever buffering the whole message.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/aristanetworks/pbstream"
)

var (
	app  = kingpin.New("pbextract", "Extract one field from a protobuf-encoded stream by tag path.")
	path = app.Flag("path", `slash-separated chain of field numbers, e.g. "3/1"`).Required().String()
	raw  = app.Flag("raw", "print slice values as raw bytes instead of a quoted string").Bool()

	logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := run(os.Stdin, os.Stdout); err != nil {
		level.Error(logger).Log("msg", "extraction failed", "err", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	ids, err := parsePath(*path)
	if err != nil {
		return errors.Wrap(err, "parsing --path")
	}

	matcher := &pathMatcher{path: ids}
	scanner := pbstream.NewScanner[pathTag](matcher, pbstream.DefaultOptions().MaxDepth, pbstream.OuterUnbounded)
	adapter := pbstream.NewAdapter[pathTag](in, scanner, pbstream.DefaultOptions())

	count := 0
	for {
		m, err := adapter.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return errors.Wrap(err, "reading stream")
		}
		count++
		printMatch(out, adapter, m)
	}

	level.Info(logger).Log("msg", "extraction complete", "matches", count)
	return nil
}

func printMatch(out io.Writer, adapter *pbstream.Adapter[pathTag], m pbstream.Matched[pathTag]) {
	switch m.Value.Kind {
	case pbstream.VarintValue:
		fmt.Fprintf(out, "%s %d\n", color.GreenString("varint"), m.Value.Varint)
	case pbstream.Fixed32Value:
		fmt.Fprintf(out, "%s %d\n", color.GreenString("fixed32"), m.Value.Fixed32)
	case pbstream.Fixed64Value:
		fmt.Fprintf(out, "%s %d\n", color.GreenString("fixed64"), m.Value.Fixed64)
	case pbstream.SliceValue:
		data := adapter.Resolve(m.Value.SliceOffset, m.Value.SliceLen)
		if *raw {
			out.Write(data)
			out.Write([]byte{'\n'})
			return
		}
		fmt.Fprintf(out, "%s %s (%s)\n", color.CyanString("bytes"), humanize.Bytes(m.Value.SliceLen), strconv.Quote(string(data)))
	}
}
