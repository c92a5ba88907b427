// Command dagpblinks lists the Merkle links inside a DAG-PB encoded node,
// streamed from a file or stdin without ever holding the whole node in
// memory.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/aristanetworks/pbstream"
)

var (
	app  = kingpin.New("dagpblinks", "List the Merkle links inside a DAG-PB encoded node.")
	file = app.Arg("file", "path to read; defaults to stdin").ExistingFile()

	logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	in := os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			level.Error(logger).Log("msg", "opening input", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	n, err := run(in, os.Stdout)
	if err != nil {
		level.Error(logger).Log("msg", "reading node failed", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "done", "links", n)
}

func run(in io.Reader, out io.Writer) (int, error) {
	matcher := dagpbMatcher{}
	opts := pbstream.DefaultOptions()
	scanner := pbstream.NewScanner[linkEventTag](matcher, opts.MaxDepth, pbstream.OuterUnbounded)
	gathered := pbstream.NewGathered[linkEventTag, Link](scanner, &linkGatherer{}, opts)
	adapter := pbstream.NewGatherAdapter[linkEventTag, Link](in, gathered, opts)

	count := 0
	for {
		l, err := adapter.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, errors.Wrap(err, "scanning node")
		}
		count++
		printLink(out, l)
	}
}

func printLink(out io.Writer, l Link) {
	fmt.Fprintf(out, "%s %s %s\n",
		color.YellowString(hex.EncodeToString(l.Hash)),
		l.Name,
		humanize.Bytes(l.Tsize))
}
