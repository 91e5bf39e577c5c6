package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/pkg/errors"
	"github.com/singerma/cramtools"
	"github.com/singerma/cramtools/container"
)

func main() {
	var verbose, force bool
	flag.BoolVar(&verbose, "v", false, "print every alignment record")
	flag.BoolVar(&force, "f", false, "force overwrite of the summary file")
	flag.Parse()

	for _, cramPath := range flag.Args() {
		if err := dump(cramPath, verbose, force); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

func dump(cramPath string, verbose, force bool) error {
	if !osutil.Exists(cramPath) {
		return errors.Errorf("CRAM file %q not found", cramPath)
	}
	s, err := cram.Open(cramPath)
	if err != nil {
		return errors.WithStack(err)
	}

	sink := &countingSink{verbose: verbose}
	if err := s.Decode(sink); err != nil {
		return errors.WithStack(err)
	}

	summaryPath := pathutil.TrimExt(cramPath) + ".dump.txt"
	if !force && osutil.Exists(summaryPath) {
		return errors.Errorf("summary file %q already present; use -f flag to force overwrite", summaryPath)
	}
	f, err := os.Create(summaryPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s: %d records, %d bases\n", cramPath, sink.records, sink.bases); err != nil {
		return errors.WithStack(err)
	}
	fmt.Printf("%s: %d records, %d bases (summary written to %s)\n", cramPath, sink.records, sink.bases, summaryPath)
	return nil
}

// countingSink is a minimal cram.Sink that tallies records and bases;
// production SAM/BAM/FASTQ writers are external collaborators (spec.md
// §6) out of scope for this decoder.
type countingSink struct {
	verbose bool
	records int64
	bases   int64
}

func (c *countingSink) AddAlignment(r *container.Record) error {
	c.records++
	c.bases += int64(len(r.Bases))
	if c.verbose {
		fmt.Printf("%s\tflags=%#x\tseq=%d\tpos=%d\tmapq=%d\tlen=%d\n",
			r.ReadName, r.Flags, r.SequenceID, r.AlignmentStart, r.MappingQuality, r.ReadLength)
	}
	return nil
}

func (c *countingSink) Close() error {
	return nil
}
