// Command pixelbasher compares page renderings and writes diff bitmaps.
//
// Usage:
//
//	pixelbasher compare [options] ref1.bmp..refN.bmp cand1.bmp..candN.bmp
//	pixelbasher regress original.bmp current-diff.bmp previous-diff.bmp out.bmp
//	pixelbasher convert <input> <output.bmp>
//	pixelbasher info <input.bmp>
//	pixelbasher config [-config name]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mso-test/pixelbasher"
	"github.com/mso-test/pixelbasher/bitmap"
)

var (
	errUsage  = errors.New("usage")
	errFailed = errors.New("criteria failed")
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}
	logger := log.New(stderr, "pixelbasher: ", log.Ldate|log.Ltime)

	var err error
	switch args[0] {
	case "compare":
		err = runCompare(args[1:], stdout, stderr, logger)
	case "regress":
		err = runRegress(args[1:], stdout, stderr)
	case "convert":
		err = runConvert(args[1:], stdout, stderr)
	case "info":
		err = runInfo(args[1:], stdout, stderr)
	case "config":
		err = runConfig(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "pixelbasher: unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "pixelbasher: %v\n", err)
		return 2
	case errors.Is(err, errFailed):
		fmt.Fprintf(stderr, "pixelbasher: %v\n", err)
		return 3
	default:
		fmt.Fprintf(stderr, "pixelbasher: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  pixelbasher compare [options] ref1.bmp..refN.bmp cand1.bmp..candN.bmp
  pixelbasher regress original.bmp current-diff.bmp previous-diff.bmp out.bmp
  pixelbasher convert <input> <output.bmp>
  pixelbasher info <input.bmp>
  pixelbasher config [-config name]

Run "pixelbasher <command> -h" for command-specific options.
`)
}

// loadConfig returns the default configuration when name is empty.
func loadConfig(name string) (pixelbasher.Config, error) {
	if name == "" {
		return pixelbasher.NewConfig(), nil
	}
	return pixelbasher.LoadConfig(name)
}

func usageError(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, a...))
}

// --- compare ---

func runCompare(args []string, stdout, stderr io.Writer, logger *log.Logger) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outDir := fs.String("o", ".", "output directory for diff images")
	minor := fs.Bool("minor", false, "report minor differences near edges")
	swap := fs.Bool("swap", false, "also compare candidates against references")
	previous := fs.String("previous", "", "directory with the diffs of a previous run")
	csvPath := fs.String("csv", "", "append per-page statistics to this CSV file")
	configName := fs.String("config", "", "preset (default, strict) or YAML file")
	composite := fs.Bool("composite", false, "write side-by-side PNG composites")
	failIf := fs.String("fail_if", "", `exit with status 3 when a page matches, e.g. "red > 0"`)
	workers := fs.Int("workers", 0, "pages compared at once (0 = GOMAXPROCS)")
	document := fs.String("document", "", "document name for the report (default: first reference)")
	axis := fs.String("axis", pixelbasher.AxisImport, "comparison axis for the report (import or export)")
	verbose := fs.Bool("v", false, "log every page")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError("compare: %v", err)
	}
	n := fs.NArg()
	if n == 0 || n%2 != 0 {
		return usageError("compare: expected the same number of reference "+
			"and candidate pages, got %d files", n)
	}

	if *axis != pixelbasher.AxisImport && *axis != pixelbasher.AxisExport {
		return usageError("compare: unknown axis %q, expected %s or %s",
			*axis, pixelbasher.AxisImport, pixelbasher.AxisExport)
	}

	cfg, err := loadConfig(*configName)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "minor":
			cfg.MinorDifferences = *minor
		case "workers":
			cfg.Workers = *workers
		case "fail_if":
			cfg.FailIf = *failIf
		}
	})
	if err := cfg.Finalize(); err != nil {
		return err
	}

	refs, cands := fs.Args()[:n/2], fs.Args()[n/2:]
	doc := *document
	if doc == "" {
		doc = strings.TrimSuffix(filepath.Base(refs[0]), filepath.Ext(refs[0]))
	}
	var pairs []pixelbasher.PagePair
	for i := range refs {
		pairs = append(pairs, pixelbasher.PagePair{
			Name:      fmt.Sprintf("page-%03d", i+1),
			Document:  doc,
			Page:      i + 1,
			Axis:      *axis,
			Base:      refs[i],
			Candidate: cands[i],
		})
	}
	if *swap {
		for i := range refs {
			pairs = append(pairs, pixelbasher.PagePair{
				Name:      fmt.Sprintf("swapped-page-%03d", i+1),
				Document:  doc,
				Page:      i + 1,
				Axis:      pixelbasher.SwappedAxis(*axis),
				Base:      cands[i],
				Candidate: refs[i],
			})
		}
	}

	batch := &pixelbasher.Batch{
		Comparer:         cfg.NewComparer(),
		MinorDifferences: cfg.MinorDifferences,
		Workers:          cfg.Workers,
		OutDir:           *outDir,
		Previous:         *previous,
		Composite:        *composite,
	}
	start := time.Now()
	stats, err := batch.Run(context.Background(), pairs)
	if err != nil {
		return err
	}
	if *verbose {
		for _, s := range stats {
			logger.Printf("%v", s)
		}
	}
	sum := pixelbasher.Summarize(stats)
	logger.Printf("compared %d pages in %v: %d red on %d pages, %d yellow",
		sum.Pages, time.Since(start).Round(time.Millisecond),
		sum.TotalRed, sum.PagesWithRed, sum.TotalYellow)
	logger.Printf("red ratio mean %.6f stddev %.6f max %.6f",
		sum.MeanRedRatio, sum.StdDevRedRatio, sum.MaxRedRatio)

	for _, s := range stats {
		fmt.Fprintf(stdout, "%s\t%d\t%s\t%d\t%d\n", s.Document, s.Page, s.Axis, s.Red, s.Yellow)
	}

	if *csvPath != "" {
		if err := pixelbasher.AppendReport(*csvPath, stats); err != nil {
			return err
		}
	}

	crit := cfg.Criteria()
	if crit == nil {
		return nil
	}
	failed := 0
	for _, s := range stats {
		fails, err := crit.Fails(s)
		if err != nil {
			return err
		}
		if fails {
			failed++
			logger.Printf("page %d (%s) matches %q", s.Page, s.Axis, crit)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d pages match %q", errFailed, failed, len(stats), crit)
	}
	return nil
}

// --- regress ---

func runRegress(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("regress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configName := fs.String("config", "", "preset (default, strict) or YAML file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError("regress: %v", err)
	}
	if fs.NArg() != 4 {
		return usageError("regress: expected original, current diff, previous diff and output paths")
	}
	cfg, err := loadConfig(*configName)
	if err != nil {
		return err
	}
	opts := cfg.Thresholds.ImageOptions()

	var images [3]*bitmap.Image
	for i := range images {
		if images[i], err = bitmap.Read(fs.Arg(i), opts); err != nil {
			return err
		}
	}
	out := cfg.NewComparer().CompareRegressions(images[0], images[1], images[2])
	if err := out.Write(fs.Arg(3)); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "new %d\tpersistent %d\tfixed %d\n",
		out.RedCount(), out.BlueCount(), out.GreenCount())
	return nil
}

// --- convert ---

func runConvert(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError("convert: %v", err)
	}
	if fs.NArg() != 2 {
		return usageError("convert: expected input and output paths")
	}
	img, err := bitmap.LoadAny(fs.Arg(0), bitmap.DefaultOptions())
	if err != nil {
		return err
	}
	if err := img.Write(fs.Arg(1)); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %dx%d\n", fs.Arg(1), img.Width(), img.Height())
	return nil
}

// --- info ---

func runInfo(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configName := fs.String("config", "", "preset (default, strict) or YAML file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError("info: %v", err)
	}
	if fs.NArg() != 1 {
		return usageError("info: expected one input file")
	}
	cfg, err := loadConfig(*configName)
	if err != nil {
		return err
	}
	img, err := bitmap.Read(fs.Arg(0), cfg.Thresholds.ImageOptions())
	if err != nil {
		return err
	}
	fh, ih, ch := img.Headers()

	fmt.Fprintf(stdout, "File:           %s\n", fs.Arg(0))
	fmt.Fprintf(stdout, "Dimensions:     %dx%d\n", img.Width(), img.Height())
	fmt.Fprintf(stdout, "Bits/pixel:     %d\n", ih.BitCount)
	fmt.Fprintf(stdout, "Compression:    %d\n", ih.Compression)
	fmt.Fprintf(stdout, "Header size:    %d\n", ih.Size)
	fmt.Fprintf(stdout, "Data offset:    %d\n", fh.DataOffset)
	fmt.Fprintf(stdout, "Colour space:   %#08x\n", ch.ColourSpace)
	fmt.Fprintf(stdout, "Background:     %d\n", img.BackgroundValue())
	fmt.Fprintf(stdout, "Non-background: %d (%.4f%%)\n", img.NonBackgroundCount(), img.InkRatio()*100)
	fmt.Fprintf(stdout, "Sobel edges:    %d\n", img.SobelEdges().Count())
	fmt.Fprintf(stdout, "Near edge:      %d\n", img.BlurredEdges().Count())
	fmt.Fprintf(stdout, "Vertical edges: %d (%d in long runs)\n",
		img.VerticalEdges().Count(), img.FilteredVerticalEdges().Count())
	return nil
}

// --- config ---

func runConfig(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configName := fs.String("config", "", "preset (default, strict) or YAML file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError("config: %v", err)
	}
	cfg, err := loadConfig(*configName)
	if err != nil {
		return err
	}
	out, err := cfg.AsYAML()
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, out)
	return nil
}
