package pixelbasher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/mso-test/pixelbasher/bitmap"
)

// PagePair names the two renderings of one page.
type PagePair struct {
	// Name is the base name of the files written for the page.
	Name      string
	Document  string
	Page      int
	Axis      string
	Base      string
	Candidate string
}

// Batch compares many pages concurrently and writes the diff images.
type Batch struct {
	Comparer         *Comparer
	MinorDifferences bool
	// Workers bounds the number of pages processed at once; 0 uses
	// GOMAXPROCS.
	Workers int
	OutDir  string
	// Previous, when set, is a directory holding the diffs of an earlier
	// run. A page with a previous diff also gets a regression image.
	Previous string
	// Composite writes a side-by-side PNG of base, candidate and diff.
	Composite bool
}

// DiffPath is where the diff image of pair is written.
func (b *Batch) DiffPath(pair PagePair) string {
	return filepath.Join(b.OutDir, pair.Name+"-diff.bmp")
}

// RegressionPath is where the regression image of pair is written.
func (b *Batch) RegressionPath(pair PagePair) string {
	return filepath.Join(b.OutDir, pair.Name+"-regression.bmp")
}

// CompositePath is where the composite of pair is written.
func (b *Batch) CompositePath(pair PagePair) string {
	return filepath.Join(b.OutDir, pair.Name+"-composite.png")
}

func (b *Batch) previousPath(pair PagePair) string {
	return filepath.Join(b.Previous, pair.Name+"-diff.bmp")
}

// Run processes every pair and returns their statistics in input order.
// The first failing page cancels the remaining work and its error is
// returned.
func (b *Batch) Run(ctx context.Context, pairs []PagePair) ([]PageStats, error) {
	if b.Comparer == nil {
		b.Comparer = NewComparer()
	}
	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(pairs))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]PageStats, len(pairs))
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				stats, err := b.processPage(pairs[i])
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("%s: %w", pairs[i].Name, err)
						cancel()
					})
					continue
				}
				results[i] = stats
			}
		}()
	}

feed:
	for i := range pairs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Batch) processPage(pair PagePair) (PageStats, error) {
	opts := b.Comparer.Thresholds.ImageOptions()
	base, err := bitmap.Read(pair.Base, opts)
	if err != nil {
		return PageStats{}, err
	}
	candidate, err := bitmap.Read(pair.Candidate, opts)
	if err != nil {
		return PageStats{}, err
	}

	diff := b.Comparer.Compare(base, candidate, b.MinorDifferences)
	if err := diff.Write(b.DiffPath(pair)); err != nil {
		return PageStats{}, err
	}
	stats := NewPageStats(pair.Document, pair.Page, pair.Axis, base, candidate, diff)

	if b.Previous != "" {
		previous, err := bitmap.Read(b.previousPath(pair), opts)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return PageStats{}, err
		default:
			regression := b.Comparer.CompareRegressions(base, diff, previous)
			if err := regression.Write(b.RegressionPath(pair)); err != nil {
				return PageStats{}, err
			}
			stats.AddRegression(regression)
		}
	}

	if b.Composite {
		panels := []Panel{
			{Name: "reference", Image: base},
			{Name: "candidate", Image: candidate},
			{Name: "diff", Image: diff},
		}
		err := SaveComposite(b.CompositePath(pair), panels, CompositeOptions{
			Legend:  true,
			Palette: b.Comparer.Palette,
		})
		if err != nil {
			return PageStats{}, err
		}
	}
	return stats, nil
}
