package pixelbasher

import (
	"fmt"
	"math"

	"github.com/mso-test/pixelbasher/bitmap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Axes a page comparison can be reported under.
const (
	AxisImport           = "import"
	AxisExport           = "export"
	AxisImportRegression = "import-regression"
	AxisExportRegression = "export-regression"
)

// SwappedAxis names the axis of a run with reference and candidate exchanged.
func SwappedAxis(axis string) string {
	return axis + "-swapped"
}

// RegressionAxis names the axis a page is reported under once it has been
// compared against a previous run.
func RegressionAxis(axis string) string {
	switch axis {
	case AxisImport:
		return AxisImportRegression
	case AxisExport:
		return AxisExportRegression
	}
	return axis + "-regression"
}

// PageStats summarizes the comparison of one page.
type PageStats struct {
	Document string
	Page     int
	Axis     string

	TotalPixels            int
	BaseNonBackground      int
	CandidateNonBackground int
	BaseRatio              float64
	CandidateRatio         float64

	Red         int
	Yellow      int
	RedRatio    float64
	YellowRatio float64

	// Persistent and Fixed are only set when a previous diff was compared.
	Persistent int
	Fixed      int
}

// NewPageStats collects the statistics of a diff produced from base and
// candidate. The ratios are relative to the overlapping region.
func NewPageStats(document string, page int, axis string, base, candidate, diff *bitmap.Image) PageStats {
	total := min(base.Width(), candidate.Width()) * min(base.Height(), candidate.Height())
	s := PageStats{
		Document:               document,
		Page:                   page,
		Axis:                   axis,
		TotalPixels:            total,
		BaseNonBackground:      base.NonBackgroundCount(),
		CandidateNonBackground: candidate.NonBackgroundCount(),
		BaseRatio:              base.InkRatio(),
		CandidateRatio:         candidate.InkRatio(),
		Red:                    diff.RedCount(),
		Yellow:                 diff.YellowCount(),
	}
	if total > 0 {
		s.RedRatio = float64(s.Red) / float64(total)
		s.YellowRatio = float64(s.Yellow) / float64(total)
	}
	return s
}

// AddRegression records the counters of a regression image and moves the
// page to the matching regression axis.
func (s *PageStats) AddRegression(regression *bitmap.Image) {
	s.Axis = RegressionAxis(s.Axis)
	s.Persistent = regression.BlueCount()
	s.Fixed = regression.GreenCount()
}

// InkDelta is the difference in ink coverage between candidate and base,
// a cheap signal for missing or duplicated content.
func (s PageStats) InkDelta() float64 {
	return s.CandidateRatio - s.BaseRatio
}

func (s PageStats) String() string {
	return fmt.Sprintf("%s page %d (%s): red %d (%.4f%%) yellow %d (%.4f%%)",
		s.Document, s.Page, s.Axis, s.Red, s.RedRatio*100, s.Yellow, s.YellowRatio*100)
}

// Summary aggregates the statistics of a run.
type Summary struct {
	Pages        int
	TotalRed     int
	TotalYellow  int
	PagesWithRed int

	MeanRedRatio      float64
	StdDevRedRatio    float64
	MaxRedRatio       float64
	MeanYellowRatio   float64
	StdDevYellowRatio float64
	MaxYellowRatio    float64
}

// Summarize computes run totals and the mean, standard deviation and
// maximum of the per-page ratios.
func Summarize(pages []PageStats) Summary {
	s := Summary{Pages: len(pages)}
	if len(pages) == 0 {
		return s
	}
	red := make([]float64, len(pages))
	yellow := make([]float64, len(pages))
	for i, p := range pages {
		red[i] = p.RedRatio
		yellow[i] = p.YellowRatio
		s.TotalRed += p.Red
		s.TotalYellow += p.Yellow
		if p.Red > 0 {
			s.PagesWithRed++
		}
	}
	s.MeanRedRatio, s.StdDevRedRatio = meanStdDev(red)
	s.MeanYellowRatio, s.StdDevYellowRatio = meanStdDev(yellow)
	s.MaxRedRatio = floats.Max(red)
	s.MaxYellowRatio = floats.Max(yellow)
	return s
}

func meanStdDev(x []float64) (float64, float64) {
	mean, std := stat.MeanStdDev(x, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}
