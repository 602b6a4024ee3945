package pixelbasher

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mso-test/pixelbasher/bitmap"
)

func TestNewPageStats(t *testing.T) {
	opts := DefaultThresholds().ImageOptions()
	base := bitmap.CreateSolidImage(20, 10, 255, opts)
	candidate := bitmap.CreateRectangleImage(20, 10, 0, 0, 2, 2, opts)
	diff := Compare(base, candidate, false)

	s := NewPageStats("letter.docx", 2, AxisImport, base, candidate, diff)
	if s.TotalPixels != 200 {
		t.Errorf("Expected 200 pixels, got %d", s.TotalPixels)
	}
	if s.Red != 4 || s.RedRatio != 0.02 {
		t.Errorf("Expected 4 red at ratio 0.02, got %d at %f", s.Red, s.RedRatio)
	}
	if s.BaseNonBackground != 0 || s.CandidateNonBackground != 4 {
		t.Errorf("Unexpected ink counts %d and %d", s.BaseNonBackground, s.CandidateNonBackground)
	}
	if math.Abs(s.InkDelta()-0.02) > 1e-9 {
		t.Errorf("Expected ink delta 0.02, got %f", s.InkDelta())
	}
	if !strings.Contains(s.String(), "letter.docx page 2") {
		t.Errorf("Unexpected summary line %q", s.String())
	}
}

func TestRegressionAxis(t *testing.T) {
	tests := []struct {
		axis string
		want string
	}{
		{AxisImport, AxisImportRegression},
		{AxisExport, AxisExportRegression},
		{SwappedAxis(AxisImport), "import-swapped-regression"},
	}
	for _, tt := range tests {
		if got := RegressionAxis(tt.axis); got != tt.want {
			t.Errorf("RegressionAxis(%q): expected %q, got %q", tt.axis, tt.want, got)
		}
	}

	regression := bitmap.New(4, 4, false)
	regression.IncreaseBlueCount(3)
	regression.IncreaseGreenCount(2)
	s := PageStats{Axis: AxisExport}
	s.AddRegression(regression)
	if s.Axis != AxisExportRegression {
		t.Errorf("Expected axis %q, got %q", AxisExportRegression, s.Axis)
	}
	if s.Persistent != 3 || s.Fixed != 2 {
		t.Errorf("Expected 3 persistent and 2 fixed, got %d and %d", s.Persistent, s.Fixed)
	}
}

func TestSummarize(t *testing.T) {
	pages := []PageStats{
		{Red: 10, RedRatio: 0.1, YellowRatio: 0.0},
		{Red: 0, RedRatio: 0.0, Yellow: 4, YellowRatio: 0.2},
		{Red: 30, RedRatio: 0.2, YellowRatio: 0.1},
	}
	s := Summarize(pages)
	if s.Pages != 3 || s.TotalRed != 40 || s.TotalYellow != 4 || s.PagesWithRed != 2 {
		t.Errorf("Unexpected totals %+v", s)
	}
	if math.Abs(s.MeanRedRatio-0.1) > 1e-9 {
		t.Errorf("Expected mean red ratio 0.1, got %f", s.MeanRedRatio)
	}
	if math.Abs(s.StdDevRedRatio-0.1) > 1e-9 {
		t.Errorf("Expected sample std dev 0.1, got %f", s.StdDevRedRatio)
	}
	if s.MaxRedRatio != 0.2 || s.MaxYellowRatio != 0.2 {
		t.Errorf("Unexpected maxima %f and %f", s.MaxRedRatio, s.MaxYellowRatio)
	}

	if one := Summarize(pages[:1]); one.StdDevRedRatio != 0 {
		t.Errorf("Expected zero spread for one page, got %f", one.StdDevRedRatio)
	}
	if empty := Summarize(nil); empty.Pages != 0 || empty.MaxRedRatio != 0 {
		t.Errorf("Expected empty summary, got %+v", empty)
	}
}

func TestReportRoundTrip(t *testing.T) {
	pages := []PageStats{
		{Document: "a.docx", Page: 1, Axis: AxisImport, TotalPixels: 100, Red: 3, RedRatio: 0.03},
		{Document: "a.docx", Page: 1, Axis: AxisImportRegression, Persistent: 2, Fixed: 1},
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, pages, true); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "document,page,axis,") {
		t.Errorf("Expected header row, got %q", buf.String())
	}

	got, err := ReadReport(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got))
	}
	if got[0] != pages[0] || got[1] != pages[1] {
		t.Errorf("Expected %+v, got %+v", pages, got)
	}
}

func TestAppendReportWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")
	page := PageStats{Document: "b.pptx", Page: 3, Axis: AxisExport}
	for i := 0; i < 2; i++ {
		if err := AppendReport(path, []PageStats{page}); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "document,page"); n != 1 {
		t.Errorf("Expected one header row, got %d", n)
	}
	rows, err := ReadReport(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(rows))
	}
}

func TestReadReportRejectsShortRows(t *testing.T) {
	if _, err := ReadReport(strings.NewReader("x,1,import\n")); err == nil {
		t.Error("Expected an error for a short row")
	}
}
