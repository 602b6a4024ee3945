package pixelbasher

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var reportHeader = []string{
	"document", "page", "axis", "total_pixels",
	"base_non_background", "candidate_non_background",
	"base_ratio", "candidate_ratio",
	"red", "yellow", "red_ratio", "yellow_ratio",
	"persistent", "fixed",
}

func (s PageStats) record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		s.Document,
		strconv.Itoa(s.Page),
		s.Axis,
		strconv.Itoa(s.TotalPixels),
		strconv.Itoa(s.BaseNonBackground),
		strconv.Itoa(s.CandidateNonBackground),
		f(s.BaseRatio),
		f(s.CandidateRatio),
		strconv.Itoa(s.Red),
		strconv.Itoa(s.Yellow),
		f(s.RedRatio),
		f(s.YellowRatio),
		strconv.Itoa(s.Persistent),
		strconv.Itoa(s.Fixed),
	}
}

// WriteReport writes one CSV row per page, preceded by the column names
// when header is set.
func WriteReport(w io.Writer, pages []PageStats, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(reportHeader); err != nil {
			return fmt.Errorf("writing report header: %w", err)
		}
	}
	for _, p := range pages {
		if err := cw.Write(p.record()); err != nil {
			return fmt.Errorf("writing report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendReport appends rows to the CSV file at path, creating it with a
// header row if it does not exist or is empty.
func AppendReport(path string, pages []PageStats) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening report: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("opening report: %w", err)
	}
	if err := WriteReport(f, pages, info.Size() == 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadReport parses a CSV report written by WriteReport.
func ReadReport(r io.Reader) ([]PageStats, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var pages []PageStats
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == reportHeader[0] {
			continue
		}
		p, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("report line %d: %w", i+1, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func parseRecord(rec []string) (PageStats, error) {
	if len(rec) != len(reportHeader) {
		return PageStats{}, fmt.Errorf("expected %d fields, got %d", len(reportHeader), len(rec))
	}
	var (
		p   = PageStats{Document: rec[0], Axis: rec[2]}
		err error
	)
	ints := []struct {
		dst *int
		src string
	}{
		{&p.Page, rec[1]},
		{&p.TotalPixels, rec[3]},
		{&p.BaseNonBackground, rec[4]},
		{&p.CandidateNonBackground, rec[5]},
		{&p.Red, rec[8]},
		{&p.Yellow, rec[9]},
		{&p.Persistent, rec[12]},
		{&p.Fixed, rec[13]},
	}
	for _, v := range ints {
		if *v.dst, err = strconv.Atoi(v.src); err != nil {
			return PageStats{}, err
		}
	}
	ratios := []struct {
		dst *float64
		src string
	}{
		{&p.BaseRatio, rec[6]},
		{&p.CandidateRatio, rec[7]},
		{&p.RedRatio, rec[10]},
		{&p.YellowRatio, rec[11]},
	}
	for _, v := range ratios {
		if *v.dst, err = strconv.ParseFloat(v.src, 64); err != nil {
			return PageStats{}, err
		}
	}
	return p, nil
}
