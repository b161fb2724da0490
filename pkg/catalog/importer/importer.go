// Package importer reads bloom-stage tables from CSV, XLSX and HTML sources.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"agrisense/pkg/catalog/service"
)

var ErrUnsupportedFormat = errors.New("unsupported stage table format")

// ReadFile picks the parser from the file extension.
func ReadFile(path, sheet string) ([]service.StageInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(filepath.Base(path), f, sheet)
}

// Read parses r as the format implied by name's extension (.csv, .xlsx, .html/.htm).
func Read(name string, r io.Reader, sheet string) ([]service.StageInput, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx":
		return ReadXLSX(r, sheet)
	case ".html", ".htm":
		return ReadHTML(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

func ReadCSV(r io.Reader) ([]service.StageInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows)
}

// ReadXLSX reads sheet, or the first sheet when sheet is empty.
func ReadXLSX(r io.Reader, sheet string) ([]service.StageInput, error) {
	x, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer x.Close()
	if sheet == "" {
		sheet = x.GetSheetName(0)
	}
	rows, err := x.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRows(rows)
}

// ReadHTML reads the first <table> of the document. The header is the row
// of <th> cells, or the first row when there are none.
func ReadHTML(r io.Reader) ([]service.StageInput, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("no <table> found")
	}
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(cell.Text()))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	return fromRows(rows)
}

func norm(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF") // BOM
	s = strings.ToLower(s)
	for _, cut := range []string{" ", "-", "_", "(", ")", "°c"} {
		s = strings.ReplaceAll(s, cut, "")
	}
	return s
}

func fromRows(rows [][]string) ([]service.StageInput, error) {
	if len(rows) == 0 {
		return nil, errors.New("empty stage table")
	}
	head := rows[0]
	hmap := map[string]int{}
	for i, h := range head {
		hmap[norm(h)] = i
	}
	// Accept multiple aliases
	findAny := func(keys ...string) int {
		for _, k := range keys {
			if idx, ok := hmap[norm(k)]; ok {
				return idx
			}
		}
		return -1
	}

	cName := findAny("name", "stage", "stage_name", "phase")
	cNum := findAny("number", "no", "#", "stage_number", "order")
	c10 := findAny("crit_temp_10", "t10", "10%", "10% kill", "crit10")
	c90 := findAny("crit_temp_90", "t90", "90%", "90% kill", "crit90")
	if cName == -1 || cNum == -1 || c10 == -1 || c90 == -1 {
		return nil, fmt.Errorf("stage table missing required columns; found headers %v, need name, number, crit_temp_10, crit_temp_90", head)
	}

	var out []service.StageInput
	for i, rec := range rows[1:] {
		// guard against short rows
		get := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		name := get(cName)
		num, errN := parseNumber(get(cNum))
		t10, err10 := parseTemp(get(c10))
		t90, err90 := parseTemp(get(c90))
		if name == "" || errN != nil || err10 != nil || err90 != nil {
			slog.Warn("stage import skipping row", "row", i+2, "values", rec)
			continue
		}
		out = append(out, service.StageInput{Name: name, Number: num, CritTemp10: t10, CritTemp90: t90})
	}
	if len(out) == 0 {
		return nil, errors.New("stage table has no usable rows")
	}
	return out, nil
}

func parseNumber(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != float64(int(f)) {
		return 0, fmt.Errorf("stage number %q is not whole", s)
	}
	return int(f), nil
}

func parseTemp(s string) (float64, error) {
	s = strings.ReplaceAll(s, "\u2212", "-") // typographic minus
	s = strings.TrimSuffix(strings.TrimSpace(s), "°C")
	s = strings.TrimSuffix(s, "°")
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("temperature %q is not a finite number", s)
	}
	return f, nil
}
