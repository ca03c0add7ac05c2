package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
)

// candidateFiles are tried in order inside the catalog directory.
var candidateFiles = []string{
	"wines.csv",
	"wines.csv.gz",
	"wines.jsonl",
	"wines.parquet",
}

// LoadDir loads the first candidate file in dir that yields at least one row.
// A directory with no candidate files produces an empty catalog.
func LoadDir(dir string) (*Catalog, error) {
	for _, name := range candidateFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat catalog file %s: %w", path, err)
		}

		rows, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			slog.Debug("catalog file has no rows", "path", path)
			continue
		}

		records := make([]Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, RecordFromRow(row))
		}
		slog.Info("catalog loaded", "path", path, "records", len(records))
		return New(records), nil
	}

	slog.Info("no catalog file found; matcher disabled", "dir", dir)
	return New(nil), nil
}

// LoadFile reads raw rows from a CSV, gzip-compressed CSV, JSONL or Parquet file.
func LoadFile(path string) ([]map[string]string, error) {
	switch {
	case strings.HasSuffix(path, ".csv.gz"):
		return readGzipCSV(path)
	case strings.HasSuffix(path, ".csv"):
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open catalog file: %w", err)
		}
		defer f.Close()
		return readCSV(f)
	case strings.HasSuffix(path, ".jsonl"):
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open catalog file: %w", err)
		}
		defer f.Close()
		return readJSONL(f)
	case strings.HasSuffix(path, ".parquet"):
		return readParquet(path)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", filepath.Ext(path))
	}
}

func readGzipCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()

	return readCSV(zr)
}

func readCSV(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readJSONL(r io.Reader) ([]map[string]string, error) {
	scanner := bufio.NewScanner(r)

	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	var rows []map[string]string
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil || obj == nil {
			slog.Debug("skipping catalog line", "line", lineNum)
			continue
		}

		row := make(map[string]string, len(obj))
		for k, v := range obj {
			if s, ok := stringify(v); ok {
				row[k] = s
			}
		}
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl catalog: %w", err)
	}
	return rows, nil
}

// parquetRow lists every column alias the catalog understands. Columns absent
// from a file are read as null.
type parquetRow struct {
	WineName      string   `parquet:"wine_name,optional"`
	Name          string   `parquet:"name,optional"`
	WineryName    string   `parquet:"winery_name,optional"`
	Winery        string   `parquet:"winery,optional"`
	Country       string   `parquet:"country,optional"`
	Region1       string   `parquet:"region_1,optional"`
	Region        string   `parquet:"region,optional"`
	Grapes        string   `parquet:"grapes,optional"`
	Grape         string   `parquet:"grape,optional"`
	Rating        *float64 `parquet:"rating,optional"`
	AverageRating *float64 `parquet:"average_rating,optional"`
	NumReviews    *int64   `parquet:"num_reviews,optional"`
	Reviews       *int64   `parquet:"reviews,optional"`
}

func (p parquetRow) toRow() map[string]string {
	row := map[string]string{
		"wine_name":   p.WineName,
		"name":        p.Name,
		"winery_name": p.WineryName,
		"winery":      p.Winery,
		"country":     p.Country,
		"region_1":    p.Region1,
		"region":      p.Region,
		"grapes":      p.Grapes,
		"grape":       p.Grape,
	}
	if p.Rating != nil {
		row["rating"] = strconv.FormatFloat(*p.Rating, 'f', -1, 64)
	}
	if p.AverageRating != nil {
		row["average_rating"] = strconv.FormatFloat(*p.AverageRating, 'f', -1, 64)
	}
	if p.NumReviews != nil {
		row["num_reviews"] = strconv.FormatInt(*p.NumReviews, 10)
	}
	if p.Reviews != nil {
		row["reviews"] = strconv.FormatInt(*p.Reviews, 10)
	}
	return row
}

func readParquet(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[parquetRow](pf)
	defer reader.Close()

	var rows []map[string]string
	batch := make([]parquetRow, 128)
	for {
		n, err := reader.Read(batch)
		for _, r := range batch[:n] {
			rows = append(rows, r.toRow())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
	return rows, nil
}
