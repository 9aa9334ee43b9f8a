// Package dataset loads CSV datasets into Frames, inferring a column kind
// for each column: the configured date column is parsed as time, every
// other column is numeric when all its non-empty cells parse as decimals
// and string otherwise.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/energyops/forecast-guard/internal/errors"
	"github.com/energyops/forecast-guard/internal/models"
)

// DefaultDateFormats are the layouts tried for date cells when none are
// configured.
var DefaultDateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Loader reads CSV files into Frames.
type Loader struct {
	dateColumn  string
	dateFormats []string
	logger      *slog.Logger
}

// NewLoader creates a Loader that parses the named column as dates using
// the given layouts (DefaultDateFormats when empty).
func NewLoader(dateColumn string, dateFormats []string, logger *slog.Logger) *Loader {
	if len(dateFormats) == 0 {
		dateFormats = DefaultDateFormats
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dateColumn:  dateColumn,
		dateFormats: dateFormats,
		logger:      logger.With(slog.String("component", "dataset_loader")),
	}
}

// LoadFile reads the CSV file at path into a Frame.
func (l *Loader) LoadFile(ctx context.Context, path string) (*models.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.ClassStorageRead, "dataset_loader", "open "+path, err)
	}
	defer f.Close()

	frame, err := l.Load(ctx, f)
	if err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.Int("rows", frame.Len()),
		slog.Int("columns", len(frame.Columns())))
	return frame, nil
}

// Load reads CSV data into a Frame. The first record is the header; an
// empty cell is a missing value. Short rows are padded with missing
// values and cells beyond the header are dropped.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*models.Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ClassStorageRead, "dataset_loader", "read header",
			fmt.Errorf("empty dataset"))
	}
	if err != nil {
		return nil, errors.New(errors.ClassStorageRead, "dataset_loader", "read header", err)
	}

	raw := make([][]string, len(header))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New(errors.ClassStorageRead, "dataset_loader", "read row", err)
		}
		for i := range header {
			cell := ""
			if i < len(record) {
				cell = record[i]
			}
			raw[i] = append(raw[i], cell)
		}
	}

	cols := make([]models.Column, len(header))
	for i, name := range header {
		cols[i] = l.buildColumn(name, raw[i])
	}
	return models.NewFrame(cols...)
}

// buildColumn infers the column kind and parses its cells. The date column
// is always KindTime; a cell that fails date parsing becomes a missing
// value there. Other columns are numeric only when every non-empty cell
// parses as a decimal.
func (l *Loader) buildColumn(name string, cells []string) models.Column {
	if name == l.dateColumn {
		times := make([]time.Time, len(cells))
		for i, cell := range cells {
			if cell == "" {
				continue
			}
			if t, ok := l.parseDate(cell); ok {
				times[i] = t
			}
		}
		return models.Column{Name: name, Kind: models.KindTime, Times: times}
	}

	nums := make([]decimal.NullDecimal, len(cells))
	numeric := true
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		d, err := decimal.NewFromString(cell)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	if numeric {
		return models.Column{Name: name, Kind: models.KindNumeric, Nums: nums}
	}
	return models.Column{Name: name, Kind: models.KindString, Strs: append([]string(nil), cells...)}
}

func (l *Loader) parseDate(cell string) (time.Time, bool) {
	for _, layout := range l.dateFormats {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
