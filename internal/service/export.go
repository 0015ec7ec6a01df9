package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/schema"
)

// ExportFormat selects the file format of a record export.
type ExportFormat string

// Supported export formats.
const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ExportResult is a rendered export file.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Export runs the query without pagination and renders every match in the
// requested format. Filters, sorts and search apply as in Query; page and
// length are ignored.
func (s *RecordService[T]) Export(ctx context.Context, req *models.QueryRequest, format ExportFormat) (*ExportResult, error) {
	q := *req
	q.Page = 0
	q.Length = nil

	res, err := s.Query(ctx, &q)
	if err != nil {
		return nil, err
	}

	fields := s.exportFields()
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Name
	}

	stamp := time.Now().UTC().Format("20060102-150405")

	switch format {
	case FormatCSV:
		data, err := s.renderCSV(headers, fields, res.Items)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Data:        data,
			ContentType: "text/csv; charset=utf-8",
			Filename:    fmt.Sprintf("%s-%s.csv", s.desc.Name, stamp),
		}, nil
	case FormatXLSX:
		data, err := s.renderXLSX(headers, fields, res.Items)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Data:        data,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    fmt.Sprintf("%s-%s.xlsx", s.desc.Name, stamp),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// exportFields returns the columns an export carries: every wire field
// except the domain reference.
func (s *RecordService[T]) exportFields() []*schema.Field[T] {
	var out []*schema.Field[T]
	for i := range s.desc.Fields {
		f := &s.desc.Fields[i]
		if f.Column == s.desc.DomainColumn {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (s *RecordService[T]) renderCSV(headers []string, fields []*schema.Field[T], items []*T) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	row := make([]string, len(fields))
	for _, rec := range items {
		for i, f := range fields {
			row[i] = cellString(f.Get(rec))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *RecordService[T]) renderXLSX(headers []string, fields []*schema.Field[T], items []*T) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)

	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return nil, fmt.Errorf("writing xlsx header: %w", err)
	}

	for r, rec := range items {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, fmt.Errorf("addressing xlsx row: %w", err)
		}
		row := make([]any, len(fields))
		for i, fld := range fields {
			row[i] = cellString(fld.Get(rec))
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing xlsx row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("rendering xlsx: %w", err)
	}

	return buf.Bytes(), nil
}

// cellString renders one field value for a spreadsheet cell. Nil pointers
// become empty cells.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case uuid.UUID:
		return models.CanonicalID(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case *bool:
		if x == nil {
			return ""
		}
		return strconv.FormatBool(*x)
	case *int64:
		if x == nil {
			return ""
		}
		return strconv.FormatInt(*x, 10)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	case *uuid.UUID:
		if x == nil {
			return ""
		}
		return models.CanonicalID(*x)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
