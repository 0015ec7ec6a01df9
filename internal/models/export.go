package models

import "fmt"

// Export formats.
const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

// ExportRequest asks for a tabular dump of the records a query matches. The
// embedded query is compiled exactly like a list query, domain scoping
// included; pagination fields are ignored and the full match is written.
type ExportRequest struct {
	QueryRequest
	Format string `json:"format"`
}

// Validate checks the export format on top of the query limits.
func (r *ExportRequest) Validate() error {
	if err := r.QueryRequest.Validate(); err != nil {
		return err
	}

	switch r.Format {
	case "":
		r.Format = ExportCSV
	case ExportCSV, ExportXLSX:
	default:
		return fmt.Errorf("unsupported export format %q", r.Format)
	}

	return nil
}
