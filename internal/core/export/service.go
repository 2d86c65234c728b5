package export

import (
	"bytes"
	"fmt"
)

// Service picks the exporter for a format and renders into memory
type Service struct {
	exporters map[Format]Exporter
}

func NewService() *Service {
	return &Service{
		exporters: map[Format]Exporter{
			FormatPDF:   NewPDFExporter(),
			FormatExcel: NewExcelExporter(),
		},
	}
}

// Export returns the file bytes, its content type and extension.
func (s *Service) Export(report *Report, format Format) ([]byte, string, string, error) {
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, "", "", fmt.Errorf("unsupported export format: %s", format)
	}
	if len(report.Columns) == 0 {
		return nil, "", "", fmt.Errorf("report has no columns")
	}

	var buf bytes.Buffer
	if err := exporter.Export(report, &buf); err != nil {
		return nil, "", "", fmt.Errorf("%s export failed: %w", format, err)
	}
	return buf.Bytes(), exporter.ContentType(), exporter.Extension(), nil
}
