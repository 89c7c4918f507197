// Package export renders the clinic price list as a downloadable PDF.
package export

import "errors"

// CategoryInfo holds price category metadata for rendering
type CategoryInfo struct {
	ID   string
	Name string
}

// ItemInfo holds a single price line for rendering
type ItemInfo struct {
	ID         string
	CategoryID string
	Name       string
	PriceFrom  int
	PriceTo    *int
	Note       string
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrContentUnavailable indicates the price list could not be loaded for export.
	ErrContentUnavailable = errors.New("export content unavailable")
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
)
