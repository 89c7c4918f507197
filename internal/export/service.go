package export

import (
	"context"
	"fmt"
	"time"
)

// DataStore defines the interface for data access
type DataStore interface {
	ListPriceCategories(ctx context.Context) ([]CategoryInfo, error)
	ListPriceItems(ctx context.Context, categoryID string) ([]ItemInfo, error)
}

// Service provides price list export functionality
type Service struct {
	store      DataStore
	clinicName string
	now        func() time.Time
}

// NewService creates a new export service
func NewService(store DataStore, clinicName string) *Service {
	return &Service{store: store, clinicName: clinicName, now: time.Now}
}

// ExportPriceList renders the current price list and converts it to PDF.
// Categories without any price lines are left out.
func (s *Service) ExportPriceList(ctx context.Context) (*Result, error) {
	data, err := s.buildTemplateData(ctx)
	if err != nil {
		return nil, err
	}

	html, err := RenderPriceListHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	return exportPDF(html, "prisliste")
}

func (s *Service) buildTemplateData(ctx context.Context) (TemplateData, error) {
	categories, err := s.store.ListPriceCategories(ctx)
	if err != nil {
		return TemplateData{}, fmt.Errorf("%w: list price categories: %v", ErrContentUnavailable, err)
	}

	data := TemplateData{
		ClinicName:  s.clinicName,
		GeneratedAt: s.now(),
	}

	for _, c := range categories {
		items, err := s.store.ListPriceItems(ctx, c.ID)
		if err != nil {
			return TemplateData{}, fmt.Errorf("%w: list price items: %v", ErrContentUnavailable, err)
		}
		if len(items) == 0 {
			continue
		}

		section := TemplateSection{Name: c.Name}
		for _, it := range items {
			section.Items = append(section.Items, TemplateItem{
				Name:  it.Name,
				Price: FormatPrice(it.PriceFrom, it.PriceTo),
				Note:  it.Note,
			})
		}
		data.Sections = append(data.Sections, section)
	}

	return data, nil
}
