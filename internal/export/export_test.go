package export

import (
	"context"
	"strings"
	"testing"
	"time"
)

type fakeDataStore struct {
	categories []CategoryInfo
	items      map[string][]ItemInfo
}

func (f *fakeDataStore) ListPriceCategories(ctx context.Context) ([]CategoryInfo, error) {
	return f.categories, nil
}

func (f *fakeDataStore) ListPriceItems(ctx context.Context, categoryID string) ([]ItemInfo, error) {
	return f.items[categoryID], nil
}

func intPtr(n int) *int { return &n }

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name     string
		from     int
		to       *int
		expected string
	}{
		{"single price", 450, nil, "450 kr."},
		{"range", 450, intPtr(600), "450 - 600 kr."},
		{"range collapsed when equal", 450, intPtr(450), "450 kr."},
		{"thousands separator", 1200, nil, "1.200 kr."},
		{"large range", 10500, intPtr(12000), "10.500 - 12.000 kr."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatPrice(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("FormatPrice(%d, %v) = %q, want %q", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "Hello-World"},
		{"prisliste", "prisliste"},
		{"Special!@#$%Chars", "SpecialChars"},
		{"", "prisliste"},
		{"Very Long Title That Exceeds Fifty Characters Limit", "Very-Long-Title-That-Exceeds-Fifty-Characters-Limi"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello world", "hello%20world"},       // Spaces encoded as %20, not +
		{"test+sign", "test%2Bsign"},           // + signs are encoded
		{"special<>", "special%3C%3E"},         // Special chars encoded
		{"normal-text.txt", "normal-text.txt"}, // Unreserved chars pass through
		{"æøå", "%C3%A6%C3%B8%C3%A5"},          // Multibyte chars encoded per byte
		{"", ""},                               // Empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := percentEncodeForDataURL(tt.input)
			if result != tt.expected {
				t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRenderPriceListHTML(t *testing.T) {
	data := TemplateData{
		ClinicName:  "Dyreklinikken",
		GeneratedAt: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
		Sections: []TemplateSection{
			{
				Name: "Konsultationer",
				Items: []TemplateItem{
					{Name: "Konsultation", Price: "450 kr."},
					{Name: "Sundhedstjek", Price: "350 kr.", Note: "Inkl. kloklip"},
				},
			},
		},
	}

	html, err := RenderPriceListHTML(data)
	if err != nil {
		t.Fatalf("RenderPriceListHTML() error = %v", err)
	}

	if !strings.Contains(html, "Dyreklinikken") {
		t.Error("HTML missing clinic name")
	}
	if !strings.Contains(html, "Konsultationer") {
		t.Error("HTML missing section heading")
	}
	if !strings.Contains(html, "450 kr.") {
		t.Error("HTML missing price")
	}
	if !strings.Contains(html, "Inkl. kloklip") {
		t.Error("HTML missing item note")
	}
	if !strings.Contains(html, "14.03.2025") {
		t.Error("HTML missing generation date")
	}
}

func TestBuildTemplateData(t *testing.T) {
	ds := &fakeDataStore{
		categories: []CategoryInfo{
			{ID: "pc-1", Name: "Konsultationer"},
			{ID: "pc-2", Name: "Tom kategori"},
			{ID: "pc-3", Name: "Kirurgi"},
		},
		items: map[string][]ItemInfo{
			"pc-1": {
				{ID: "pi-1", CategoryID: "pc-1", Name: "Konsultation", PriceFrom: 450},
			},
			"pc-3": {
				{ID: "pi-2", CategoryID: "pc-3", Name: "Kastration af kat", PriceFrom: 900, PriceTo: intPtr(1400)},
			},
		},
	}

	svc := NewService(ds, "Dyreklinikken")
	data, err := svc.buildTemplateData(context.Background())
	if err != nil {
		t.Fatalf("buildTemplateData() error = %v", err)
	}

	if len(data.Sections) != 2 {
		t.Fatalf("expected 2 sections (empty category skipped), got %d", len(data.Sections))
	}
	if data.Sections[0].Name != "Konsultationer" {
		t.Errorf("expected first section Konsultationer, got %s", data.Sections[0].Name)
	}
	if data.Sections[1].Items[0].Price != "900 - 1.400 kr." {
		t.Errorf("unexpected rendered price: %s", data.Sections[1].Items[0].Price)
	}
}
