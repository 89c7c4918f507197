package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"time"
)

var priceListTemplate = template.Must(template.New("pricelist").Funcs(template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("02.01.2006")
	},
}).Parse(priceListHTML))

// TemplateData holds data for price list rendering
type TemplateData struct {
	ClinicName  string
	GeneratedAt time.Time
	Sections    []TemplateSection
}

// TemplateSection is one price category with its lines
type TemplateSection struct {
	Name  string
	Items []TemplateItem
}

// TemplateItem is a single rendered price line
type TemplateItem struct {
	Name  string
	Price string
	Note  string
}

// FormatPrice renders a price range in Danish convention: "450 kr.",
// "450 - 600 kr.", with a period as thousands separator.
func FormatPrice(from int, to *int) string {
	if to != nil && *to != from {
		return fmt.Sprintf("%s - %s kr.", formatKroner(from), formatKroner(*to))
	}
	return formatKroner(from) + " kr."
}

func formatKroner(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		s = s[1:]
	}
	var buf bytes.Buffer
	if n < 0 {
		buf.WriteByte('-')
	}
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			buf.WriteByte('.')
		}
		buf.WriteRune(d)
	}
	return buf.String()
}

// RenderPriceListHTML renders the price list template with provided data
func RenderPriceListHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := priceListTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const priceListHTML = `<!DOCTYPE html>
<html lang="da">
<head>
  <meta charset="UTF-8">
  <title>Prisliste - {{.ClinicName}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.5; max-width: 800px; margin: 2rem auto; color: #222; }
    h1 { border-bottom: 2px solid #2c7a5b; padding-bottom: 0.5rem; }
    h2 { color: #2c7a5b; margin-top: 2rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    table { width: 100%; border-collapse: collapse; }
    td { padding: 0.4rem 0; border-bottom: 1px solid #eee; vertical-align: top; }
    td.price { text-align: right; white-space: nowrap; }
    .note { color: #666; font-size: 0.85em; }
    .footer { margin-top: 3rem; font-size: 0.85em; color: #666; }
  </style>
</head>
<body>
  <h1>Prisliste</h1>
  <div class="meta">{{.ClinicName}} | Opdateret {{formatDate .GeneratedAt}}</div>
  {{range .Sections}}
  <h2>{{.Name}}</h2>
  <table>
    {{range .Items}}
    <tr>
      <td>{{.Name}}{{if .Note}}<div class="note">{{.Note}}</div>{{end}}</td>
      <td class="price">{{.Price}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}
  <div class="footer">Alle priser er vejledende og inkl. moms. Ring til klinikken for et præcist tilbud.</div>
</body>
</html>`
