package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type baseEmailData struct {
	Title   string
	Heading string
}

// QualityAlert is what the alert e-mail shows about one client.
type QualityAlert struct {
	ClientName string
	Score      int
	Threshold  int
	Issues     []string
}

type qualityAlertEmailData struct {
	baseEmailData
	QualityAlert
}

func renderEmailTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
