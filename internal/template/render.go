// Package template renders the notification email bodies from embedded
// HTML templates.
package template

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
)

//go:embed templates/*.html
var files embed.FS

var templates = htmltemplate.Must(htmltemplate.ParseFS(files, "templates/*.html"))

// SetupData fills the credential email sent when a reservation starts.
type SetupData struct {
	Username    string
	Password    string
	PlatformURL string
	BookingURL  string
}

// PhaseData fills the teardown and error emails.
type PhaseData struct {
	PlatformURL string
	BookingURL  string
}

// Render executes the named template (for example "teardown.html") with
// data and returns the HTML body.
func Render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return b.String(), nil
}
