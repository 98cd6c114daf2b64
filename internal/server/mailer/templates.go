package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.txt
var templateFS embed.FS

const (
	TemplateRecoveryLink         = "recovery_link.txt"
	TemplatePasswordReset        = "password_reset.txt"
	TemplateRegistrationEmail    = "registration_email.txt"
	TemplateRegistrationExisting = "registration_existing.txt"
	TemplateRegistrationOK       = "registration_ok.txt"
	TemplateEmailChanged         = "email_changed.txt"
	TemplatePasswordChanged      = "password_changed.txt"
)

// Data is bound to every template. Fields a template does not use are ignored.
type Data struct {
	Platform string
	Name     string
	Email    string
	Link     string
}

var templates = template.Must(template.New("mail").Option("missingkey=error").ParseFS(templateFS, "templates/*.txt"))

// Render executes the named template with data.
func Render(name string, data Data) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
