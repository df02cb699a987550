package mail

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/yuin/goldmark"
)

//go:embed templates/*.md
var templateFS embed.FS

// Template names an embedded Markdown email template
type Template string

const (
	TemplateConfirm       Template = "confirm"
	TemplateResetPassword Template = "reset_password"
	TemplateChangeEmail   Template = "change_email"
)

var subjects = map[Template]string{
	TemplateConfirm:       "Confirm Your Account",
	TemplateResetPassword: "Reset Your Password",
	TemplateChangeEmail:   "Confirm Your Email Address",
}

var templates = template.Must(template.New("mail").Option("missingkey=zero").ParseFS(templateFS, "templates/*.md"))

// Subject returns the subject line of tmpl
func (t Template) Subject() string {
	if s, ok := subjects[t]; ok {
		return s
	}
	return string(t)
}

// Render executes tmpl with data and returns the Markdown text and its HTML rendering
func Render(tmpl Template, data map[string]string) (text, html string, err error) {
	var md bytes.Buffer
	if err := templates.ExecuteTemplate(&md, string(tmpl)+".md", data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template %s: %w", tmpl, err)
	}

	var out bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &out); err != nil {
		return "", "", fmt.Errorf("failed to render email template %s: %w", tmpl, err)
	}

	return md.String(), out.String(), nil
}
