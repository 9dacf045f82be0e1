package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type leadAssignedEmailData struct {
	baseEmailData
	LeadAssignedEmail
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderLeadAssigned(data LeadAssignedEmail) (subject, content string, err error) {
	content, err = renderEmailTemplate("lead_assigned.html", leadAssignedEmailData{
		baseEmailData: baseEmailData{
			Title:      "New lead assigned",
			Heading:    "A new lead is waiting for you",
			Subheading: "Please contact the lead as soon as possible.",
		},
		LeadAssignedEmail: data,
	})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectLeadAssignedFmt, data.LeadName), content, nil
}
