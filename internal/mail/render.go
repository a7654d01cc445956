// Package mail renders the plan as an HTML email and sends it over SMTP or the Gmail API.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"dayplan/internal/service"
)

const (
	// Subject is the plan email subject.
	Subject = "Plano do Dia 🌞"

	// PlainHeading opens the plain-text alternative.
	PlainHeading = "Plano do Dia (versão texto)\n\n"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, Segoe UI, Roboto, sans-serif; background: #f5f5f7; color: #1d1d1f; margin: 0; padding: 24px; }
.card { max-width: 640px; margin: 0 auto; background: #fff; border-radius: 12px; padding: 24px 32px; }
h1 { font-size: 22px; margin: 0 0 4px; }
.date { color: #6e6e73; margin: 0 0 16px; }
li { margin: 4px 0; line-height: 1.4; }
</style>
</head>
<body>
<div class="card">
<h1>{{.Title}}</h1>
<p class="date">{{.Date}}</p>
{{.Body}}
</div>
</body>
</html>
`))

// RenderHTML converts the plan's markdown into a standalone HTML page.
// Raw HTML inside the plan is not passed through.
func RenderHTML(plan string, day time.Time) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(plan), &body); err != nil {
		return "", fmt.Errorf("mail: render markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTmpl.Execute(&page, struct {
		Title string
		Date  string
		Body  template.HTML
	}{
		Title: Subject,
		Date:  day.Format("02/01/2006"),
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("mail: render page: %w", err)
	}
	return page.String(), nil
}

var (
	plainBreaks = strings.NewReplacer(
		"<br>", "\n",
		"<br/>", "\n",
		"</li>", "\n",
		"</p>", "\n",
		"<strong>", "",
		"</strong>", "",
	)
	anyTag     = regexp.MustCompile(`<[^>]*>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// PlainFallback derives the plain-text alternative from the HTML body by
// crude tag stripping.
//
// Expectations:
//   - Starts with PlainHeading
//   - Turns <br>, <br/>, </li> and </p> into newlines
//   - Drops <strong> tags and any other remaining tag
//   - Decodes &amp; to &
func PlainFallback(htmlBody string) string {
	s := plainBreaks.Replace(htmlBody)
	if i := strings.Index(s, "<body>"); i >= 0 {
		s = s[i:]
	}
	s = anyTag.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = blankLines.ReplaceAllString(strings.TrimSpace(s), "\n\n")
	return PlainHeading + s + "\n"
}

// Compose builds the plan email for day.
func Compose(plan string, day time.Time) (service.Email, error) {
	html, err := RenderHTML(plan, day)
	if err != nil {
		return service.Email{}, err
	}
	return service.Email{
		Subject: Subject,
		HTML:    html,
		Plain:   PlainFallback(html),
	}, nil
}
