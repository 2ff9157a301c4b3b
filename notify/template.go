// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	policy = bluemonday.UGCPolicy()
)

func init() {
	policy.RequireNoReferrerOnLinks(true)
}

var mailTemplate = template.Must(template.New("survey").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hello {{.Name}},</p>
<p>A new survey is open for your vote: <strong>{{.Title}}</strong></p>
{{if .Description}}<div>{{.Description}}</div>{{end}}
<p>Voting closes {{.ClosesIn}} ({{.EndDate}}).</p>
<p><a href="{{.Link}}">Open the survey</a></p>
</body>
</html>
`))

type mailData struct {
	Name        string
	Title       string
	Description template.HTML
	ClosesIn    string
	EndDate     string
	Link        string
}

// RenderDescription turns survey markdown into sanitized HTML.
func RenderDescription(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(policy.Sanitize(src))
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}

// SurveyLink is the public address of a survey.
func SurveyLink(siteURL string, id int64) string {
	return strings.TrimRight(siteURL, "/") + "/surveys/" + strconv.FormatInt(id, 10)
}

// Render builds the announcement mail for one recipient.
func Render(it Item, siteURL string, now time.Time) (Message, error) {
	name := it.Recipient.DisplayName
	if name == "" {
		name = "resident"
	}

	data := mailData{
		Name:     name,
		Title:    it.Survey.Title,
		ClosesIn: humanize.RelTime(it.Survey.EndDate, now, "ago", "from now"),
		EndDate:  it.Survey.EndDate.UTC().Format("Jan 2, 2006 15:04 MST"),
		Link:     SurveyLink(siteURL, it.Survey.ID),
	}
	if it.Survey.Description != nil {
		data.Description = RenderDescription(*it.Survey.Description)
	}

	var buf bytes.Buffer
	if err := mailTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render mail for survey %d: %w", it.Survey.ID, err)
	}

	return Message{
		To:      it.Recipient.Email,
		Subject: "New survey: " + it.Survey.Title,
		HTML:    buf.String(),
	}, nil
}
