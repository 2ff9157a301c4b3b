// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-pdf/fpdf"

	"github.com/danielhkuo/condo-survey/models"
)

// Renderer turns aggregated results into a downloadable document.
type Renderer interface {
	ContentType() string
	Extension() string
	Render(w io.Writer, res *models.Results) error
}

// Layout in millimetres on A4 portrait.
const (
	pageMargin = 15.0
	labelWidth = 60.0
	barWidth   = 90.0
	lineHeight = 7.0
)

// PDF renders results with one horizontal bar per option.
type PDF struct{}

func (PDF) ContentType() string { return "application/pdf" }

func (PDF) Extension() string { return "pdf" }

func (PDF) Render(w io.Writer, res *models.Results) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	s := res.Survey
	pdf.SetTitle(s.Title, true)
	pdf.SetCreator("condo-survey", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 9, tr(s.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Voting window: %s - %s",
		s.StartDate.UTC().Format("2006-01-02 15:04"),
		s.EndDate.UTC().Format("2006-01-02 15:04 MST"))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Status: "+s.Status, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Participants: "+humanize.Comma(int64(res.Participants)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated: "+res.ComputedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, q := range res.Questions {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 7, tr(strconv.Itoa(q.QuestionOrder)+". "+q.QuestionText), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)

		for _, o := range q.Options {
			y := pdf.GetY()
			pdf.CellFormat(labelWidth, lineHeight, tr(o.OptionText), "", 0, "L", false, 0, "")

			x := pdf.GetX()
			pdf.SetFillColor(230, 230, 230)
			pdf.Rect(x, y+1, barWidth, lineHeight-2, "F")
			if o.Percentage > 0 {
				pdf.SetFillColor(52, 101, 164)
				pdf.Rect(x, y+1, barWidth*o.Percentage/100, lineHeight-2, "F")
			}
			pdf.SetX(x + barWidth + 3)

			label := fmt.Sprintf("%s (%s%%)", humanize.Comma(int64(o.Count)), strconv.FormatFloat(o.Percentage, 'f', -1, 64))
			pdf.CellFormat(0, lineHeight, label, "", 1, "L", false, 0, "")
		}

		pdf.CellFormat(0, 6, "Total votes: "+humanize.Comma(int64(q.TotalVotes)), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return pdf.Output(w)
}
