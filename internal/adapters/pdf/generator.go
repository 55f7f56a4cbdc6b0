// Package pdf renders a one-page receipt for a submitted time-off request:
// a header bar, the requester block, a table of the requested period and the
// reason, and a footer with the journal reference.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/timeoff-request/internal/domain"
)

var ErrNotSubmitted = errors.New("receipts exist only for submitted requests")

// Generator satisfies ports.ReceiptGenerator.
type Generator struct {
	// Title is printed in the header bar.
	Title string
}

func New() *Generator {
	return &Generator{Title: "TIME OFF REQUEST RECEIPT"}
}

// Generate writes the receipt for a to w.
func (g *Generator) Generate(ctx context.Context, a *domain.Attempt, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Outcome != domain.OutcomeSuccess {
		return ErrNotSubmitted
	}
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	drawReceipt(pdf, tr, g.Title, a)
	return pdf.Output(w)
}

func drawReceipt(pdf *fpdf.Fpdf, tr func(string) string, title string, a *domain.Attempt) {
	pageW, pageH := pdf.GetPageSize()
	marginL, marginT, marginR, marginB := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	// ── Header bar ───────────────────────────────────────────────────────────
	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, tr(title), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	y := marginT + 13

	// ── Requester ────────────────────────────────────────────────────────────
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, "REQUESTER", "LRT", 1, "L", true, 0, "")
	y += 5.5

	colHalf := contentW / 2
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 6.5, tr(a.Name), "LB", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(colHalf, 6.5, tr(a.Email), "RB", 1, "R", false, 0, "")
	y += 6.5 + 5

	// ── Period table ─────────────────────────────────────────────────────────
	labelW := contentW * 0.35
	valueW := contentW - labelW

	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(labelW, 7, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueW, 7, "Requested", "1", 1, "L", true, 0, "")
	y += 7
	pdf.SetTextColor(0, 0, 0)

	rows := [][2]string{
		{"Absence Type", a.AbsenceType},
		{"Start", formatMoment(a.StartDate, a.StartTime)},
		{"End", formatMoment(a.EndDate, a.EndTime)},
		{"Duration", duration(a)},
	}
	rowH := 6.5
	pdf.SetFont("Helvetica", "", 8.5)
	for i, r := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetXY(marginL, y)
		pdf.CellFormat(labelW, rowH, r[0], "1", 0, "L", true, 0, "")
		pdf.CellFormat(valueW, rowH, tr(r[1]), "1", 1, "L", true, 0, "")
		y += rowH
	}

	// ── Reason ───────────────────────────────────────────────────────────────
	y += 5
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, "REASON", "LRT", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(marginL)
	pdf.MultiCell(contentW, 5, tr(a.Reason), "LRB", "L", false)

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.SetXY(marginL, pageH-marginB-6)
	pdf.SetFont("Helvetica", "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(contentW/2, 5, fmt.Sprintf("Reference #%d", a.ID), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "Submitted "+a.CreatedAt.UTC().Format("Jan 02, 2006 15:04 MST"), "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// formatMoment renders "2024-05-01" + "09:00" as "Wed, May 1 2024 at 09:00",
// falling back to the raw values when they do not parse.
func formatMoment(date, clock string) string {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return date + " " + clock
	}
	return d.Format("Mon, Jan 2 2006") + " at " + clock
}

// duration counts calendar days, inclusive of both ends.
func duration(a *domain.Attempt) string {
	s, err1 := time.Parse(domain.DateLayout, a.StartDate)
	e, err2 := time.Parse(domain.DateLayout, a.EndDate)
	if err1 != nil || err2 != nil || e.Before(s) {
		return ""
	}
	days := int(e.Sub(s).Hours()/24) + 1
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
