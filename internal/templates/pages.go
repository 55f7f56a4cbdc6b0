package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/csg33k/timeoff-request/internal/domain"
)

// Components are written against the templ runtime directly, so the tree
// builds without a `templ generate` step.

// FormState is everything the form panel needs to draw one FormView.
type FormState struct {
	Fields        domain.FormFields
	Focus         string
	Status        domain.Status
	SubmitEnabled bool
}

// Value returns the current value of a field.
func (s FormState) Value(name string) string { return s.Fields.Get(name) }

const styles = `
  :root { --ink:#0d1117; --paper:#f7f5f0; --rule:#cfc6b8; --muted:#6b5e4e; --ok:#2c6e49; --bad:#c0392b; }
  * { box-sizing:border-box; }
  body { background:var(--paper); color:var(--ink); font-family:system-ui, sans-serif; margin:0; }
  .wrap { max-width:720px; margin:0 auto; padding:32px 24px; }
  h1 { font-size:1.5rem; margin:0 0 24px; }
  .grid { display:grid; grid-template-columns:1fr 1fr; gap:12px 16px; }
  .full { grid-column:1/-1; }
  label { display:block; font-size:0.7rem; font-weight:600; letter-spacing:0.08em; text-transform:uppercase; color:var(--muted); margin-bottom:2px; }
  input, select, textarea { width:100%; padding:6px 8px; border:1px solid var(--rule); border-bottom:2px solid var(--ink); font:inherit; background:white; }
  .hp { position:absolute; left:-10000px; width:1px; height:1px; overflow:hidden; }
  .btn { margin-top:16px; padding:10px 20px; border:2px solid var(--ink); background:var(--ink); color:white; font-weight:600; cursor:pointer; }
  .btn[disabled] { opacity:0.5; cursor:progress; }
  .status { margin-top:16px; white-space:pre-line; min-height:1.5em; }
  .status.success { color:var(--ok); }
  .status.error { color:var(--bad); }
  table { width:100%; border-collapse:collapse; font-size:0.85rem; }
  th, td { text-align:left; padding:6px 8px; border-bottom:1px solid var(--rule); }
`

// layout is the document shell; the page body comes in as templ children.
func layout(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{ctx: ctx, w: w}
		p.raw(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>`)
		p.text(title)
		p.raw(`</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<style>`, styles, `</style>
</head>
<body>
<div class="wrap">
`)
		p.render(templ.GetChildren(ctx))
		p.raw(`
</div>
</body>
</html>`)
		return p.err
	})
}

func heading(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{ctx: ctx, w: w}
		p.raw("<h1>")
		p.text(text)
		p.raw("</h1>\n")
		return p.err
	})
}

// Page renders the full document around the form panel.
func Page(s FormState) templ.Component {
	body := templ.Join(heading("Time Off Request"), FormPanel(s))
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout("Time Off Request").Render(templ.WithChildren(ctx, body), w)
	})
}

type inputSpec struct {
	name, label, kind string
	full              bool
}

var inputs = []inputSpec{
	{domain.FieldName, "Name", "text", true},
	{domain.FieldEmail, "Email", "email", true},
	{domain.FieldStartDate, "Start Date", "date", false},
	{domain.FieldStartTime, "Start Time", "time", false},
	{domain.FieldEndDate, "End Date", "date", false},
	{domain.FieldEndTime, "End Time", "time", false},
}

// FormPanel renders only the #form-panel fragment, for htmx swaps.
func FormPanel(s FormState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{ctx: ctx, w: w}
		focus := func(name string) templ.Attributes {
			return templ.Attributes{"autofocus": s.Focus != "" && s.Focus == name}
		}

		p.raw(`<div id="form-panel">
<form id="timeOffForm" action="/submit" method="post" enctype="multipart/form-data"
      hx-post="/submit" hx-target="#form-panel" hx-swap="outerHTML" hx-encoding="multipart/form-data"
      hx-disabled-elt="#submitBtn" novalidate>
  <div class="grid">
`)
		for _, in := range inputs {
			if in.full {
				p.raw(`    <div class="full">`)
			} else {
				p.raw(`    <div>`)
			}
			p.raw("\n      ")
			label(p, in.name, in.label)
			p.raw(`      <input type="`, in.kind, `" id="`, in.name, `" name="`, in.name, `" value="`)
			p.text(s.Value(in.name))
			p.raw(`" required`)
			p.attrs(focus(in.name))
			p.raw(">\n    </div>\n")
		}

		p.raw(`    <div class="full">
      `)
		label(p, domain.FieldAbsenceType, "Absence Type")
		p.raw(`      <select id="absenceType" name="absenceType" required`)
		p.attrs(focus(domain.FieldAbsenceType))
		p.raw(">\n        <option value=\"\">Select…</option>\n")
		current := s.Value(domain.FieldAbsenceType)
		for _, opt := range domain.AbsenceTypes {
			p.raw(`        <option value="`)
			p.text(opt)
			p.raw(`"`)
			p.attrs(templ.Attributes{"selected": opt == current})
			p.raw(">")
			p.text(opt)
			p.raw("</option>\n")
		}
		p.raw(`      </select>
    </div>
    <div class="full">
      `)
		label(p, domain.FieldReason, "Reason")
		p.raw(`      <textarea id="reason" name="reason" rows="3" required`)
		p.attrs(focus(domain.FieldReason))
		p.raw(">")
		p.text(s.Value(domain.FieldReason))
		p.raw(`</textarea>
    </div>
  </div>
  <div class="hp" aria-hidden="true">
    <label for="website">Website</label>
    <input type="text" id="website" name="website" value="`)
		p.text(s.Value(domain.FieldWebsite))
		p.raw(`" tabindex="-1" autocomplete="off">
  </div>
  <input type="hidden" id="formSecret" name="formSecret" value="`)
		p.text(s.Value(domain.FieldFormSecret))
		p.raw(`">
  <button type="submit" id="submitBtn" class="btn"`)
		p.attrs(templ.Attributes{"disabled": !s.SubmitEnabled})
		p.raw(`>Submit Request</button>
  <div id="status" class="status `)
		p.text(string(s.Status.Style))
		p.raw(`" role="status" aria-live="polite">`, statusText(s.Status), `</div>
</form>
</div>
`)
		return p.err
	})
}

func label(p *writer, name, text string) {
	p.raw(`<label for="`, name, `">`)
	p.text(text)
	p.raw(" *</label>\n")
}

// Attempts renders the journal listing.
func Attempts(list []domain.Attempt) templ.Component {
	body := templ.Join(heading("Submission Journal"), attemptsTable(list))
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout("Time Off Requests · Journal").Render(templ.WithChildren(ctx, body), w)
	})
}

func attemptsTable(list []domain.Attempt) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{ctx: ctx, w: w}
		if len(list) == 0 {
			p.raw("<p>No attempts recorded yet.</p>\n")
			return p.err
		}
		p.raw(`<table>
  <thead><tr><th>#</th><th>When</th><th>Name</th><th>Period</th><th>Outcome</th><th></th></tr></thead>
  <tbody>
`)
		for _, a := range list {
			p.raw("  <tr>\n    <td>", fmt.Sprint(a.ID), "</td>\n    <td>")
			p.text(a.CreatedAt.Format("Jan 02, 2006 15:04"))
			p.raw("</td>\n    <td>")
			p.text(a.Name)
			p.raw("</td>\n    <td>")
			p.text(a.StartDate + " → " + a.EndDate)
			p.raw("</td>\n    <td>")
			p.text(a.Outcome.String())
			if a.ErrorKind != "" {
				p.text(" (" + string(a.ErrorKind) + ")")
			}
			p.raw("</td>\n    <td>")
			if a.Outcome == domain.OutcomeSuccess {
				href := templ.URL(fmt.Sprintf("/attempts/%d/receipt.pdf", a.ID))
				p.raw(`<a href="`)
				p.text(string(href))
				p.raw(`">Receipt</a>`)
			}
			p.raw("</td>\n  </tr>\n")
		}
		p.raw("  </tbody>\n</table>\n")
		return p.err
	})
}
