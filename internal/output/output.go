// Package output renders API results for the drugguard CLI, as tables for
// people or as indented JSON for scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Joeboy77/drug-guard-fe/drugguard"
	"github.com/Joeboy77/drug-guard-fe/internal/dashboard"
	"github.com/Joeboy77/drug-guard-fe/internal/metrics"
	"github.com/Joeboy77/drug-guard-fe/internal/scanhistory"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/tidwall/pretty"
)

var (
	authenticStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")) // Green
	suspectStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")) // Red
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))            // Yellow
	titleStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

// Printer writes results to w.
type Printer struct {
	w    io.Writer
	json bool
	now  func() time.Time
}

// New returns a Printer. With jsonMode set every method prints its value as
// JSON instead of a human layout.
func New(w io.Writer, jsonMode bool) *Printer {
	return &Printer{w: w, json: jsonMode, now: time.Now}
}

func (p *Printer) JSONMode() bool { return p.json }

// JSON prints v as indented JSON.
func (p *Printer) JSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = p.w.Write(pretty.Pretty(b))

	return err
}

// Message prints a single line, or {"message": msg} in JSON mode.
func (p *Printer) Message(msg string) error {
	if p.json {
		return p.JSON(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, msg)

	return err
}

// Lines prints one item per line, or a JSON array.
func (p *Printer) Lines(items []string) error {
	if p.json {
		return p.JSON(items)
	}
	for _, item := range items {
		if _, err := fmt.Fprintln(p.w, item); err != nil {
			return err
		}
	}

	return nil
}

// Aggregate prints a server-shaped snapshot under title.
func (p *Printer) Aggregate(title string, a *drugguard.Aggregate) error {
	if p.json {
		_, err := p.w.Write(pretty.Pretty(a.RawMessage))
		return err
	}
	fmt.Fprintln(p.w, titleStyle.Render(title))
	_, err := p.w.Write(pretty.Pretty(a.RawMessage))

	return err
}

func (p *Printer) Verification(res *drugguard.DrugVerificationResponse) error {
	if p.json {
		return p.JSON(res)
	}

	verdict := suspectStyle.Render("NOT VERIFIED")
	if res.IsAuthentic {
		verdict = authenticStyle.Render("AUTHENTIC")
	}
	fmt.Fprintf(p.w, "%s  %s\n", verdict, res.Message)
	fmt.Fprintf(p.w, "Confidence: %.0f%%\n", res.ConfidenceScore)
	for _, w := range res.Warnings {
		fmt.Fprintln(p.w, warningStyle.Render("! "+w))
	}
	if res.Drug != nil {
		return p.Drug(res.Drug)
	}

	return nil
}

func (p *Printer) Drug(d *drugguard.Drug) error {
	if p.json {
		return p.JSON(d)
	}

	t := p.newTable()
	t.AppendRows([]table.Row{
		{"Name", d.Name},
		{"Manufacturer", d.Manufacturer},
		{"Batch", d.BatchNumber},
		{"Registration", d.RegistrationNumber},
		{"Category", d.Category},
		{"Status", d.Status},
		{"Expires", p.relativeDate(d.ExpiryDate)},
	})
	t.Render()

	return nil
}

func (p *Printer) Drugs(drugs []drugguard.Drug) error {
	if p.json {
		return p.JSON(drugs)
	}
	if len(drugs) == 0 {
		return p.Message("No drugs found.")
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Manufacturer", "Batch", "Status", "Expires"})
	for _, d := range drugs {
		t.AppendRow(table.Row{d.ID, d.Name, d.Manufacturer, d.BatchNumber, d.Status, p.relativeDate(d.ExpiryDate)})
	}
	t.Render()

	return nil
}

// DrugPage prints a page of drugs with its position when the server sent
// paging metadata.
func (p *Printer) DrugPage(page *drugguard.Page[drugguard.Drug]) error {
	if p.json {
		return p.JSON(page)
	}
	if err := p.Drugs(page.Content); err != nil {
		return err
	}
	if page.Paged {
		fmt.Fprintf(p.w, "Page %d of %d (%s drugs)\n", page.Number+1, page.TotalPages, humanize.Comma(page.TotalElements))
	}

	return nil
}

func (p *Printer) Reports(reports []drugguard.DrugReport) error {
	if p.json {
		return p.JSON(reports)
	}
	if len(reports) == 0 {
		return p.Message("No reports found.")
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"ID", "Drug", "Issue", "Severity", "Status", "Filed"})
	for _, r := range reports {
		t.AppendRow(table.Row{r.ID, r.DrugName, r.IssueType, r.Severity, r.Status, p.relativeDate(r.CreatedAt)})
	}
	t.Render()

	return nil
}

func (p *Printer) Report(r *drugguard.DrugReport) error {
	if p.json {
		return p.JSON(r)
	}
	_, err := fmt.Fprintf(p.w, "Report #%d filed for %s (%s, %s)\n", r.ID, r.DrugName, r.Severity, r.Status)

	return err
}

func (p *Printer) ScanHistory(entries []scanhistory.Entry) error {
	if p.json {
		return p.JSON(entries)
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"Scanned", "QR Code", "Result", "Drug"})
	for _, e := range entries {
		result := "not verified"
		drug := ""
		if e.Result != nil {
			if e.Result.IsAuthentic {
				result = "authentic"
			}
			if e.Result.Drug != nil {
				drug = e.Result.Drug.Name
			}
		}
		t.AppendRow(table.Row{humanize.RelTime(e.ScannedAt, p.now(), "ago", "from now"), e.QRCode, result, drug})
	}
	t.Render()

	return nil
}

func (p *Printer) AdminSummary(s *dashboard.AdminSummary) error {
	if p.json {
		return p.JSON(map[string]any{
			"drugStatistics": s.DrugStats.RawMessage,
			"scanStatistics": s.ScanStats.RawMessage,
			"expiringSoon":   s.ExpiringSoon,
		})
	}

	if err := p.Aggregate("Drug statistics", s.DrugStats); err != nil {
		return err
	}
	if err := p.Aggregate("Scan statistics", s.ScanStats); err != nil {
		return err
	}
	fmt.Fprintln(p.w, titleStyle.Render(fmt.Sprintf("Expiring within %d days", dashboard.ExpiryWindowDays)))

	return p.Drugs(s.ExpiringSoon)
}

func (p *Printer) Analytics(a *dashboard.Analytics) error {
	if p.json {
		return p.JSON(map[string]any{
			"overview": a.Overview.Data,
			"drugs":    a.Drugs.Data,
			"scans":    a.Scans.Data,
			"fallback": map[string]bool{
				"overview": a.Overview.Fallback,
				"drugs":    a.Drugs.Fallback,
				"scans":    a.Scans.Fallback,
			},
		})
	}

	if a.Degraded() {
		fmt.Fprintln(p.w, warningStyle.Render("Limited analytics: some sections show sample data."))
	}

	o := a.Overview.Data
	t := p.newTable()
	t.SetTitle(sectionTitle("Overview", a.Overview.Fallback))
	t.AppendRows([]table.Row{
		{"Total drugs", humanize.Comma(o.TotalDrugs)},
		{"Active drugs", humanize.Comma(o.ActiveDrugs)},
		{"Total scans", humanize.Comma(o.TotalScans)},
		{"Recent scans", humanize.Comma(o.RecentScans)},
		{"Expiring soon", humanize.Comma(o.DrugsExpiringSoon)},
		{"Verification success", fmt.Sprintf("%.1f%%", o.VerificationSuccessRate)},
	})
	t.Render()

	d := a.Drugs.Data
	t = p.newTable()
	t.SetTitle(sectionTitle("Top manufacturers", a.Drugs.Fallback))
	for _, kv := range sortedCounts(d.TopManufacturers) {
		t.AppendRow(table.Row{kv.key, humanize.Comma(kv.count)})
	}
	t.AppendFooter(table.Row{"Expired / 30d / 90d", fmt.Sprintf("%d / %d / %d",
		d.ExpiryAnalysis.Expired, d.ExpiryAnalysis.Expiring30Days, d.ExpiryAnalysis.Expiring90Days)})
	t.Render()

	s := a.Scans.Data
	t = p.newTable()
	t.SetTitle(sectionTitle("Most scanned", a.Scans.Fallback))
	for _, sc := range s.TopScannedDrugs {
		t.AppendRow(table.Row{sc.DrugName, humanize.Comma(sc.ScanCount)})
	}
	t.AppendFooter(table.Row{"Authentic / fraudulent", fmt.Sprintf("%s / %s",
		humanize.Comma(s.AuthenticScans), humanize.Comma(s.FraudulentScans))})
	t.Render()

	return nil
}

func (p *Printer) Languages(langs []drugguard.LanguageInfo) error {
	if p.json {
		return p.JSON(langs)
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"Code", "Name"})
	for _, l := range langs {
		t.AppendRow(table.Row{l.Code, l.Name})
	}
	t.Render()

	return nil
}

func (p *Printer) Metrics(samples []metrics.Sample) error {
	if p.json {
		return p.JSON(samples)
	}

	lines := make([]string, 0, len(samples))
	for _, s := range samples {
		lines = append(lines, s.String())
	}
	_, err := fmt.Fprintf(p.w, "Requests: %s\n", strings.Join(lines, ", "))

	return err
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	return t
}

// relativeDate renders a server date as "3 weeks from now". Unparsable
// values are shown as sent.
func (p *Printer) relativeDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return humanize.RelTime(t, p.now(), "ago", "from now")
		}
	}

	return s
}

func sectionTitle(name string, fallback bool) string {
	if fallback {
		return name + " (sample data)"
	}

	return name
}

type keyCount struct {
	key   string
	count int64
}

// sortedCounts orders a distribution by count descending, then key.
func sortedCounts(m map[string]int64) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, v := range m {
		out = append(out, keyCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}

		return out[i].key < out[j].key
	})

	return out
}
