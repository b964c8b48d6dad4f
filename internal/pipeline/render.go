package pipeline

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/ppiankov/concordia/internal/events"
	"github.com/ppiankov/concordia/internal/experiment"
	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/store"
)

// Renderer prints result tables: boxed on a terminal, CSV otherwise
type Renderer struct {
	out io.Writer
	csv bool
}

// NewRenderer creates a new renderer writing to w
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{out: w, csv: !isTerminal(w)}
}

// NewCSVRenderer creates a renderer that always writes CSV
func NewCSVRenderer(w io.Writer) *Renderer {
	return &Renderer{out: w, csv: true}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// table writes headers and rows; columns listed in right are right-aligned
func (r *Renderer) table(title string, headers []string, rows [][]string, right ...int) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if !r.csv && title != "" {
		tw.SetTitle(title)
	}

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		tr := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				tr[i] = row[i]
			} else {
				tr[i] = ""
			}
		}
		tw.AppendRow(tr)
	}

	configs := make([]table.ColumnConfig, 0, len(right))
	for _, col := range right {
		configs = append(configs, table.ColumnConfig{
			Number:      col,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	if r.csv {
		_, _ = fmt.Fprintln(r.out, tw.RenderCSV())
		return
	}
	_, _ = fmt.Fprintln(r.out, tw.Render())
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// RenderEvents lists the registry
func (r *Renderer) RenderEvents(registry *events.Registry) {
	var rows [][]string
	for _, e := range registry.All() {
		rows = append(rows, []string{e.ID, e.Name, strings.Join(e.Keywords, ", ")})
	}
	r.table("Events", []string{"Event", "Name", "Keywords"}, rows)
}

// RenderJudgments summarizes consistency judgments
func (r *Renderer) RenderJudgments(judgments []model.Judgment) {
	var rows [][]string
	for _, j := range judgments {
		types := make([]string, 0, len(j.Contradictions))
		for _, c := range j.Contradictions {
			types = append(types, string(c.Type))
		}
		name := j.EventName
		if name == "" {
			name = j.Event
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(j.OverallConsistency),
			strconv.Itoa(j.LincolnClaimCount),
			strconv.Itoa(j.OtherClaimCount),
			strings.Join(types, ", "),
			j.ToneComparison,
		})
	}
	r.table("Consistency",
		[]string{"Event", "Score", "Lincoln claims", "Other claims", "Contradictions", "Tone"},
		rows, 2, 3, 4)
}

// RenderInterRater shows the strategy scores and their dispersion per event
func (r *Renderer) RenderInterRater(records []model.InterRater) {
	var rows [][]string
	for _, rec := range records {
		row := []string{rec.EventName}
		for _, st := range model.Strategies {
			if s, ok := rec.StrategyScores[st]; ok {
				row = append(row, strconv.Itoa(s))
			} else {
				row = append(row, "-")
			}
		}
		row = append(row, formatFloat(rec.Mean), formatFloat(rec.Std), strconv.Itoa(rec.Range))
		rows = append(rows, row)
	}

	headers := []string{"Event"}
	for _, st := range model.Strategies {
		headers = append(headers, string(st))
	}
	headers = append(headers, "Mean", "Std", "Range")
	r.table("Prompt robustness", headers, rows, 2, 3, 4, 5, 6, 7)
}

// RenderSelfConsistency shows repeated-sampling statistics per event
func (r *Renderer) RenderSelfConsistency(records []model.SelfConsistency) {
	var rows [][]string
	for _, rec := range records {
		runs := make([]string, len(rec.Runs))
		for i, s := range rec.Runs {
			runs[i] = strconv.Itoa(s)
		}
		rows = append(rows, []string{
			rec.EventName,
			strings.Join(runs, " "),
			formatFloat(rec.Mean),
			strconv.Itoa(rec.Min),
			strconv.Itoa(rec.Max),
			formatFloat(rec.Std),
			formatFloat(rec.CoefficientOfVariation),
		})
	}
	r.table("Self-consistency",
		[]string{"Event", "Runs", "Mean", "Min", "Max", "Std", "CV"},
		rows, 3, 4, 5, 6, 7)
}

// RenderKappa shows the pairwise agreement between strategies
func (r *Renderer) RenderKappa(rec model.KappaInterRater) {
	var rows [][]string
	for _, pair := range experiment.KappaPairs {
		k, ok := rec.Kappa[pair.Name]
		if !ok {
			continue
		}
		rows = append(rows, []string{pair.Name, formatFloat(k), strconv.Itoa(len(rec.Events))})
	}
	r.table("Cohen's kappa", []string{"Pair", "Kappa", "Events"}, rows, 2, 3)
}

// RenderCoverage shows how many records carry each required field
func (r *Renderer) RenderCoverage(cov *store.Coverage) {
	var rows [][]string
	for _, k := range model.RequiredDocumentFields {
		rows = append(rows, []string{k, strconv.Itoa(cov.NonEmpty[k]), strconv.Itoa(cov.Total)})
	}
	r.table(cov.Path, []string{"Field", "Non-empty", "Total"}, rows, 2, 3)

	if cov.OK() {
		return
	}
	ids := make([]string, 0, len(cov.Missing))
	for id := range cov.Missing {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	missing := make([][]string, 0, len(ids))
	for _, id := range ids {
		missing = append(missing, []string{id, strings.Join(cov.Missing[id], ", ")})
	}
	r.table("Missing keys", []string{"Record", "Keys"}, missing)
}
