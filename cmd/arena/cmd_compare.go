package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/arena/internal/comparison"
	"github.com/spboyer/arena/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultTableWidth = 80
	minNameWidth      = 12
	maxNameWidth      = 40
)

func newCompareCommand() *cobra.Command {
	var crossRun bool
	var format string
	var storage storageFlags

	cmd := &cobra.Command{
		Use:   "compare <evaluation-a> <evaluation-b>",
		Short: "Compare two evaluations",
		Long: `Compare evaluation B against baseline evaluation A.

Evaluations are looked up by ID in the configured store (see .arena.yaml),
or in the store selected by --db / --results-dir. By default both evaluations
must belong to the same test run; --cross-run lifts that restriction to compare
prompt versions or evaluator changes across runs.

The report shows overall score and success rate deltas, per-criterion and
per-persona movement, any change to the criteria configuration, and a verdict.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be table or json", format)
			}

			cfg, err := loadProjectConfig()
			if err != nil {
				return err
			}
			storage.apply(&cfg.Storage)

			reader, _, closeStore, err := openStorage(cfg.Storage)
			if err != nil {
				return err
			}
			defer closeStore()

			g, ctx := errgroup.WithContext(cmd.Context())
			recs := make([]*models.EvaluationRecord, 2)
			for i, id := range args {
				g.Go(func() error {
					rec, err := reader.GetEvaluation(ctx, id)
					if err != nil {
						return fmt.Errorf("loading evaluation %s: %w", id, err)
					}
					recs[i] = rec
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			opts := comparisonOptions(cfg.Comparison)
			opts.RequireSameRun = !crossRun
			report, err := comparison.Compare(recs[0], recs[1], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				return printReportJSON(out, report)
			}
			return printReportTable(out, report, tableWidth(out))
		},
	}

	cmd.Flags().BoolVar(&crossRun, "cross-run", false, "Allow evaluations from different test runs")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	storage.register(cmd)

	return cmd
}

// tableWidth is the terminal width when out is a TTY.
func tableWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return defaultTableWidth
}

func printReportJSON(out io.Writer, r *comparison.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comparison report: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func printReportTable(out io.Writer, r *comparison.Report, width int) error {
	p := message.NewPrinter(language.English)
	nameWidth := min(max(width-40, minNameWidth), maxNameWidth)
	rule := strings.Repeat("=", min(width, 70))
	thin := strings.Repeat("-", min(width, 70))

	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(p.Sprintf(format, args...))
		b.WriteByte('\n')
	}
	section := func(title string) {
		line("%s", thin)
		line(" %s", title)
		line("%s", thin)
	}
	row := func(name, a, bv, delta string) {
		line("  %s  %10s  %10s  %s", cell(name, nameWidth), a, bv, delta)
	}

	line("%s", rule)
	line(" COMPARISON REPORT (%s)", r.Mode)
	line("%s", rule)
	line("  A: %s  (run %s, %s)", r.EvaluationA.ID, r.EvaluationA.TestRunID, r.EvaluationA.EvaluatorName)
	line("  B: %s  (run %s, %s)", r.EvaluationB.ID, r.EvaluationB.TestRunID, r.EvaluationB.EvaluatorName)
	line("  Verdict: %s  (%d improved, %d regressed, %d unchanged)",
		verdictLabel(r.Verdict.BetterEvaluation), r.Verdict.Improvements, r.Verdict.Regressions, r.Verdict.Unchanged)
	line("")

	section("OVERALL")
	row("Metric", "A", "B", "Delta")
	d := r.Deltas
	row("Score",
		p.Sprintf("%.2f", r.EvaluationA.OverallScore),
		p.Sprintf("%.2f", r.EvaluationB.OverallScore),
		p.Sprintf("%+.2f (%+.1f%%)", d.OverallScore.Value, d.OverallScore.Percent))
	row("Success Rate",
		p.Sprintf("%.1f%%", r.EvaluationA.SuccessRate*100),
		p.Sprintf("%.1f%%", r.EvaluationB.SuccessRate*100),
		p.Sprintf("%+.1f pts", d.SuccessRate.Value))
	row("Battles",
		p.Sprintf("%d", r.EvaluationA.TotalBattles),
		p.Sprintf("%d", r.EvaluationB.TotalBattles),
		"")
	if ci := d.PersonaConfidence; ci != nil {
		sig := ""
		if ci.Significant {
			sig = " *"
		}
		line("  %.0f%% CI of persona delta: [%+.2f, %+.2f]%s", ci.ConfidenceLevel*100, ci.Lower, ci.Upper, sig)
	}
	line("")

	if len(d.Criteria) > 0 {
		section("CRITERIA")
		row("Criterion", "A", "B", "Delta")
		for _, c := range d.Criteria {
			row(c.Name, p.Sprintf("%.2f", c.A), p.Sprintf("%.2f", c.B),
				p.Sprintf("%s %+.2f", directionIcon(c.Direction), c.Delta))
		}
		line("")
	}

	if len(r.PerPersona) > 0 {
		section("PERSONAS")
		row("Persona", "A", "B", "Delta")
		for _, pc := range r.PerPersona {
			row(pc.PersonaName, p.Sprintf("%.2f", pc.ScoreA), p.Sprintf("%.2f", pc.ScoreB),
				p.Sprintf("%+.2f", pc.Delta))
		}
		line("")
	}

	if diff := r.SnapshotDiff; diff != nil && !diff.SameConfig {
		section("CRITERIA CONFIGURATION CHANGED")
		if len(diff.AddedCriteria) > 0 {
			line("  added:   %s", strings.Join(diff.AddedCriteria, ", "))
		}
		if len(diff.RemovedCriteria) > 0 {
			line("  removed: %s", strings.Join(diff.RemovedCriteria, ", "))
		}
		for _, wc := range diff.WeightChanges {
			line("  weight:  %s %.2f → %.2f", wc.Name, wc.WeightA, wc.WeightB)
		}
		line("")
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// cell truncates or pads s to exactly width terminal columns.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func directionIcon(d comparison.Direction) string {
	switch d {
	case comparison.DirectionUp:
		return "↑"
	case comparison.DirectionDown:
		return "↓"
	default:
		return "="
	}
}

func verdictLabel(w comparison.Winner) string {
	switch w {
	case comparison.WinnerA:
		return "A is better"
	case comparison.WinnerB:
		return "B is better"
	default:
		return "tie"
	}
}
