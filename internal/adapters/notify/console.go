package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
	"github.com/alejandrodnm/fuelpricer/internal/pipeline"
	"github.com/alejandrodnm/fuelpricer/internal/pricing"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
// Con table=true imprime además la tabla completa de candidatos.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime la recomendación en el modo configurado.
func (c *Console) Notify(_ context.Context, report domain.Report) error {
	rec := report.Recommendation
	cond := report.Conditions

	fmt.Fprintf(c.out, "[%s] price %.2f → %.2f  margin %.2f  volume %.2f  profit %.2f  (%d/%d candidates)\n",
		time.Now().Format("15:04:05"),
		cond.Price, rec.RecommendedPrice, report.Margin(),
		rec.ExpectedVolume, rec.ExpectedProfit,
		len(report.Candidates), report.GridSize,
	)

	if report.FilterFallback {
		fmt.Fprintln(c.out, "  ⚠ no candidate satisfied the business rules: full grid used, guardrails bypassed")
	}
	if cond.CompFallback {
		fmt.Fprintln(c.out, "  ⚠ competitor price missing: slot defaulted to 0, avg_comp_price is degenerate")
	}

	if c.table {
		c.printCandidates(report)
	}
	return nil
}

// printCandidates imprime cada candidato evaluado, marcando el elegido.
func (c *Console) printCandidates(report domain.Report) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Price", "Δ base", "Volume", "Profit", "")

	best := report.Recommendation.RecommendedPrice
	for i, cand := range report.Candidates {
		mark := ""
		if domain.Round2(cand.Price) == best {
			mark = "★"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.2f", cand.Price),
			fmt.Sprintf("%+.2f", cand.Price-report.Conditions.Price),
			fmt.Sprintf("%.2f", cand.Volume),
			fmt.Sprintf("%.2f", cand.Profit),
			mark,
		)
	}
	table.Render()
}

// PrintHistory imprime el histórico de recomendaciones.
func (c *Console) PrintHistory(entries []domain.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No recommendations recorded yet.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Fuel", "Base", "Cost", "Price", "Volume", "Profit", "Rules")

	var total float64
	for _, e := range entries {
		rules := "ok"
		if e.FilterFallback {
			rules = "bypassed"
		}
		fuel := e.FuelType
		if fuel == "" {
			fuel = "-"
		}
		table.Append(
			e.CreatedAt.Local().Format("02-01-2006 15:04"),
			fuel,
			fmt.Sprintf("%.2f", e.BasePrice),
			fmt.Sprintf("%.2f", e.Cost),
			fmt.Sprintf("%.2f", e.RecommendedPrice),
			fmt.Sprintf("%.2f", e.ExpectedVolume),
			fmt.Sprintf("%.2f", e.ExpectedProfit),
			rules,
		)
		total += e.ExpectedProfit
	}
	table.Render()

	fmt.Fprintf(c.out, "  %d recommendations, expected profit total %.2f\n", len(entries), total)
}

// PrintBatch imprime el resultado de un lote, una fila por observación.
func (c *Console) PrintBatch(items []pricing.BatchItem) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Row", "Fuel", "Base", "Price", "Volume", "Profit", "Error")

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
			table.Append(fmt.Sprintf("%d", it.Row), "-", "-", "-", "-", "-", truncate(it.Err.Error(), 60))
			continue
		}
		e := it.Result.Entry
		table.Append(
			fmt.Sprintf("%d", it.Row),
			e.FuelType,
			fmt.Sprintf("%.2f", e.BasePrice),
			fmt.Sprintf("%.2f", e.RecommendedPrice),
			fmt.Sprintf("%.2f", e.ExpectedVolume),
			fmt.Sprintf("%.2f", e.ExpectedProfit),
			"",
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "  %d rows, %d rejected\n", len(items), failed)
}

// PrintEvaluation imprime el error del modelo sobre el dataset procesado.
func (c *Console) PrintEvaluation(m pipeline.Metrics) {
	fmt.Fprintf(c.out, "Model evaluated on %d rows: MAE = %.2f  (mean volume %.2f, MAE %.1f%%)\n",
		m.Rows, m.MAE, m.MeanVolume, pct(m.MAE, m.MeanVolume))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
