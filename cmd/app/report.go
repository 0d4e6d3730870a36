package main

import (
	"fmt"
	"io"

	"AstroPull/internal/di"
	"AstroPull/internal/domain/models"
	"AstroPull/internal/services/pivot"
	"AstroPull/pkg/util"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	reportAddress   string
	reportAllLabels bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch, enrich and print the moon x sun P&L table",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

var priceCmd = &cobra.Command{
	Use:   "price <coin-id> <time>",
	Short: "Print the USD price of a coin on a UTC day",
	Long: `Look up a historical USD price.

<time> is unix seconds, YYYY-MM-DD or RFC3339.`,
	Args: cobra.ExactArgs(2),
	RunE: runPrice,
}

func init() {
	reportCmd.Flags().StringVar(&reportAddress, "address", "", "account address (defaults to the configured one)")
	reportCmd.Flags().BoolVar(&reportAllLabels, "all-labels", false, "show all 8 phases and 12 signs")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	labelStyle  = lipgloss.NewStyle().Padding(0, 1).Bold(true)
)

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tk, err := di.InitializeToolkit(cfg)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	defer tk.Close()

	s := models.NewSession(uuid.NewString())
	fr, err := tk.Dashboard.Fetch(cmd.Context(), s, reportAddress)
	if err != nil {
		return err
	}
	er, err := tk.Dashboard.Enrich(cmd.Context(), s, pivot.Options{AllLabels: reportAllLabels})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pulled %s %s fills for %s\n", humanize.Comma(int64(fr.Fills)), fr.Venue, fr.Address)
	if er.Pivot.Undated > 0 {
		fmt.Fprintf(out, "%s fills had no usable timestamp\n", humanize.Comma(int64(er.Pivot.Undated)))
	}
	writePivot(out, pivot.Format(er.Pivot))
	return nil
}

// writePivot renders f as a bordered table with totals.
func writePivot(w io.Writer, f pivot.Formatted) {
	if len(f.Rows) == 0 {
		fmt.Fprintln(w, "No dated fills to show.")
		return
	}

	headers := append([]string{"moon \\ sun"}, f.Cols...)
	headers = append(headers, "total")

	rows := make([][]string, 0, len(f.Rows)+1)
	for i, r := range f.Rows {
		row := append([]string{r}, f.Cells[i]...)
		rows = append(rows, append(row, f.RowTotals[i]))
	}
	totals := append([]string{"total"}, f.ColTotals...)
	rows = append(rows, append(totals, f.Total))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(w, t.Render())
}

func runPrice(cmd *cobra.Command, args []string) error {
	at, ok := util.ParseTime(args[1])
	if !ok {
		return fmt.Errorf("cannot parse time %q", args[1])
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tk, err := di.InitializeToolkit(cfg)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	defer tk.Close()

	q, err := tk.Prices.USD(cmd.Context(), args[0], at.Unix())
	if err != nil {
		return err
	}
	writeQuote(cmd.OutOrStdout(), q)
	return nil
}

func writeQuote(w io.Writer, q *models.PriceQuote) {
	src := "coingecko"
	if q.Cached {
		src = "cache"
	}
	fmt.Fprintf(w, "%s on %s: $%s (%s)\n", q.ID, q.Date, pivot.FormatCell(q.USD), src)
}
