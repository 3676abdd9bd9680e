package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/cli"
)

var rateCmd = &cobra.Command{
	Use:   "rate <code>...",
	Short: "Show USD-per-unit exchange rates",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRate,
}

func init() {
	rootCmd.AddCommand(rateCmd)
}

func runRate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	rows := make([][]string, 0, len(args))
	for _, code := range args {
		code = strings.ToUpper(code)
		rate := app.Rates.GetRate(ctx, code)
		rows = append(rows, []string{code, strconv.FormatFloat(rate, 'f', 6, 64)})
	}

	fmt.Println(cli.RenderTable(cli.Table{
		Title:   "Exchange rates",
		Headers: []string{"Currency", "USD per unit"},
		Rows:    rows,
	}))
	if n := app.Rates.Degraded(); n > 0 {
		fmt.Println(cli.RenderStatus(false, fmt.Sprintf("rate API unavailable for %d lookup(s); identity rate used", n)))
	}
	return nil
}
