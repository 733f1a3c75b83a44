package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lsi-dev/lsi/config"
	"github.com/lsi-dev/lsi/render"
	"github.com/lsi-dev/lsi/storage"
)

var historyLimit int

// historyCmd shows past batch command runs recorded by -c / --get / --put.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past batch command runs",
	Long: `Show past batch command runs, most recent first.

Every -c, --get and --put run is recorded locally with the hosts it
touched and their exit codes.`,
	Example: `  lsi history            # last 20 runs
  lsi history --limit 5  # just the last 5`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Show at most this many runs")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	h, err := storage.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer h.Close()

	records, err := h.List(historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Seq", "Time", "Command", "Mode", "Hosts", "Failed"})
	for _, rec := range records {
		mode := "serial"
		if rec.Parallel {
			mode = "parallel"
		}
		failed := strings.Join(rec.Failed(), ", ")
		if failed != "" {
			failed = render.Red(failed)
		}
		t.AppendRow(table.Row{
			rec.Seq,
			rec.Time.Format("2006-01-02 15:04"),
			rec.Command,
			mode,
			len(rec.Hosts),
			failed,
		})
	}
	t.Render()
	return nil
}
