package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tailor-engine/internal/pipeline"
)

type batchLine struct {
	URL    string           `json:"url"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <url>...",
	Short: "Fetch and parse several postings concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		noTrack, _ := cmd.Flags().GetBool("no-track")

		e, err := newEngine(opts, !noTrack)
		if err != nil {
			return err
		}
		defer e.Close()

		items := e.runner.RunMany(cmd.Context(), uuid.NewString(), args, concurrency)

		out := make([]batchLine, 0, len(items))
		failed := 0
		for _, it := range items {
			line := batchLine{URL: it.URL}
			if it.Err != nil {
				failed++
				line.Error = it.Err.Error()
			} else {
				res := it.Result
				line.Result = &res
			}
			out = append(out, line)
		}
		e.log.Info("batch finished", zap.Int("total", len(items)), zap.Int("failed", failed))
		return printJSON(out)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntP("concurrency", "c", pipeline.DefaultConcurrency, "postings in flight at once")
	batchCmd.Flags().Bool("no-track", false, "do not record the postings in the application tracker")
}
