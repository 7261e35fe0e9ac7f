package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tailor-engine/internal/pipeline"
)

var parseCmd = &cobra.Command{
	Use:   "parse <url>",
	Short: "Parse one posting and print the record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		noTrack, _ := cmd.Flags().GetBool("no-track")

		e, err := newEngine(opts, !noTrack)
		if err != nil {
			return err
		}
		defer e.Close()

		reqID := uuid.NewString()
		var res pipeline.Result
		if file != "" {
			b, rerr := os.ReadFile(file)
			if rerr != nil {
				return rerr
			}
			res, err = e.runner.RunText(cmd.Context(), reqID, args[0], string(b))
		} else {
			res, err = e.runner.Run(cmd.Context(), reqID, args[0])
		}
		if err != nil {
			e.log.Error("parse failed", zap.String("url", args[0]), zap.Error(err))
			return err
		}
		return printJSON(res)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("file", "f", "", "read the posting HTML or text from a file instead of fetching")
	parseCmd.Flags().Bool("no-track", false, "do not record the posting in the application tracker")
}

func printJSON(v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
