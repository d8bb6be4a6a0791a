package main

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docqa/internal/batch"
	"github.com/spf13/cobra"
)

var (
	batchOut     string
	batchXLSX    string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch <questions.json>",
	Short: "Answer a question set and write a scored report",
	Long: "Reads a JSON array of questions (plain strings or objects with " +
		"query, expected and unanswerable fields), answers each one, and " +
		"writes the results to the output file. The output format follows " +
		"the file extension: .json or .xlsx.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		questions, err := batch.LoadQuestions(args[0])
		if err != nil {
			return err
		}

		runner := batch.NewRunner(a.pipeline, a.log, batchWorkers)
		results := runner.Run(cmd.Context(), questions)

		switch {
		case strings.HasSuffix(batchOut, ".xlsx"):
			err = batch.WriteXLSX(batchOut, results)
		case strings.HasSuffix(batchOut, ".json"):
			err = batch.WriteJSON(batchOut, results)
		default:
			err = fmt.Errorf("output must end in .json or .xlsx, got %q", batchOut)
		}
		if err != nil {
			return err
		}
		if batchXLSX != "" {
			if err := batch.WriteXLSX(batchXLSX, results); err != nil {
				return err
			}
		}

		sum := batch.Summarize(results)
		a.log.Info("batch complete",
			"total", sum.Total,
			"scored", sum.Scored,
			"correct", sum.Correct,
			"failed", sum.Failed,
			"out", batchOut,
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "results.json", "output file (.json or .xlsx)")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "also write a spreadsheet report to this path")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 2, "parallel questions")
}
