package iodata

import (
	"fmt"
	"os"
	"strconv"

	"github.com/billtubbs/pid-ref/cmd/global"
	"github.com/billtubbs/pid-ref/internal/iodata"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/billtubbs/pid-ref/internal/util"
	"github.com/spf13/cobra"
)

var (
	rtol float64
	atol float64
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay the I/O data files and compare the control signals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		suite, err := iodata.ReadSuiteFile(suiteFile)
		if err != nil {
			return err
		}

		results, err := iodata.Verify(suite, dataDir, rtol, atol)
		if err != nil {
			return err
		}

		failed := 0
		var rows [][]string
		for _, result := range results {
			status := "ok"
			firstMismatch := "-"
			if !result.Passed() {
				failed++
				status = "FAILED"
				m := result.Mismatches[0]
				firstMismatch = fmt.Sprintf("#%d: expected %s, got %s", m.Index, util.FormatFloat(m.Expected), util.FormatFloat(m.Actual))
			}
			rows = append(rows, []string{
				result.Name,
				result.File,
				strconv.Itoa(result.Samples),
				strconv.Itoa(len(result.Mismatches)),
				firstMismatch,
				status,
			})
		}

		tableString, err := global.RenderTable(
			[]string{"Test case", "File", "Samples", "Mismatches", "First mismatch", "Status"},
			rows,
		)
		if err != nil {
			return err
		}
		ui.Printfln(tableString)

		if failed > 0 {
			ui.Error("%d of %d test cases failed", failed, len(results))
			os.Exit(1)
		}
		ui.Success("All %d test cases passed", len(results))
		return nil
	},
}

func init() {
	verifyCmd.Flags().Float64Var(&rtol, "rtol", iodata.DefaultRtol, "Relative tolerance")
	verifyCmd.Flags().Float64Var(&atol, "atol", iodata.DefaultAtol, "Absolute tolerance")
	Command.AddCommand(verifyCmd)
}
