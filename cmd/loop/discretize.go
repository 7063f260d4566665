package loop

import (
	"fmt"

	"github.com/billtubbs/pid-ref/cmd/global"
	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/billtubbs/pid-ref/internal/util"
	"github.com/spf13/cobra"
)

var (
	discretizeTfTs float64
	discretizeTx   []float64
)

var discretizeCmd = &cobra.Command{
	Use:   "discretize",
	Short: "Print the measurement filter coefficients for the given execution periods",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if discretizeTfTs <= 0 {
			return fmt.Errorf("tfts must be > 0, got %v", discretizeTfTs)
		}

		var rows [][]string
		for _, tx := range discretizeTx {
			if tx <= 0 {
				return fmt.Errorf("tx must be > 0, got %v", tx)
			}
			rows = append(rows, coefficientRow(tx, pid.Discretize(discretizeTfTs, tx)))
		}

		tableString, err := global.RenderTable(
			[]string{"Tx", "A11", "A12", "A21", "A22", "B1", "B2"},
			rows,
		)
		if err != nil {
			return err
		}
		ui.Printfln(tableString)
		return nil
	},
}

func init() {
	discretizeCmd.Flags().Float64Var(&discretizeTfTs, "tfts", pid.DefaultTfTs, "Filter time constant as a multiple of the sample time")
	discretizeCmd.Flags().Float64SliceVar(&discretizeTx, "tx", []float64{1}, "Execution period(s) normalized to the sample time")
	Command.AddCommand(discretizeCmd)
}

func coefficientRow(tx float64, c pid.Coefficients) []string {
	row := []string{util.FormatFloat(tx)}
	for _, value := range []float64{c.A11, c.A12, c.A21, c.A22, c.B1, c.B2} {
		row = append(row, util.FormatFloat(value))
	}
	return row
}
