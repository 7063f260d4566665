package iodata

import (
	"github.com/billtubbs/pid-ref/internal/iodata"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/spf13/cobra"
)

var (
	length         int
	keepSignals bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the base signals and the I/O data file of every test case",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		suite, err := iodata.ReadSuiteFile(suiteFile)
		if err != nil {
			return err
		}

		if !keepSignals {
			paths, err := iodata.GenerateBaseSignals(dataDir, length)
			if err != nil {
				return err
			}
			for _, path := range paths {
				ui.Info("Signal written to %s", path)
			}
		}

		paths, err := iodata.Generate(suite, dataDir, length)
		if err != nil {
			return err
		}
		for _, path := range paths {
			ui.Success("I/O data written to %s", path)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().IntVarP(&length, "length", "n", iodata.DefaultLength, "Number of samples")
	generateCmd.Flags().BoolVar(&keepSignals, "keep-signals", false, "Do not regenerate the base signal files")
	Command.AddCommand(generateCmd)
}
