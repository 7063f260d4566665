package iodata

import (
	"github.com/spf13/cobra"
)

var (
	suiteFile string
	dataDir   string
)

var Command = &cobra.Command{
	Use:              "iodata",
	Short:            "Generate and verify controller input/output data sets",
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(&suiteFile, "suite", "s", "test_cases.yaml", "Test case definition file")
	Command.PersistentFlags().StringVarP(&dataDir, "data", "d", "data", "Directory of signal and I/O data files")
}
