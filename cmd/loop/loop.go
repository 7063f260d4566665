package loop

import (
	"fmt"

	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:              "loop",
	Short:            "Control loop related commands",
	TraverseChildren: true,
}

func readConfig() {
	configPath := configuration.DetectAndReadConfigFile()
	ui.Info("Using configuration file at: %s", configPath)
	configuration.LoadConfig()
	if err := configuration.Validate(configPath); err != nil {
		ui.Fatal("%v", err)
	}
}

func getLoopConfig(id string) (*configuration.LoopConfig, error) {
	availableLoopIds := []string{}
	for _, loopConf := range configuration.CurrentConfig.Loops {
		availableLoopIds = append(availableLoopIds, loopConf.ID)
	}
	loopConf, ok := configuration.FindLoopConfig(id)
	if !ok {
		return nil, fmt.Errorf("no loop with id found: %s, options: %s", id, availableLoopIds)
	}
	return loopConf, nil
}
