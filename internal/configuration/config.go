package configuration

import (
	"os"
	"time"

	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	DefaultSampleTime   = 1 * time.Second
	DefaultTxWindowSize = 10
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	Statistics StatisticsConfig `json:"statistics"`
	Api        ApiConfig        `json:"api"`

	Loops []LoopConfig `json:"loops"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("pidref")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/pidref/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues(viper.GetViper())
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("dbPath", "/etc/pidref/pidref.db")
	v.SetDefault("statistics.enabled", false)
	v.SetDefault("statistics.port", 9000)
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.host", "localhost")
	v.SetDefault("api.port", 9001)
	v.SetDefault("loops", []LoopConfig{})
}

// DetectAndReadConfigFile reads the config file and returns the path it was read from
func DetectAndReadConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		// config file is required, so we fail here
		ui.Fatal("Error reading config file, %s", err)
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed()
}

func LoadConfig() {
	err := loadConfig(viper.GetViper(), &CurrentConfig)
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}

func loadConfig(v *viper.Viper, config *Configuration) error {
	err := v.Unmarshal(config, viper.DecodeHook(decodeHooks()))
	if err != nil {
		return err
	}

	for i := range config.Loops {
		applyLoopDefaults(&config.Loops[i])
	}
	return nil
}

func applyLoopDefaults(loop *LoopConfig) {
	if loop.SampleTime == 0 {
		loop.SampleTime = DefaultSampleTime
	}
	if loop.TxWindowSize == 0 {
		loop.TxWindowSize = DefaultTxWindowSize
	}
}

// FindLoopConfig returns the loop configuration with the given id
func FindLoopConfig(id string) (*LoopConfig, bool) {
	for i := range CurrentConfig.Loops {
		if CurrentConfig.Loops[i].ID == id {
			return &CurrentConfig.Loops[i], true
		}
	}
	return nil, false
}
