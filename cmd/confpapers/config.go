package main

import (
	"fmt"
	"strings"

	"github.com/matsen/confpapers/internal/config"
	"github.com/matsen/confpapers/internal/loader"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration and where it came from.

Settings are read from the config file, then a .env file in the working
directory, then the environment, then command-line flags:
  ` + config.EnvDataRoot + `      Directory holding the conference folders
  ` + config.EnvFallbackYear + `  Year for papers (and empty conferences) without one
  ` + config.EnvLogMode + `       Log mode: dev, prod or nop`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	ConfigPath   string          `json:"config_path"`
	DataRoot     string          `json:"data_root"`
	DataRootOK   bool            `json:"data_root_ok"`
	Problem      string          `json:"problem,omitempty"`
	FallbackYear int             `json:"fallback_year"`
	LogMode      string          `json:"log_mode"`
	StrictRows   bool            `json:"strict_rows"`
	Conferences  loader.Registry `json:"conferences"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	resp := ConfigResponse{
		ConfigPath:   config.Path(),
		DataRoot:     cfg.DataRoot,
		DataRootOK:   true,
		FallbackYear: cfg.FallbackYear,
		LogMode:      cfg.LogMode,
		StrictRows:   cfg.StrictRows,
		Conferences:  cfg.Registry(),
	}
	if err := cfg.ValidateDataRoot(); err != nil {
		resp.DataRootOK = false
		resp.Problem = err.Error()
	}

	if !humanOutput {
		return outputJSON(resp)
	}

	fmt.Printf("config-file:   %s\n", resp.ConfigPath)
	fmt.Printf("data-root:     %s\n", resp.DataRoot)
	if !resp.DataRootOK {
		fmt.Printf("               (%s)\n", resp.Problem)
	}
	fmt.Printf("fallback-year: %d\n", resp.FallbackYear)
	fmt.Printf("log-mode:      %s\n", resp.LogMode)
	fmt.Printf("strict-rows:   %v\n", resp.StrictRows)
	fmt.Printf("conferences:   %s\n", strings.Join(resp.Conferences.Names(), ", "))
	return nil
}
