package main

import (
	"fmt"

	"github.com/cuemby/invoker/pkg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or validate the invoker configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate a config file without starting the pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		fmt.Printf("config OK: maxActiveContainers=%d prewarm=%d operator=%s\n",
			cfg.Pool.MaxActiveContainers, len(cfg.Pool.Prewarm), cfg.Operator.ListenAddr)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
