// bffctl is the operator CLI for the betting BFF: it validates configuration
// files before deployment and reports build version information.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	bff "github.com/kurax-labs/betting-bff"
	"github.com/kurax-labs/betting-bff/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:           "bffctl",
		Short:         "Operator tooling for the sports-betting BFF",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(validateCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Load and validate a BFF configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bff.LoadConfig(args[0])
			if err != nil {
				return err
			}
			if err := bff.ValidateConfig(*cfg); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			fmt.Printf("Config OK: upstream=%s cache=%t rate_limit=%d/%ds\n",
				cfg.Upstream.BaseURL,
				cfg.Cache.Enabled,
				cfg.RateLimit.MaxRequests,
				cfg.RateLimit.WindowSeconds,
			)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}
