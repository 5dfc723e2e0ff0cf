package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/polymini/config"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "polymini",
		Short: "Evolve grid-bound polyomino organisms",
		Long: `polymini evolves species of polyomino bodies driven by small neural
controllers. Each epoch the species move on a bounded grid with a thermal
field, are scored against their instincts and bred into the next generation.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (empty = use defaults)")

	rootCmd.AddCommand(
		newRunCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
			} else {
				fmt.Printf("polymini version %s\n", version)
			}
		},
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}
