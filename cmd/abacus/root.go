package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/abacus/internal/cli"
	"github.com/aretw0/abacus/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "abacus",
	Short: "abacus is an exact arithmetic calculator",
	Long: `abacus evaluates arithmetic with exact integers and rationals, keeps a history
of every evaluation and serves it over a REPL, HTTP and MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./"+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().String("store", "", "History backend: memory, file or redis")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig resolves the configuration: defaults, file, environment, then flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("store") {
		cfg.Store.Backend, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, cfg.Validate()
}

// newRuntime loads the configuration and builds the services. Logs go to stderr.
func newRuntime(cmd *cobra.Command) (*cli.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewRuntime(commandContext(cmd), cfg, cmd.ErrOrStderr())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
