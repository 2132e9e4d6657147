package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/plugin"
)

var forceFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := config.DefaultDataDir()
		path := configPath(dataDir)

		if _, err := os.Stat(path); err == nil && !forceFlag {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		if err := config.DefaultConfig(dataDir).Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	},
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List installed action plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		mgr := plugin.NewManager(cfg.PluginDir)
		if err := mgr.Discover(); err != nil {
			return err
		}
		printPlugins(cmd.OutOrStdout(), mgr.PluginDir(), mgr.List())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
}

func printPlugins(w io.Writer, dir string, plugins []*plugin.Plugin) {
	if len(plugins) == 0 {
		fmt.Fprintf(w, "no plugins in %s\n", dir)
		return
	}
	for _, p := range plugins {
		fmt.Fprintf(w, "%-12s %-8s %s\n", p.Manifest.Name, p.Manifest.Version, strings.Join(p.Manifest.Actions, ", "))
	}
}
