package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, redacted(cfg))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Data directory:  %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Log directory:   %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "Database:        %s\n", cfg.DatabasePath())
			fmt.Fprintf(out, "API bind:        %s\n", cfg.Paths.APIBind)
			fmt.Fprintf(out, "OMDb base URL:   %s\n", cfg.OMDb.BaseURL)
			fmt.Fprintf(out, "OMDb API key:    %s\n", keyStatus(cfg.OMDb.APIKey))
			fmt.Fprintf(out, "Retry limit:     %d\n", cfg.Batch.RetryLimit)
			fmt.Fprintf(out, "Log level:       %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
			fmt.Fprintf(out, "Ntfy topic:      %s\n", topicStatus(cfg.Notifications.NtfyTopic))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the configuration as JSON")
	return cmd
}

// redacted masks the API key before the config leaves the process.
func redacted(cfg *config.Config) *config.Config {
	copied := *cfg
	if copied.OMDb.APIKey != "" {
		copied.OMDb.APIKey = "(set)"
	}
	return &copied
}

func keyStatus(key string) string {
	if strings.TrimSpace(key) == "" {
		return "(not set)"
	}
	return "(set)"
}

func topicStatus(topic string) string {
	if strings.TrimSpace(topic) == "" {
		return "(notifications disabled)"
	}
	return topic
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "path", "", "Where to write the sample config")
	return cmd
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file location",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, exists, err := config.Load("")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			if !exists {
				fmt.Fprintln(cmd.ErrOrStderr(), "(file does not exist yet; run `marquee config init`)")
			}
			return nil
		},
	}
}
