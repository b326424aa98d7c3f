package main

import (
	"log/slog"
	"os"

	"github.com/aretw0/dyntext/internal/cli"
	"github.com/aretw0/dyntext/internal/config"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func addLabelFlags(cmd *cobra.Command) {
	cmd.Flags().String("policy", "", "Update policy: reset-then-add, reset-then-add-reverse or delete-then-add")
	cmd.Flags().Int("min", 0, "Minimum token length")
	cmd.Flags().Int("max", 0, "Maximum token length")
	cmd.Flags().Int("frequency", 0, "Tokens per second")
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "Rotation source: memory, file or redis")
	cmd.Flags().String("file", "", "YAML, JSON or TOML file holding the texts")
	cmd.Flags().String("redis-addr", "", "Redis address")
	cmd.Flags().String("redis-key", "", "Redis list holding the texts")
	cmd.Flags().Duration("interval", 0, "Time between rotations")
	cmd.Flags().Duration("query-timeout", 0, "Deadline for each source query")
}

// applyFlags copies every flag the user set onto cfg. Flags a command does
// not define are skipped.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	if changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if changed("policy") {
		name, _ := flags.GetString("policy")
		policy, err := domain.ParseUpdatePolicy(name)
		if err != nil {
			return err
		}
		cfg.Label.Policy = policy
	}
	if changed("min") {
		cfg.Label.TokenLength.Min, _ = flags.GetInt("min")
	}
	if changed("max") {
		cfg.Label.TokenLength.Max, _ = flags.GetInt("max")
	}
	if changed("frequency") {
		cfg.Label.Frequency, _ = flags.GetInt("frequency")
	}

	if changed("source") {
		cfg.Rotation.Source, _ = flags.GetString("source")
	}
	if changed("file") {
		cfg.Rotation.File, _ = flags.GetString("file")
		if !changed("source") {
			cfg.Rotation.Source = config.SourceFile
		}
	}
	if changed("redis-addr") {
		cfg.Rotation.Redis.Addr, _ = flags.GetString("redis-addr")
	}
	if changed("redis-key") {
		cfg.Rotation.Redis.Key, _ = flags.GetString("redis-key")
	}
	if changed("interval") {
		cfg.Rotation.Interval, _ = flags.GetDuration("interval")
	}
	if changed("query-timeout") {
		cfg.Rotation.QueryTimeout, _ = flags.GetDuration("query-timeout")
	}
	if changed("watch") {
		cfg.Rotation.Watch, _ = flags.GetBool("watch")
	}
	if changed("metrics-addr") {
		cfg.HTTP.Addr, _ = flags.GetString("metrics-addr")
	}
	return nil
}

// setup loads the configuration file, applies the flags and builds the
// logger. Logs go to stderr.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := applyFlags(cmd.Flags(), &cfg); err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(os.Stderr, cfg.Log, debug)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
