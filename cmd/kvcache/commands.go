package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/goliatone/go-kvcache/cache"
	"github.com/spf13/cobra"
)

type entryOutput struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the live value stored under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}

			var value any
			if !engine.Get(args[0], &value) {
				return fmt.Errorf("%s: not found", args[0])
			}
			return a.print(cmd.OutOrStdout(), formatValue(value), entryOutput{Key: args[0], Value: value})
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	var ttl string

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY",
		Long:  "Store VALUE under KEY. VALUE is parsed as JSON when possible and stored as a string otherwise.",
		Example: `  kvcache set theme '"dark"'
  kvcache set rates '{"BTC":64000}' --ttl 5m
  kvcache set pinned hello --ttl none`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := cache.ParseTTL(ttl)
			if err != nil {
				return err
			}

			engine, err := a.engine()
			if err != nil {
				return err
			}

			if !engine.Set(args[0], parseValue(args[1]), d) {
				return fmt.Errorf("set %s: %w", args[0], engine.LastError())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ttl, "ttl", "", `entry ttl, e.g. 90s or 1h; "none" disables expiry (default: engine default)`)
	return cmd
}

func (a *app) hasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "has KEY",
		Short: "Report whether a live entry exists under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			ok := engine.Has(args[0])
			return a.print(cmd.OutOrStdout(), fmt.Sprint(ok), map[string]bool{"exists": ok})
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm KEY...",
		Aliases: []string{"remove"},
		Short:   "Remove entries",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			for _, key := range args {
				if !engine.Remove(key) {
					return fmt.Errorf("remove %s: %w", key, engine.LastError())
				}
			}
			return nil
		},
	}
}

func (a *app) keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the keys in the namespace, including expired ones not yet removed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			keys := engine.Keys()
			return a.print(cmd.OutOrStdout(), strings.Join(keys, "\n"), keys)
		},
	}
}

func (a *app) sizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Print the stored size of the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			size := engine.Size()
			return a.print(cmd.OutOrStdout(), humanize.Bytes(uint64(size)), map[string]int{"bytes": size})
		},
	}
}

func (a *app) cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired and corrupt entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			removed := engine.Cleanup()
			return a.print(cmd.OutOrStdout(), fmt.Sprintf("removed %d", removed), map[string]int{"removed": removed})
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry in the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			if !engine.Clear() {
				return fmt.Errorf("clear: %w", engine.LastError())
			}
			return nil
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize live, expired and corrupt entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			st := engine.Stats()
			text := fmt.Sprintf("keys: %d (expired %d, corrupt %d)\nsize: %s",
				st.Keys, st.Expired, st.Corrupt, humanize.Bytes(uint64(st.Bytes)))
			return a.print(cmd.OutOrStdout(), text, st)
		},
	}
}
