package main

import (
	"errors"
	"strings"

	"github.com/goliatone/go-kvcache/usercache"
	"github.com/spf13/cobra"
)

func (a *app) historyCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the search history",
	}
	cmd.PersistentFlags().StringVar(&user, "user", "", "scope the history to a user")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add QUERY",
			Short: "Move QUERY to the front of the history",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				caches, err := a.caches(user)
				if err != nil {
					return err
				}
				history, ok := caches.SearchHistory.Add(args[0])
				if !ok {
					return errors.New("could not update history")
				}
				return a.print(cmd.OutOrStdout(), strings.Join(history, "\n"), history)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print the history, most recent first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				caches, err := a.caches(user)
				if err != nil {
					return err
				}
				history := caches.SearchHistory.Get()
				return a.print(cmd.OutOrStdout(), strings.Join(history, "\n"), history)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the history",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				caches, err := a.caches(user)
				if err != nil {
					return err
				}
				if !caches.SearchHistory.Clear() {
					return errors.New("could not clear history")
				}
				return nil
			},
		},
	)
	return cmd
}

func (a *app) favoritesCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite widgets",
	}
	cmd.PersistentFlags().StringVar(&user, "user", "", "scope favorites to a user")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "toggle ID",
			Short: "Add ID when absent, remove it when present",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				caches, err := a.caches(user)
				if err != nil {
					return err
				}
				ids, ok := caches.Favorites.Toggle(args[0])
				if !ok {
					return errors.New("could not update favorites")
				}
				return a.print(cmd.OutOrStdout(), strings.Join(ids, "\n"), ids)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print favorite ids in insertion order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				caches, err := a.caches(user)
				if err != nil {
					return err
				}
				ids := caches.Favorites.Get()
				return a.print(cmd.OutOrStdout(), strings.Join(ids, "\n"), ids)
			},
		},
	)
	return cmd
}

func (a *app) themeCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Read or toggle the UI theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caches, err := a.caches(user)
			if err != nil {
				return err
			}
			theme := caches.Theme.Get()
			return a.print(cmd.OutOrStdout(), string(theme), map[string]usercache.Theme{"theme": theme})
		},
	}
	cmd.PersistentFlags().StringVar(&user, "user", "", "scope the theme to a user")

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caches, err := a.caches(user)
			if err != nil {
				return err
			}
			theme, ok := caches.Theme.Toggle()
			if !ok {
				return errors.New("could not store theme")
			}
			return a.print(cmd.OutOrStdout(), string(theme), map[string]usercache.Theme{"theme": theme})
		},
	})
	return cmd
}
