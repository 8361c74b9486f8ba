package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/goliatone/go-kvcache/cache"
	"github.com/goliatone/go-kvcache/pkg/di"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	output     string
	logger     *log.Logger
	container  *di.Container
}

func newApp() *app {
	return &app{v: viper.New(), logger: log.Default().WithPrefix(appName)}
}

// rootCmd builds the command tree. The caller closes the app once the command
// has executed.
func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Inspect and edit a persistent namespaced TTL cache",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: kvcache.yml in the user config dir)")
	flags.StringVarP(&a.output, "output", "o", "text", "output format: text, json or yaml")
	flags.String("backend", di.BackendSQLite, "storage backend: sqlite, badger or memory")
	flags.String("path", "", "database file (sqlite) or directory (badger)")
	flags.String("prefix", cache.DefaultPrefix, "namespace prefix")
	flags.String("default-ttl", cache.DefaultTTL.String(), "ttl applied when none is given")
	flags.String("codec", "json", "entry codec: json or msgpack")
	flags.Int("compression", 0, "zstd compression level, 0 disables compression")
	bindConfig(a.v, flags)

	root.AddCommand(
		a.getCmd(),
		a.setCmd(),
		a.hasCmd(),
		a.rmCmd(),
		a.keysCmd(),
		a.sizeCmd(),
		a.cleanupCmd(),
		a.clearCmd(),
		a.statsCmd(),
		a.historyCmd(),
		a.favoritesCmd(),
		a.themeCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) setup() error {
	switch a.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q", a.output)
	}

	envCfg, err := parseEnv()
	if err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}

	logger, err := setupLog(envCfg)
	if err != nil {
		return err
	}
	a.logger = logger

	return readConfigFile(a.v, a.configFile, envCfg, a.logger)
}

// open builds the container on first use so that commands which fail early
// never touch the database.
func (a *app) open() (*di.Container, error) {
	if a.container != nil {
		return a.container, nil
	}

	cfg, err := containerConfig(a.v)
	if err != nil {
		return nil, err
	}

	container, err := di.NewContainer(cfg, cache.WithLogger(a.logger.WithPrefix("cache")))
	if err != nil {
		return nil, fmt.Errorf("unable to open cache: %w", err)
	}
	a.logger.Debug("opened cache", "backend", cfg.Backend, "prefix", cfg.Engine.Prefix)

	a.container = container
	return container, nil
}

func (a *app) engine() (*cache.Engine, error) {
	container, err := a.open()
	if err != nil {
		return nil, err
	}
	return container.Engine(), nil
}

// caches returns the derived caches, scoped to user when it is set.
func (a *app) caches(user string) (di.Caches, error) {
	container, err := a.open()
	if err != nil {
		return di.Caches{}, err
	}
	if user != "" {
		return container.ForUser(user), nil
	}
	return container.Caches(), nil
}

func (a *app) close() error {
	if a.container == nil {
		return nil
	}
	err := a.container.Close()
	a.container = nil
	return err
}
