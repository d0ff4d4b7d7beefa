// Package cli wires configuration, logging and services behind the go-swapi commands.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"go-swapi/internal/clients"
	"go-swapi/internal/config"
	"go-swapi/internal/logging"
	"go-swapi/internal/services"
)

// app carries what PersistentPreRunE resolved to the subcommands
type app struct {
	configFile string
	v          *viper.Viper
	cfg        *config.AppConfig
	logger     zerolog.Logger
}

// flagKeys maps flags onto the config keys they override
var flagKeys = map[string]string{ //nolint:gochecknoglobals // static lookup table
	"log-level":  "log.level",
	"log-format": "log.format",
	"addr":       "server.addr",
	"base-url":   "upstream.base_url",
	"max-pages":  "upstream.max_pages",
}

// NewRootCmd creates the root command with the serve and query subcommands.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "go-swapi",
		Short:         "Paginated, searchable view over the Star Wars API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		Example: `  # Serve /people and /planets on :6969
  go-swapi serve

  # Second page of planets matching "too", as YAML
  go-swapi query planets --search too --page 2 --size 5 --output yaml

  # Export people to a spreadsheet
  go-swapi query people --output xlsx --file people.xlsx`,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./config.yaml or /etc/go-swapi/config.yaml)")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.String("log-format", logging.FormatConsole, "log format: console or json")
	pf.String("base-url", "", "upstream API base URL (overrides upstream.base_url)")
	pf.Int("max-pages", 0, "maximum upstream pages per walk, 0 for no cap")

	cmd.AddCommand(newServeCmd(a), newQueryCmd(a))
	return cmd
}

// load resolves config in the order defaults, file, environment, flags
func (a *app) load(cmd *cobra.Command) error {
	a.v = config.NewViper(a.configFile)

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed || bindErr != nil {
			return
		}
		bindErr = a.v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := config.LoadConfig(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	a.logger.Debug().Str("config", a.v.ConfigFileUsed()).Str("upstream", cfg.Upstream.BaseURL).Msg("configuration loaded")
	return nil
}

// queryService builds the upstream client and one pipeline per category
func (a *app) queryService(recorder services.WalkRecorder) *services.QueryService {
	client := clients.NewSwapiClient(a.cfg.Upstream.BaseURL, clients.Options{
		Timeout:            a.cfg.Upstream.Timeout,
		RateLimit:          a.cfg.Upstream.RateLimit,
		Burst:              a.cfg.Upstream.Burst,
		InsecureSkipVerify: a.cfg.Upstream.InsecureSkipVerify,
	})
	if a.cfg.Upstream.InsecureSkipVerify {
		a.logger.Warn().Msg("upstream TLS verification disabled")
	}
	return services.NewSwapiQueryService(client, services.PipelineOptions{
		MaxPages: a.cfg.Upstream.MaxPages,
		Recorder: recorder,
		Logger:   logging.Component(a.logger, "query"),
	})
}
