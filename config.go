package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	autoRestart    bool
	bind           string
	maxPlayers     int
	port           int
	prefix         string
	profile        bool
	roundDelay     time.Duration
	sessionTimeout time.Duration
	skipThreshold  int
	tlsCert        string
	tlsKey         string
	turnTimeout    time.Duration
	verbose        bool
	version        bool
	wordChoices    int
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxPlayers < 2 {
		return fmt.Errorf("invalid max players (must be at least 2): %d", c.maxPlayers)
	}
	if c.turnTimeout <= 0 {
		return fmt.Errorf("invalid turn timeout: %s", c.turnTimeout)
	}
	if c.wordChoices < 1 {
		return fmt.Errorf("invalid word choice count: %d", c.wordChoices)
	}
	if c.skipThreshold < 1 {
		return fmt.Errorf("invalid skip threshold: %d", c.skipThreshold)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GUESSWHO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "guesswho",
		Short:         "A turn-based partner-guessing party game, served over websockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.BoolVar(&cfg.autoRestart, "auto-restart", false, "restart picking automatically after each round instead of returning to the lobby (env: GUESSWHO_AUTO_RESTART)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: GUESSWHO_BIND)")
	fs.IntVar(&cfg.maxPlayers, "max-players", 10, "maximum number of players per room (env: GUESSWHO_MAX_PLAYERS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: GUESSWHO_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: GUESSWHO_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: GUESSWHO_PROFILE)")
	fs.DurationVar(&cfg.roundDelay, "round-delay", 5*time.Second, "pause between the end of a round and the next phase (env: GUESSWHO_ROUND_DELAY)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game rooms are ended (env: GUESSWHO_SESSION_TIMEOUT)")
	fs.IntVar(&cfg.skipThreshold, "skip-threshold", 12, "number of skips before a player may request a hint (env: GUESSWHO_SKIP_THRESHOLD)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: GUESSWHO_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: GUESSWHO_TLS_KEY)")
	fs.DurationVar(&cfg.turnTimeout, "turn-timeout", 45*time.Second, "time each player has to guess or skip (env: GUESSWHO_TURN_TIMEOUT)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: GUESSWHO_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: GUESSWHO_VERSION)")
	fs.IntVar(&cfg.wordChoices, "word-choices", 6, "number of catalog words offered to each giver (env: GUESSWHO_WORD_CHOICES)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("guesswho v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
