package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/thrasher-corp/bfxclient/config"
	"github.com/thrasher-corp/bfxclient/exchanges/bitfinex"
	"github.com/thrasher-corp/bfxclient/log"
	"github.com/urfave/cli/v2"
)

var (
	configPath string
	envFile    string
	apiKey     string
	apiSecret  string
	timeout    time.Duration
	verbose    bool
	noColour   bool
)

const defaultTimeout = time.Second * 30

var errNoCredentials = errors.New("authenticated command requires an API key and secret")

func jsonOutput(w io.Writer, in any) error {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(j))
	return err
}

// colourLogHook writes log lines to w with the level header coloured
func colourLogHook(w io.Writer) log.CustomLogHook {
	return func(header, subLogger string, a ...any) bool {
		var h any = header
		switch {
		case strings.Contains(header, "ERROR"):
			h = aurora.Bold(aurora.Red(header))
		case strings.Contains(header, "WARN"):
			h = aurora.Bold(aurora.Yellow(header))
		case strings.Contains(header, "DEBUG"):
			h = aurora.Cyan(header)
		}
		fmt.Fprintf(w, "%s %s %s\n", h, subLogger, fmt.Sprint(a...))
		return true
	}
}

// setupClient loads the config, applies command line overrides and returns a
// ready exchange client along with a context bounded by the timeout flag
func setupClient(c *cli.Context) (*bitfinex.Bitfinex, context.Context, context.CancelFunc, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, nil, nil, err
	}

	if apiKey != "" || apiSecret != "" {
		cfg.Exchange.API.Credentials.Key = apiKey
		cfg.Exchange.API.Credentials.Secret = apiSecret
		cfg.Exchange.API.AuthenticatedSupport = true
		if err = cfg.Exchange.Validate(); err != nil {
			return nil, nil, nil, err
		}
	}
	if verbose {
		cfg.Exchange.Verbose = true
	}

	if err = log.SetupGlobalLogger(&cfg.Logging, cfg.DataDirectory); err != nil {
		return nil, nil, nil, err
	}
	if !noColour {
		log.SetCustomLogHook(colourLogHook(c.App.ErrWriter))
	}

	b, err := bitfinex.New(&cfg.Exchange)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	return b, ctx, cancel, nil
}

// setupAuthClient is setupClient for commands that only make authenticated
// requests
func setupAuthClient(c *cli.Context) (*bitfinex.Bitfinex, context.Context, context.CancelFunc, error) {
	b, ctx, cancel, err := setupClient(c)
	if err != nil {
		return nil, nil, nil, err
	}
	if !b.AllowAuthenticatedRequest() {
		cancel()
		return nil, nil, nil, errNoCredentials
	}
	return b, ctx, cancel, nil
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "bfxcli"
	app.Version = "v0.1"
	app.EnableBashCompletion = true
	app.Usage = "command line tool for the Bitfinex v2 HTTP API"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to a JSON or YAML config file",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "envfile",
			Value:       config.EnvFile,
			Usage:       "the .env file loaded before reading the environment",
			Destination: &envFile,
		},
		&cli.StringFlag{
			Name:        "apikey",
			Usage:       "override the configured API key",
			Destination: &apiKey,
		},
		&cli.StringFlag{
			Name:        "apisecret",
			Usage:       "override the configured API secret",
			Destination: &apiSecret,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Value:       defaultTimeout,
			Usage:       "the overall command timeout",
			Destination: &timeout,
		},
		&cli.BoolFlag{
			Name:        "nocolour",
			Usage:       "write log lines without terminal colours",
			Destination: &noColour,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "log request payloads and responses",
			Destination: &verbose,
		},
	}
	app.Commands = []*cli.Command{
		nonceCommand,
		signCommand,
		decodeCommand,
		statusCommand,
		tickerCommand,
		walletsCommand,
		feesCommand,
		ordersCommand,
		positionsCommand,
		transferCommand,
	}
	return app
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newApp().RunContext(ctx, os.Args)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
