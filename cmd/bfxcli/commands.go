package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/logrusorgru/aurora"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/bfxclient/encoding/positional"
	"github.com/thrasher-corp/bfxclient/exchanges/bitfinex"
	"github.com/thrasher-corp/bfxclient/exchanges/nonce"
	"github.com/thrasher-corp/bfxclient/exchanges/request"
	"github.com/urfave/cli/v2"
)

var (
	errMissingArgument = errors.New("missing argument")
	errInvalidCount    = errors.New("count must be positive")
)

var nonceCommand = &cli.Command{
	Name:  "nonce",
	Usage: "prints freshly generated nonces",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "count",
			Value: 1,
			Usage: "the number of nonces to generate",
		},
		&cli.DurationFlag{
			Name:  "jitter",
			Value: nonce.DefaultMaxJitter,
			Usage: "upper bound of the random delay before each sample, negative disables it",
		},
	},
	Action: generateNonces,
}

func generateNonces(c *cli.Context) error {
	count := c.Int("count")
	if count <= 0 {
		return errInvalidCount
	}
	g := nonce.NewGenerator(c.Duration("jitter"))
	for range count {
		n, err := g.Next(c.Context)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(c.App.Writer, n); err != nil {
			return err
		}
	}
	return nil
}

var signCommand = &cli.Command{
	Name:      "sign",
	Usage:     "computes the signature of an authenticated request",
	ArgsUsage: "<path> <nonce> [payload]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "secret",
			Usage:    "the API secret to sign with",
			Required: true,
		},
	},
	Action: signPayload,
}

func signPayload(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("%w: path and nonce are required", errMissingArgument)
	}
	n, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid nonce %q: %w", c.Args().Get(1), err)
	}
	sig, err := bitfinex.Sign([]byte(c.String("secret")), c.Args().First(), nonce.Value(n), []byte(c.Args().Get(2)))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, sig)
	return err
}

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "decodes a notification envelope read from a file or stdin",
	ArgsUsage: "[file]",
	Action:    decodeEnvelope,
}

func decodeEnvelope(c *cli.Context) error {
	var r io.Reader = os.Stdin
	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	env, err := positional.DecodeEnvelope(data)
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, struct {
		positional.Envelope
		Nesting string
	}{env, env.Nesting.String()})
}

var statusCommand = &cli.Command{
	Name:   "status",
	Usage:  "prints the platform status",
	Action: getPlatformStatus,
}

func getPlatformStatus(c *cli.Context) error {
	b, ctx, cancel, err := setupClient(c)
	if err != nil {
		return err
	}
	defer cancel()

	status, err := b.GetPlatformStatus(ctx)
	if err != nil {
		return err
	}
	label := aurora.Bold(aurora.Green(status.String()))
	if status != bitfinex.Operative {
		label = aurora.Bold(aurora.Red(status.String()))
	}
	_, err = fmt.Fprintf(c.App.Writer, "platform is %s\n", label)
	return err
}

var tickerCommand = &cli.Command{
	Name:      "ticker",
	Usage:     "gets the ticker of a trading pair or funding currency",
	ArgsUsage: "<symbol>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "funding",
			Usage: "treat the symbol as a funding currency",
		},
	},
	Action: getTicker,
}

func getTicker(c *cli.Context) error {
	symbol := c.Args().First()
	if symbol == "" {
		return cli.ShowSubcommandHelp(c)
	}
	b, ctx, cancel, err := setupClient(c)
	if err != nil {
		return err
	}
	defer cancel()

	if c.Bool("funding") {
		t, err := b.GetFundingTicker(ctx, symbol)
		if err != nil {
			return err
		}
		return jsonOutput(c.App.Writer, t)
	}
	t, err := b.GetTradingTicker(ctx, symbol)
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, t)
}

var walletsCommand = &cli.Command{
	Name:   "wallets",
	Usage:  "lists wallet balances",
	Action: getWallets,
}

func getWallets(c *cli.Context) error {
	b, ctx, cancel, err := setupAuthClient(c)
	if err != nil {
		return err
	}
	defer cancel()

	w, err := b.GetWallets(ctx)
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, w)
}

var feesCommand = &cli.Command{
	Name:   "fees",
	Usage:  "prints the account maker and taker fees",
	Action: getAccountFees,
}

func getAccountFees(c *cli.Context) error {
	b, ctx, cancel, err := setupAuthClient(c)
	if err != nil {
		return err
	}
	defer cancel()

	f, err := b.GetAccountFees(ctx)
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, f)
}

var ordersCommand = &cli.Command{
	Name:      "orders",
	Usage:     "order commands",
	ArgsUsage: "<command> <args>",
	Subcommands: []*cli.Command{
		{
			Name:   "active",
			Usage:  "lists active orders",
			Action: getActiveOrders,
		},
		{
			Name:  "history",
			Usage: "lists closed orders",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "symbol",
					Usage: "restrict the history to one trading pair",
				},
				&cli.IntFlag{
					Name:  "limit",
					Usage: "the maximum number of orders returned",
				},
			},
			Action: getOrderHistory,
		},
		{
			Name:      "cancel",
			Usage:     "cancels an order",
			ArgsUsage: "<id>",
			Action:    cancelOrder,
		},
	},
}

func getActiveOrders(c *cli.Context) error {
	b, ctx, cancel, err := setupAuthClient(c)
	if err != nil {
		return err
	}
	defer cancel()

	o, err := b.GetActiveOrders(ctx)
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, o)
}

func getOrderHistory(c *cli.Context) error {
	b, ctx, cancel, err := setupAuthClient(c)
	if err != nil {
		return err
	}
	defer cancel()

	o, err := b.GetOrderHistory(ctx, c.String("symbol"), &bitfinex.HistoryParams{Limit: c.Int("limit")})
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, o)
}

func cancelOrder(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowSubcommandHelp(c)
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", c.Args().First(), err)
	}
	b, ctx, cancel, err := setupAuthClient(c)
	if err != nil {
		return err
	}
	defer cancel()

	resp, err := b.CancelOrder(request.WithRetryNotAllowed(ctx), id)
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, resp)
}

var positionsCommand = &cli.Command{
	Name:   "positions",
	Usage:  "lists active margin positions",
	Action: getPositions,
}

func getPositions(c *cli.Context) error {
	b, ctx, cancel, err := setupAuthClient(c)
	if err != nil {
		return err
	}
	defer cancel()

	p, err := b.GetActivePositions(ctx)
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, p)
}

var transferCommand = &cli.Command{
	Name:  "transfer",
	Usage: "moves funds between wallets",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "source wallet: exchange, margin or funding", Required: true},
		&cli.StringFlag{Name: "to", Usage: "destination wallet: exchange, margin or funding", Required: true},
		&cli.StringFlag{Name: "currency", Usage: "the currency to move", Required: true},
		&cli.StringFlag{Name: "currencyto", Usage: "convert into this currency on arrival"},
		&cli.StringFlag{Name: "amount", Usage: "the amount to move", Required: true},
	},
	Action: transfer,
}

func transfer(c *cli.Context) error {
	amount, err := decimal.NewFromString(c.String("amount"))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", c.String("amount"), err)
	}
	b, ctx, cancel, err := setupAuthClient(c)
	if err != nil {
		return err
	}
	defer cancel()

	resp, err := b.TransferBetweenWallets(request.WithRetryNotAllowed(ctx), &bitfinex.TransferRequest{
		From:       bitfinex.WalletKind(c.String("from")),
		To:         bitfinex.WalletKind(c.String("to")),
		Currency:   c.String("currency"),
		CurrencyTo: c.String("currencyto"),
		Amount:     amount,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "%s %s\n", aurora.Bold(aurora.Green(resp.Status)), resp.Text)
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, resp.Transfer)
}
