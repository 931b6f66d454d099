package bitfinex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/bfxclient/config"
	"github.com/thrasher-corp/bfxclient/encoding/positional"
	"github.com/thrasher-corp/bfxclient/exchanges/nonce"
	"github.com/thrasher-corp/bfxclient/exchanges/request"
	"github.com/thrasher-corp/bfxclient/log"
)

// Public errors
var (
	ErrAuthenticatedRequestWithoutCredentials = errors.New("authenticated request attempted without credentials set")
	ErrRequestRejected                        = errors.New("request rejected by exchange")
)

var (
	errNilConfig         = errors.New("exchange config is nil")
	errOrderTypeUnset    = errors.New("order type unset")
	errAmountZero        = errors.New("amount cannot be zero")
	errInvalidOrderID    = errors.New("invalid order id")
	errInvalidPositionID = errors.New("invalid position id")
	errWalletUnset       = errors.New("source and destination wallets must be set")
	errCurrencyEmpty     = errors.New("currency cannot be empty")
	errNothingToUpdate   = errors.New("order update holds no changes")
)

// timeInForceLayout is the UTC layout the exchange expects for tif
const timeInForceLayout = "2006-01-02 15:04:05"

// Bitfinex is the overarching type across the bitfinex package
type Bitfinex struct {
	Name          string
	Verbose       bool
	HTTPDebugging bool

	publicURL string
	authURL   string
	signer    *Signer
	nonce     *nonce.Generator
	requester *request.Requester
}

// New returns a Bitfinex client configured from cfg. Authenticated calls are
// only available when cfg enables them with usable credentials.
func New(cfg *config.ExchangeConfig) (*Bitfinex, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
	}
	r, err := request.New(cfg.Name,
		client,
		request.WithMaxRetries(cfg.MaxRetries),
		request.WithUserAgent(cfg.HTTPUserAgent))
	if err != nil {
		return nil, err
	}

	if cfg.ProxyAddress != "" {
		p, err := url.Parse(cfg.ProxyAddress)
		if err != nil {
			return nil, err
		}
		if err := r.SetProxy(p); err != nil {
			return nil, err
		}
	}

	b := &Bitfinex{
		Name:          cfg.Name,
		Verbose:       cfg.Verbose,
		HTTPDebugging: cfg.HTTPDebugging,
		publicURL:     cfg.API.Endpoints.Public,
		authURL:       cfg.API.Endpoints.Auth,
		nonce:         nonce.NewGenerator(cfg.NonceJitter),
		requester:     r,
	}
	if cfg.API.AuthenticatedSupport {
		b.signer = NewSigner(cfg.API.Credentials.Key, cfg.API.Credentials.Secret, cfg.HTTPUserAgent)
	}
	return b, nil
}

// AllowAuthenticatedRequest reports whether credentials are loaded
func (b *Bitfinex) AllowAuthenticatedRequest() bool {
	return b.signer != nil
}

// GetPlatformStatus returns the current platform status
func (b *Bitfinex) GetPlatformStatus(ctx context.Context) (PlatformStatus, error) {
	var resp json.RawMessage
	if err := b.SendHTTPRequest(ctx, bitfinexPlatformStatus, &resp); err != nil {
		return Maintenance, err
	}
	return platformStatusSchema.Decode(resp)
}

// GetTradingTicker returns the ticker of a trading pair, e.g. BTCUSD
func (b *Bitfinex) GetTradingTicker(ctx context.Context, symbol string) (TradingTicker, error) {
	sym, err := tradingSymbol(symbol)
	if err != nil {
		return TradingTicker{}, err
	}
	var resp json.RawMessage
	if err := b.SendHTTPRequest(ctx, bitfinexTicker+sym, &resp); err != nil {
		return TradingTicker{}, err
	}
	return tradingTickerSchema.Decode(resp)
}

// GetFundingTicker returns the ticker of a funding currency, e.g. USD
func (b *Bitfinex) GetFundingTicker(ctx context.Context, currency string) (FundingTicker, error) {
	sym, err := fundingSymbol(currency)
	if err != nil {
		return FundingTicker{}, err
	}
	var resp json.RawMessage
	if err := b.SendHTTPRequest(ctx, bitfinexTicker+sym, &resp); err != nil {
		return FundingTicker{}, err
	}
	return fundingTickerSchema.Decode(resp)
}

// GetTrades returns public trades for a trading pair
func (b *Bitfinex) GetTrades(ctx context.Context, symbol string, params *HistoryParams) ([]PublicTrade, error) {
	sym, err := tradingSymbol(symbol)
	if err != nil {
		return nil, err
	}
	var resp json.RawMessage
	path := withQuery(fmt.Sprintf(bitfinexTrades, sym), params.values())
	if err := b.SendHTTPRequest(ctx, path, &resp); err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, publicTradeSchema)
}

// GetFundingTrades returns public trades for a funding currency
func (b *Bitfinex) GetFundingTrades(ctx context.Context, currency string, params *HistoryParams) ([]FundingTrade, error) {
	sym, err := fundingSymbol(currency)
	if err != nil {
		return nil, err
	}
	var resp json.RawMessage
	path := withQuery(fmt.Sprintf(bitfinexTrades, sym), params.values())
	if err := b.SendHTTPRequest(ctx, path, &resp); err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, fundingTradeSchema)
}

// GetBook returns the aggregated order book of a trading pair. length may be
// zero to use the exchange default.
func (b *Bitfinex) GetBook(ctx context.Context, symbol string, precision BookPrecision, length int) ([]BookEntry, error) {
	sym, err := tradingSymbol(symbol)
	if err != nil {
		return nil, err
	}
	resp, err := b.getBook(ctx, sym, precision, false, length)
	if err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, bookEntrySchema)
}

// GetFundingBook returns the aggregated book of a funding currency
func (b *Bitfinex) GetFundingBook(ctx context.Context, currency string, precision BookPrecision, length int) ([]FundingBookEntry, error) {
	sym, err := fundingSymbol(currency)
	if err != nil {
		return nil, err
	}
	resp, err := b.getBook(ctx, sym, precision, false, length)
	if err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, fundingBookEntrySchema)
}

// GetRawBook returns every individual order in a trading pair's book
func (b *Bitfinex) GetRawBook(ctx context.Context, symbol string, length int) ([]RawBookEntry, error) {
	sym, err := tradingSymbol(symbol)
	if err != nil {
		return nil, err
	}
	resp, err := b.getBook(ctx, sym, PrecisionR0, true, length)
	if err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, rawBookEntrySchema)
}

func (b *Bitfinex) getBook(ctx context.Context, sym string, precision BookPrecision, raw bool, length int) (json.RawMessage, error) {
	if err := precision.validate(raw); err != nil {
		return nil, err
	}
	v := url.Values{}
	if length > 0 {
		v.Set("len", strconv.Itoa(length))
	}
	var resp json.RawMessage
	return resp, b.SendHTTPRequest(ctx, withQuery(fmt.Sprintf(bitfinexBook, sym, precision), v), &resp)
}

// GetLastCandle returns the most recent candle of a trading pair
func (b *Bitfinex) GetLastCandle(ctx context.Context, symbol string, tf TimeFrame) (Candle, error) {
	path, err := candlePath(symbol, tf, SectionLast)
	if err != nil {
		return Candle{}, err
	}
	var resp json.RawMessage
	if err := b.SendHTTPRequest(ctx, path, &resp); err != nil {
		return Candle{}, err
	}
	return candleSchema.Decode(resp)
}

// GetCandles returns the candle history of a trading pair
func (b *Bitfinex) GetCandles(ctx context.Context, symbol string, tf TimeFrame, params *HistoryParams) ([]Candle, error) {
	path, err := candlePath(symbol, tf, SectionHist)
	if err != nil {
		return nil, err
	}
	var resp json.RawMessage
	if err := b.SendHTTPRequest(ctx, withQuery(path, params.values()), &resp); err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, candleSchema)
}

func candlePath(symbol string, tf TimeFrame, section CandleSection) (string, error) {
	sym, err := tradingSymbol(symbol)
	if err != nil {
		return "", err
	}
	if _, err := ParseTimeFrame(string(tf)); err != nil {
		return "", err
	}
	if section != SectionLast && section != SectionHist {
		return "", fmt.Errorf("%w: %q", errInvalidSection, section)
	}
	return fmt.Sprintf(bitfinexCandles, tf, sym, section), nil
}

// GetWallets returns the balances of every wallet
func (b *Bitfinex) GetWallets(ctx context.Context) ([]Wallet, error) {
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, bitfinexWallets, nil, &resp); err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, walletSchema)
}

// GetMarginBase returns the account wide margin figures
func (b *Bitfinex) GetMarginBase(ctx context.Context) (MarginBase, error) {
	var resp json.RawMessage
	err := b.SendAuthenticatedHTTPRequest(ctx, fmt.Sprintf(bitfinexMarginInfo, bitfinexMarginBaseKey), nil, &resp)
	if err != nil {
		return MarginBase{}, err
	}
	return marginBaseSchema.Decode(resp)
}

// GetMarginSymbol returns the margin figures of a trading pair
func (b *Bitfinex) GetMarginSymbol(ctx context.Context, symbol string) (MarginSymbol, error) {
	sym, err := tradingSymbol(symbol)
	if err != nil {
		return MarginSymbol{}, err
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, fmt.Sprintf(bitfinexMarginInfo, sym), nil, &resp); err != nil {
		return MarginSymbol{}, err
	}
	return marginSymbolSchema.Decode(resp)
}

// GetFundingInfo returns the funding yields of a currency
func (b *Bitfinex) GetFundingInfo(ctx context.Context, currency string) (FundingInfo, error) {
	sym, err := fundingSymbol(currency)
	if err != nil {
		return FundingInfo{}, err
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, fmt.Sprintf(bitfinexFundingInfo, sym), nil, &resp); err != nil {
		return FundingInfo{}, err
	}
	return fundingInfoSchema.Decode(resp)
}

// GetAccountFees returns the account's maker and taker fees
func (b *Bitfinex) GetAccountFees(ctx context.Context) (AccountFees, error) {
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, bitfinexSummary, nil, &resp); err != nil {
		return AccountFees{}, err
	}
	return accountFeesSchema.Decode(resp)
}

// TransferBetweenWallets moves funds between two of the account's wallets
func (b *Bitfinex) TransferBetweenWallets(ctx context.Context, t *TransferRequest) (TransferResponse, error) {
	if t == nil || t.From == "" || t.To == "" {
		return TransferResponse{}, errWalletUnset
	}
	if t.Currency == "" {
		return TransferResponse{}, errCurrencyEmpty
	}
	if t.Amount.IsZero() {
		return TransferResponse{}, errAmountZero
	}
	req := map[string]any{
		"from":     t.From,
		"to":       t.To,
		"currency": t.Currency,
		"amount":   t.Amount.String(),
	}
	if t.CurrencyTo != "" {
		req["currency_to"] = t.CurrencyTo
	}

	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, bitfinexWalletTransfer, req, &resp); err != nil {
		return TransferResponse{}, err
	}
	return decodeTransferResponse(resp)
}

func decodeTransferResponse(data []byte) (TransferResponse, error) {
	n, k, t, err := decodeNotification(data, transferResponseKinds, walletTransferSchema)
	return TransferResponse{Notification: n, Kind: k, Transfer: t}, err
}

// GetActiveOrders returns the account's open orders
func (b *Bitfinex) GetActiveOrders(ctx context.Context) ([]ActiveOrder, error) {
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, bitfinexOrders, nil, &resp); err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, activeOrderSchema)
}

// GetOrderHistory returns closed orders, optionally for a single trading
// pair when symbol is not empty
func (b *Bitfinex) GetOrderHistory(ctx context.Context, symbol string, params *HistoryParams) ([]ActiveOrder, error) {
	path := bitfinexOrderHistory
	if symbol != "" {
		sym, err := tradingSymbol(symbol)
		if err != nil {
			return nil, err
		}
		path = fmt.Sprintf(bitfinexSymbolHistory, sym)
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, path, params.body(), &resp); err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, activeOrderSchema)
}

// GetOrderTrades returns the trades that filled an order
func (b *Bitfinex) GetOrderTrades(ctx context.Context, symbol string, orderID int64) ([]Trade, error) {
	sym, err := tradingSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if orderID <= 0 {
		return nil, errInvalidOrderID
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, fmt.Sprintf(bitfinexOrderTrades, sym, orderID), nil, &resp); err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, tradeSchema)
}

// SubmitOrder places a new order
func (b *Bitfinex) SubmitOrder(ctx context.Context, o *OrderRequest) (OrderResponse, error) {
	req, err := o.body()
	if err != nil {
		return OrderResponse{}, err
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, bitfinexSubmitOrder, req, &resp); err != nil {
		return OrderResponse{}, err
	}
	return decodeOrderResponse(resp)
}

// UpdateOrder amends an existing order
func (b *Bitfinex) UpdateOrder(ctx context.Context, u *OrderUpdate) (OrderResponse, error) {
	req, err := u.body()
	if err != nil {
		return OrderResponse{}, err
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, bitfinexUpdateOrder, req, &resp); err != nil {
		return OrderResponse{}, err
	}
	return decodeOrderResponse(resp)
}

// CancelOrder cancels an order by id
func (b *Bitfinex) CancelOrder(ctx context.Context, orderID int64) (OrderResponse, error) {
	if orderID <= 0 {
		return OrderResponse{}, errInvalidOrderID
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, bitfinexCancelOrder, map[string]any{"id": orderID}, &resp); err != nil {
		return OrderResponse{}, err
	}
	return decodeOrderResponse(resp)
}

func decodeOrderResponse(data []byte) (OrderResponse, error) {
	n, k, o, err := decodeNotification(data, orderResponseKinds, orderSchema)
	return OrderResponse{Notification: n, Kind: k, Order: o}, err
}

// GetTradeHistory returns the account's trades on a trading pair
func (b *Bitfinex) GetTradeHistory(ctx context.Context, symbol string, params *HistoryParams) ([]Trade, error) {
	sym, err := tradingSymbol(symbol)
	if err != nil {
		return nil, err
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, fmt.Sprintf(bitfinexTradeHistory, sym), params.body(), &resp); err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, tradeSchema)
}

// GetLedgerHistory returns balance movements for a currency, e.g. USD
func (b *Bitfinex) GetLedgerHistory(ctx context.Context, currency string, params *HistoryParams) ([]LedgerEntry, error) {
	if currency == "" {
		return nil, errCurrencyEmpty
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, fmt.Sprintf(bitfinexLedgers, currency), params.body(), &resp); err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, ledgerEntrySchema)
}

// GetActivePositions returns the account's open positions
func (b *Bitfinex) GetActivePositions(ctx context.Context) ([]Position, error) {
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, bitfinexPositions, nil, &resp); err != nil {
		return nil, err
	}
	return positional.DecodeSlice(resp, positionSchema)
}

// GetDerivativeCollateralLimits returns the collateral bounds of a derivative
// position on symbol, e.g. BTCF0:USTF0
func (b *Bitfinex) GetDerivativeCollateralLimits(ctx context.Context, symbol string) (CollateralLimits, error) {
	sym, err := tradingSymbol(symbol)
	if err != nil {
		return CollateralLimits{}, err
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, bitfinexCollateralLimit, map[string]any{"symbol": sym}, &resp); err != nil {
		return CollateralLimits{}, err
	}
	return collateralLimitsSchema.Decode(resp)
}

// ClaimPosition claims an open position. A zero amount claims all of it.
func (b *Bitfinex) ClaimPosition(ctx context.Context, positionID int64, amount float64) (PositionResponse, error) {
	if positionID <= 0 {
		return PositionResponse{}, errInvalidPositionID
	}
	req := map[string]any{"id": positionID}
	if amount != 0 {
		req["amount"] = strconv.FormatFloat(amount, 'f', -1, 64)
	}
	var resp json.RawMessage
	if err := b.SendAuthenticatedHTTPRequest(ctx, bitfinexClaimPosition, req, &resp); err != nil {
		return PositionResponse{}, err
	}
	n, k, p, err := decodeNotification(resp, positionResponseKinds, positionSchema)
	return PositionResponse{Notification: n, Kind: k, Position: p}, err
}

func (o *OrderRequest) body() (map[string]any, error) {
	if o == nil || o.Type == "" {
		return nil, errOrderTypeUnset
	}
	sym, err := tradingSymbol(o.Symbol)
	if err != nil {
		return nil, err
	}
	if o.Amount.IsZero() {
		return nil, errAmountZero
	}
	flags, err := OrderFlags.Encode(o.Flags...)
	if err != nil {
		return nil, err
	}

	req := map[string]any{
		"type":   o.Type,
		"symbol": sym,
		"amount": o.Amount.String(),
	}
	if o.Type != Market && o.Type != ExchangeMarket {
		req["price"] = o.Price.String()
	}
	if o.PriceTrailing.Valid {
		req["price_trailing"] = o.PriceTrailing.Decimal.String()
	}
	if o.PriceAuxLimit.Valid {
		req["price_aux_limit"] = o.PriceAuxLimit.Decimal.String()
	}
	if o.PriceOCOStop.Valid {
		req["price_oco_stop"] = o.PriceOCOStop.Decimal.String()
	}
	if o.GroupID.Valid {
		req["gid"] = o.GroupID.Int64
	}
	if o.ClientID.Valid {
		req["cid"] = o.ClientID.Int64
	}
	if flags != 0 {
		req["flags"] = flags
	}
	if o.Leverage.Valid {
		req["lev"] = o.Leverage.Int64
	}
	if !o.TimeInForce.Time().IsZero() {
		req["tif"] = o.TimeInForce.Time().UTC().Format(timeInForceLayout)
	}
	return req, nil
}

func (u *OrderUpdate) body() (map[string]any, error) {
	if u == nil || u.ID <= 0 {
		return nil, errInvalidOrderID
	}
	flags, err := OrderFlags.Encode(u.Flags...)
	if err != nil {
		return nil, err
	}
	req := map[string]any{"id": u.ID}
	for key, d := range map[string]decimal.NullDecimal{
		"amount":          u.Amount,
		"delta":           u.Delta,
		"price":           u.Price,
		"price_trailing":  u.PriceTrailing,
		"price_aux_limit": u.PriceAuxLimit,
	} {
		if d.Valid {
			req[key] = d.Decimal.String()
		}
	}
	if len(u.Flags) > 0 {
		req["flags"] = flags
	}
	if len(req) == 1 {
		return nil, errNothingToUpdate
	}
	return req, nil
}

// SendHTTPRequest sends an unauthenticated GET request to the public API
func (b *Bitfinex) SendHTTPRequest(ctx context.Context, path string, result any) error {
	item := &request.Item{
		Method:        http.MethodGet,
		Path:          b.publicURL + path,
		Result:        result,
		Verbose:       b.Verbose,
		HTTPDebugging: b.HTTPDebugging,
	}
	return b.requester.SendPayload(ctx, func() (*request.Item, error) {
		return item, nil
	})
}

// SendAuthenticatedHTTPRequest signs and POSTs body as JSON to an
// authenticated endpoint. A nil body is sent as an empty object. Each attempt
// draws a fresh nonce and signature.
func (b *Bitfinex) SendAuthenticatedHTTPRequest(ctx context.Context, authPath string, body, result any) error {
	if !b.AllowAuthenticatedRequest() {
		return fmt.Errorf("%s %w", b.Name, ErrAuthenticatedRequestWithoutCredentials)
	}
	sigPath, err := canonicalPath(authPath)
	if err != nil {
		return err
	}

	payload := []byte("{}")
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	if b.Verbose {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		ctx = request.WithJobID(ctx, id)
		log.Debugf(log.ExchangeSys, "%s [%s] %s request JSON: %s", b.Name, id, authPath, payload)
	}

	return b.requester.SendPayload(ctx, func() (*request.Item, error) {
		n, err := b.nonce.Next(ctx)
		if err != nil {
			return nil, err
		}
		headers, err := b.signer.Headers(sigPath, n, payload)
		if err != nil {
			return nil, err
		}
		return &request.Item{
			Method:        http.MethodPost,
			Path:          b.authURL + authPath,
			Headers:       headers,
			Body:          bytes.NewReader(payload),
			Result:        result,
			Verbose:       b.Verbose,
			HTTPDebugging: b.HTTPDebugging,
		}, nil
	})
}
