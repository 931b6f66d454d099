package bitfinex

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	bitfinexPublicURL = "https://api-pub.bitfinex.com/v2"
	bitfinexAuthURL   = "https://api.bitfinex.com"

	// signaturePrefix is prepended to an authenticated path to form the
	// canonical path covered by the signature
	signaturePrefix = "/api"

	authRead  = "/v2/auth/r/"
	authWrite = "/v2/auth/w/"
	authCalc  = "/v2/auth/calc/"

	// Public endpoints
	bitfinexPlatformStatus = "/platform/status"
	bitfinexTicker         = "/ticker/"
	bitfinexTrades         = "/trades/%s/hist"
	bitfinexBook           = "/book/%s/%s"
	bitfinexCandles        = "/candles/trade:%s:%s/%s"

	// Authenticated endpoints
	bitfinexWallets         = authRead + "wallets"
	bitfinexOrders          = authRead + "orders"
	bitfinexOrderHistory    = authRead + "orders/hist"
	bitfinexSymbolHistory   = authRead + "orders/%s/hist"
	bitfinexOrderTrades     = authRead + "order/%s:%d/trades"
	bitfinexTradeHistory    = authRead + "trades/%s/hist"
	bitfinexLedgers         = authRead + "ledgers/%s/hist"
	bitfinexMarginInfo      = authRead + "info/margin/%s"
	bitfinexFundingInfo     = authRead + "info/funding/%s"
	bitfinexPositions       = authRead + "positions"
	bitfinexSummary         = authRead + "summary"
	bitfinexSubmitOrder     = authWrite + "order/submit"
	bitfinexUpdateOrder     = authWrite + "order/update"
	bitfinexCancelOrder     = authWrite + "order/cancel"
	bitfinexClaimPosition   = authWrite + "position/claim"
	bitfinexWalletTransfer  = authWrite + "transfer"
	bitfinexCollateralLimit = authCalc + "deriv/collateral/limits"
	bitfinexMarginBaseKey   = "base"
	bitfinexTradingPrefix   = "t"
	bitfinexFundingPrefix   = "f"
)

var (
	errSymbolEmpty       = errors.New("symbol cannot be empty")
	errInvalidPrecision  = errors.New("invalid book precision")
	errInvalidTimeFrame  = errors.New("invalid candle time frame")
	errInvalidSection    = errors.New("invalid candle section")
	errNotAuthPath       = errors.New("path is not an authenticated endpoint")
	errUnexpectedSymbols = errors.New("symbol prefix does not match the requested market")
)

// canonicalPath returns the path covered by the request signature. Query
// parameters are not part of the signed path.
func canonicalPath(authPath string) (string, error) {
	if !strings.HasPrefix(authPath, "/v2/auth/") {
		return "", fmt.Errorf("%w: %s", errNotAuthPath, authPath)
	}
	if i := strings.IndexByte(authPath, '?'); i >= 0 {
		authPath = authPath[:i]
	}
	return signaturePrefix + authPath, nil
}

// tradingSymbol prefixes a pair with the trading market prefix unless it
// already carries one, e.g. BTCUSD becomes tBTCUSD
func tradingSymbol(s string) (string, error) {
	return prefixSymbol(s, bitfinexTradingPrefix, bitfinexFundingPrefix)
}

// fundingSymbol prefixes a currency with the funding market prefix, e.g. USD
// becomes fUSD
func fundingSymbol(s string) (string, error) {
	return prefixSymbol(s, bitfinexFundingPrefix, bitfinexTradingPrefix)
}

func prefixSymbol(s, want, other string) (string, error) {
	if s == "" {
		return "", errSymbolEmpty
	}
	switch {
	case strings.HasPrefix(s, want) && isUpperSymbol(s[1:]):
		return s, nil
	case strings.HasPrefix(s, other) && isUpperSymbol(s[1:]):
		return "", fmt.Errorf("%w: %s", errUnexpectedSymbols, s)
	}
	return want + strings.ToUpper(s), nil
}

func isUpperSymbol(s string) bool {
	return s != "" && strings.ToUpper(s) == s
}

// BookPrecision selects the aggregation level of an order book
type BookPrecision string

// Book precision levels, R0 returns raw, non aggregated orders
const (
	PrecisionP0 BookPrecision = "P0"
	PrecisionP1 BookPrecision = "P1"
	PrecisionP2 BookPrecision = "P2"
	PrecisionP3 BookPrecision = "P3"
	PrecisionP4 BookPrecision = "P4"
	PrecisionR0 BookPrecision = "R0"
)

func (p BookPrecision) validate(raw bool) error {
	switch p {
	case PrecisionP0, PrecisionP1, PrecisionP2, PrecisionP3, PrecisionP4:
		if !raw {
			return nil
		}
	case PrecisionR0:
		if raw {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", errInvalidPrecision, p)
}

// TimeFrame is a candle interval
type TimeFrame string

// Supported candle intervals
const (
	OneMinute      TimeFrame = "1m"
	FiveMinutes    TimeFrame = "5m"
	FifteenMinutes TimeFrame = "15m"
	ThirtyMinutes  TimeFrame = "30m"
	OneHour        TimeFrame = "1h"
	ThreeHours     TimeFrame = "3h"
	SixHours       TimeFrame = "6h"
	TwelveHours    TimeFrame = "12h"
	OneDay         TimeFrame = "1D"
	OneWeek        TimeFrame = "1W"
	TwoWeeks       TimeFrame = "14D"
	OneMonth       TimeFrame = "1M"
)

var timeFrames = map[TimeFrame]struct{}{
	OneMinute: {}, FiveMinutes: {}, FifteenMinutes: {}, ThirtyMinutes: {},
	OneHour: {}, ThreeHours: {}, SixHours: {}, TwelveHours: {},
	OneDay: {}, OneWeek: {}, TwoWeeks: {}, OneMonth: {},
}

// ParseTimeFrame validates a candle interval string
func ParseTimeFrame(s string) (TimeFrame, error) {
	tf := TimeFrame(s)
	if _, ok := timeFrames[tf]; !ok {
		return "", fmt.Errorf("%w: %q", errInvalidTimeFrame, s)
	}
	return tf, nil
}

// CandleSection selects the most recent candle or the candle history
type CandleSection string

// Candle sections
const (
	SectionLast CandleSection = "last"
	SectionHist CandleSection = "hist"
)

// HistoryParams bounds a historical query. Zero values are omitted.
type HistoryParams struct {
	Start time.Time
	End   time.Time
	Limit int
	// Ascending sorts oldest first, the exchange defaults to newest first
	Ascending bool
}

// values encodes the parameters for a public GET query string
func (h *HistoryParams) values() url.Values {
	v := url.Values{}
	if h == nil {
		return v
	}
	if !h.Start.IsZero() {
		v.Set("start", strconv.FormatInt(h.Start.UnixMilli(), 10))
	}
	if !h.End.IsZero() {
		v.Set("end", strconv.FormatInt(h.End.UnixMilli(), 10))
	}
	if h.Limit > 0 {
		v.Set("limit", strconv.Itoa(h.Limit))
	}
	if h.Ascending {
		v.Set("sort", "1")
	}
	return v
}

// body encodes the parameters for an authenticated POST body
func (h *HistoryParams) body() map[string]any {
	b := map[string]any{}
	if h == nil {
		return b
	}
	if !h.Start.IsZero() {
		b["start"] = h.Start.UnixMilli()
	}
	if !h.End.IsZero() {
		b["end"] = h.End.UnixMilli()
	}
	if h.Limit > 0 {
		b["limit"] = h.Limit
	}
	if h.Ascending {
		b["sort"] = 1
	}
	return b
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}
