package bitfinex

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/bfxclient/encoding/positional"
	"github.com/thrasher-corp/bfxclient/types"
	"github.com/volatiletech/null"
)

var (
	orderKinds = positional.Enum("order type", map[string]OrderKind{
		string(Limit):                Limit,
		string(ExchangeLimit):        ExchangeLimit,
		string(Market):               Market,
		string(ExchangeMarket):       ExchangeMarket,
		string(Stop):                 Stop,
		string(ExchangeStop):         ExchangeStop,
		string(StopLimit):            StopLimit,
		string(ExchangeStopLimit):    ExchangeStopLimit,
		string(TrailingStop):         TrailingStop,
		string(ExchangeTrailingStop): ExchangeTrailingStop,
		string(FOK):                  FOK,
		string(ExchangeFOK):          ExchangeFOK,
		string(IOC):                  IOC,
		string(ExchangeIOC):          ExchangeIOC,
	})

	walletKinds = positional.Enum("wallet type", map[string]WalletKind{
		string(ExchangeWallet): ExchangeWallet,
		string(MarginWallet):   MarginWallet,
		string(FundingWallet):  FundingWallet,
	})

	// FAILUR is still emitted by older notification handlers
	responseStatuses = positional.Enum("response status", map[string]ResponseStatus{
		string(StatusSuccess): StatusSuccess,
		string(StatusError):   StatusError,
		string(StatusFailure): StatusFailure,
		"FAILUR":              StatusFailure,
	})

	orderResponseKinds = positional.Enum("order response type", map[string]OrderResponseKind{
		string(NewOrderRequest):           NewOrderRequest,
		string(UpdateOrderRequest):        UpdateOrderRequest,
		string(CancelOrderRequest):        CancelOrderRequest,
		string(UCA):                       UCA,
		string(FundingNewOrderRequest):    FundingNewOrderRequest,
		string(FundingCancelOrderRequest): FundingCancelOrderRequest,
	})

	transferResponseKinds = positional.Enum("transfer response type", map[string]TransferResponseKind{
		string(AccountTransfer): AccountTransfer,
	})

	positionResponseKinds = positional.Enum("position response type", map[string]PositionResponseKind{
		string(PositionClaim): PositionClaim,
	})

	platformStatusKind = positional.NewKind("platform status", func(value []byte, dataType jsonparser.ValueType) (PlatformStatus, error) {
		v, err := positional.Int64.Parse(value, dataType)
		if err != nil {
			return 0, err
		}
		switch s := PlatformStatus(v); s {
		case Maintenance, Operative:
			return s, nil
		}
		return 0, fmt.Errorf("%w: platform status %d", positional.ErrUnknownValue, v)
	})

	positionMetaKind = positional.NewKind("position meta", parsePositionMeta)

	coercibleFloat = positional.Coercible(positional.Float)
)

var platformStatusSchema = positional.NewSchema("platform status",
	positional.Required("status", platformStatusKind, func(p *PlatformStatus, v PlatformStatus) { *p = v }),
)

var activeOrderSchema = positional.NewSchema("active order",
	positional.Required("id", positional.Int64, func(o *ActiveOrder, v int64) { o.ID = v }),
	positional.Nullable("gid", positional.Int64, func(o *ActiveOrder, v int64, ok bool) { o.GroupID = null.NewInt64(v, ok) }),
	positional.Required("cid", positional.Int64, func(o *ActiveOrder, v int64) { o.ClientID = v }),
	positional.Required("symbol", positional.String, func(o *ActiveOrder, v string) { o.Symbol = v }),
	positional.Required("mts_create", positional.Time, func(o *ActiveOrder, v types.Time) { o.Created = v }),
	positional.Required("mts_update", positional.Time, func(o *ActiveOrder, v types.Time) { o.Updated = v }),
	positional.Required("amount", positional.Float, func(o *ActiveOrder, v float64) { o.Amount = v }),
	positional.Required("amount_orig", positional.Float, func(o *ActiveOrder, v float64) { o.AmountOriginal = v }),
	positional.Required("type", orderKinds, func(o *ActiveOrder, v OrderKind) { o.Type = v }),
	positional.Nullable("type_prev", orderKinds, func(o *ActiveOrder, v OrderKind, _ bool) { o.PreviousType = v }),
	positional.Nullable("mts_tif", positional.Time, func(o *ActiveOrder, v types.Time, _ bool) { o.TimeInForce = v }),
	positional.Skip[ActiveOrder]("placeholder"),
	positional.Flags("flags", OrderFlags, func(o *ActiveOrder, v uint32) { o.Flags = v }),
	positional.Required("status", positional.String, func(o *ActiveOrder, v string) { o.Status = v }),
	positional.Skip[ActiveOrder]("placeholder"),
	positional.Skip[ActiveOrder]("placeholder"),
	positional.Required("price", positional.Float, func(o *ActiveOrder, v float64) { o.Price = v }),
	positional.Sentinel("price_avg", positional.Float, 0, func(o *ActiveOrder, v float64, ok bool) { o.PriceAverage = null.NewFloat64(v, ok) }),
	positional.Sentinel("price_trailing", positional.Float, 0, func(o *ActiveOrder, v float64, ok bool) { o.PriceTrailing = null.NewFloat64(v, ok) }),
	positional.Sentinel("price_aux_limit", positional.Float, 0, func(o *ActiveOrder, v float64, ok bool) { o.PriceAuxLimit = null.NewFloat64(v, ok) }),
	positional.Skip[ActiveOrder]("placeholder"),
	positional.Skip[ActiveOrder]("placeholder"),
	positional.Skip[ActiveOrder]("placeholder"),
	positional.Required("notify", positional.Bool, func(o *ActiveOrder, v bool) { o.Notify = v }),
	positional.Required("hidden", positional.Bool, func(o *ActiveOrder, v bool) { o.Hidden = v }),
	positional.Nullable("placed_id", positional.Int64, func(o *ActiveOrder, v int64, ok bool) { o.PlacedID = null.NewInt64(v, ok) }),
)

var orderSchema = positional.NewSchema("order", append(
	positional.Embed(activeOrderSchema, func(o *Order) *ActiveOrder { return &o.ActiveOrder }),
	positional.Skip[Order]("placeholder"),
	positional.Skip[Order]("placeholder"),
	positional.Nullable("routing", positional.String, func(o *Order, v string, _ bool) { o.Routing = v }),
	positional.Skip[Order]("placeholder"),
	positional.Skip[Order]("placeholder"),
	positional.Nullable("meta", positional.RawJSON, func(o *Order, v json.RawMessage, _ bool) { o.Meta = v }),
)...)

var walletTransferSchema = positional.NewSchema("wallet transfer",
	positional.Required("mts_update", positional.Time, func(w *WalletTransfer, v types.Time) { w.Updated = v }),
	positional.Required("wallet_from", walletKinds, func(w *WalletTransfer, v WalletKind) { w.From = v }),
	positional.Required("wallet_to", walletKinds, func(w *WalletTransfer, v WalletKind) { w.To = v }),
	positional.Skip[WalletTransfer]("placeholder"),
	positional.Required("currency", positional.String, func(w *WalletTransfer, v string) { w.Currency = v }),
	positional.Nullable("currency_to", positional.String, func(w *WalletTransfer, v string, ok bool) { w.CurrencyTo = null.NewString(v, ok) }),
	positional.Skip[WalletTransfer]("placeholder"),
	positional.Required("amount", positional.Decimal, func(w *WalletTransfer, v decimal.Decimal) { w.Amount = v }),
)

var collateralLimitsSchema = positional.NewSchema("collateral limits",
	positional.Required("min_collateral", positional.Decimal, func(c *CollateralLimits, v decimal.Decimal) { c.Min = v }),
	positional.Required("max_collateral", positional.Decimal, func(c *CollateralLimits, v decimal.Decimal) { c.Max = v }),
)

var walletSchema = positional.NewSchema("wallet",
	positional.Required("type", walletKinds, func(w *Wallet, v WalletKind) { w.Type = v }),
	positional.Required("currency", positional.String, func(w *Wallet, v string) { w.Currency = v }),
	positional.Required("balance", positional.Decimal, func(w *Wallet, v decimal.Decimal) { w.Balance = v }),
	positional.Required("unsettled_interest", positional.Decimal, func(w *Wallet, v decimal.Decimal) { w.UnsettledInterest = v }),
	positional.Nullable("available_balance", positional.Decimal, func(w *Wallet, v decimal.Decimal, ok bool) {
		w.AvailableBalance = decimal.NullDecimal{Decimal: v, Valid: ok}
	}),
)

var marginBaseValues = positional.NewSchema("margin base values",
	positional.Required("user_pl", positional.Float, func(m *MarginBase, v float64) { m.UserProfitLoss = v }),
	positional.Required("user_swaps", positional.Float, func(m *MarginBase, v float64) { m.UserSwaps = v }),
	positional.Required("margin_balance", positional.Float, func(m *MarginBase, v float64) { m.MarginBalance = v }),
	positional.Required("margin_net", positional.Float, func(m *MarginBase, v float64) { m.MarginNet = v }),
)

var marginBaseSchema = positional.NewSchema("margin base",
	positional.Skip[MarginBase]("key"),
	positional.Nested("values", marginBaseValues, func(m *MarginBase, v MarginBase) { *m = v }),
)

var marginSymbolValues = positional.NewSchema("margin symbol values",
	positional.Required("tradable_balance", positional.Float, func(m *MarginSymbol, v float64) { m.TradableBalance = v }),
	positional.Required("gross_balance", positional.Float, func(m *MarginSymbol, v float64) { m.GrossBalance = v }),
	positional.Required("buy", positional.Float, func(m *MarginSymbol, v float64) { m.Buy = v }),
	positional.Required("sell", positional.Float, func(m *MarginSymbol, v float64) { m.Sell = v }),
)

var marginSymbolSchema = positional.NewSchema("margin symbol",
	positional.Skip[MarginSymbol]("key"),
	positional.Required("symbol", positional.String, func(m *MarginSymbol, v string) { m.Symbol = v }),
	positional.Nested("values", marginSymbolValues, func(m *MarginSymbol, v MarginSymbol) {
		v.Symbol = m.Symbol
		*m = v
	}),
)

var fundingInfoValues = positional.NewSchema("funding info values",
	positional.Required("yield_loan", positional.Float, func(f *FundingInfo, v float64) { f.YieldLoan = v }),
	positional.Required("yield_lend", positional.Float, func(f *FundingInfo, v float64) { f.YieldLend = v }),
	positional.Required("duration_loan", positional.Float, func(f *FundingInfo, v float64) { f.DurationLoan = v }),
	positional.Required("duration_lend", positional.Float, func(f *FundingInfo, v float64) { f.DurationLend = v }),
)

var fundingInfoSchema = positional.NewSchema("funding info",
	positional.Skip[FundingInfo]("key"),
	positional.Required("symbol", positional.String, func(f *FundingInfo, v string) { f.Symbol = v }),
	positional.Nested("values", fundingInfoValues, func(f *FundingInfo, v FundingInfo) {
		v.Symbol = f.Symbol
		*f = v
	}),
)

var makerFeeSchema = positional.NewSchema("maker fees",
	positional.Required("maker_fee", positional.Decimal, func(f *AccountFees, v decimal.Decimal) { f.MakerFee = v }),
	positional.Skip[AccountFees]("maker_fee"),
	positional.Skip[AccountFees]("maker_fee"),
	positional.Skip[AccountFees]("placeholder"),
	positional.Skip[AccountFees]("placeholder"),
	positional.Required("derivative_rebate", positional.Decimal, func(f *AccountFees, v decimal.Decimal) { f.DerivativeRebate = v }),
)

var takerFeeSchema = positional.NewSchema("taker fees",
	positional.Required("taker_fee_to_crypto", positional.Decimal, func(f *AccountFees, v decimal.Decimal) { f.TakerToCrypto = v }),
	positional.Required("taker_fee_to_stable", positional.Decimal, func(f *AccountFees, v decimal.Decimal) { f.TakerToStable = v }),
	positional.Required("taker_fee_to_fiat", positional.Decimal, func(f *AccountFees, v decimal.Decimal) { f.TakerToFiat = v }),
	positional.Skip[AccountFees]("placeholder"),
	positional.Skip[AccountFees]("placeholder"),
	positional.Required("derivative_taker_fee", positional.Decimal, func(f *AccountFees, v decimal.Decimal) { f.DerivativeTaker = v }),
)

var feeTableSchema = positional.NewSchema("fee table",
	positional.Nested("maker", makerFeeSchema, func(f *AccountFees, v AccountFees) {
		f.MakerFee, f.DerivativeRebate = v.MakerFee, v.DerivativeRebate
	}),
	positional.Nested("taker", takerFeeSchema, func(f *AccountFees, v AccountFees) {
		f.TakerToCrypto, f.TakerToStable, f.TakerToFiat, f.DerivativeTaker = v.TakerToCrypto, v.TakerToStable, v.TakerToFiat, v.DerivativeTaker
	}),
)

var accountFeesSchema = positional.NewSchema("account summary",
	positional.Skip[AccountFees]("placeholder"),
	positional.Skip[AccountFees]("placeholder"),
	positional.Skip[AccountFees]("placeholder"),
	positional.Skip[AccountFees]("placeholder"),
	positional.Nested("fees", feeTableSchema, func(f *AccountFees, v AccountFees) { *f = v }),
)

var tradeSchema = positional.NewSchema("trade",
	positional.Required("id", positional.Int64, func(t *Trade, v int64) { t.ID = v }),
	positional.Required("symbol", positional.String, func(t *Trade, v string) { t.Symbol = v }),
	positional.Required("mts", positional.Time, func(t *Trade, v types.Time) { t.Executed = v }),
	positional.Required("order_id", positional.Int64, func(t *Trade, v int64) { t.OrderID = v }),
	positional.Required("exec_amount", positional.Float, func(t *Trade, v float64) { t.ExecAmount = v }),
	positional.Required("exec_price", positional.Float, func(t *Trade, v float64) { t.ExecPrice = v }),
	positional.Nullable("order_type", orderKinds, func(t *Trade, v OrderKind, _ bool) { t.OrderType = v }),
	positional.Nullable("order_price", positional.Float, func(t *Trade, v float64, ok bool) { t.OrderPrice = null.NewFloat64(v, ok) }),
	positional.Required("maker", positional.Bool, func(t *Trade, v bool) { t.Maker = v }),
	positional.Required("fee", positional.Float, func(t *Trade, v float64) { t.Fee = v }),
	positional.Required("fee_currency", positional.String, func(t *Trade, v string) { t.FeeCurrency = v }),
)

var ledgerEntrySchema = positional.NewSchema("ledger entry",
	positional.Required("id", positional.Int64, func(l *LedgerEntry, v int64) { l.ID = v }),
	positional.Required("currency", positional.String, func(l *LedgerEntry, v string) { l.Currency = v }),
	positional.Skip[LedgerEntry]("placeholder"),
	positional.Required("mts", positional.Time, func(l *LedgerEntry, v types.Time) { l.Timestamp = v }),
	positional.Skip[LedgerEntry]("placeholder"),
	positional.Required("amount", positional.Decimal, func(l *LedgerEntry, v decimal.Decimal) { l.Amount = v }),
	positional.Required("balance", positional.Decimal, func(l *LedgerEntry, v decimal.Decimal) { l.Balance = v }),
	positional.Skip[LedgerEntry]("placeholder"),
	positional.Required("description", positional.String, func(l *LedgerEntry, v string) { l.Description = v }),
)

var positionSchema = positional.NewSchema("position",
	positional.Required("symbol", positional.String, func(p *Position, v string) { p.Symbol = v }),
	positional.Required("status", positional.String, func(p *Position, v string) { p.Status = v }),
	positional.Required("amount", positional.Float, func(p *Position, v float64) { p.Amount = v }),
	positional.Required("base_price", positional.Float, func(p *Position, v float64) { p.BasePrice = v }),
	positional.Required("margin_funding", positional.Float, func(p *Position, v float64) { p.MarginFunding = v }),
	positional.Required("margin_funding_type", positional.Int64, func(p *Position, v int64) { p.MarginFundingType = v }),
	positional.Nullable("pl", positional.Float, func(p *Position, v float64, ok bool) { p.ProfitLoss = null.NewFloat64(v, ok) }),
	positional.Nullable("pl_perc", positional.Float, func(p *Position, v float64, ok bool) { p.ProfitLossPerc = null.NewFloat64(v, ok) }),
	positional.Nullable("price_liq", positional.Float, func(p *Position, v float64, ok bool) { p.LiquidationPrice = null.NewFloat64(v, ok) }),
	positional.Nullable("leverage", positional.Float, func(p *Position, v float64, ok bool) { p.Leverage = null.NewFloat64(v, ok) }),
	positional.Skip[Position]("placeholder"),
	positional.Required("position_id", positional.Int64, func(p *Position, v int64) { p.ID = v }),
	positional.Nullable("mts_create", positional.Time, func(p *Position, v types.Time, _ bool) { p.Created = v }),
	positional.Nullable("mts_update", positional.Time, func(p *Position, v types.Time, _ bool) { p.Updated = v }),
	positional.Skip[Position]("placeholder"),
	positional.Required("type", positional.Int64, func(p *Position, v int64) { p.Type = v }),
	positional.Skip[Position]("placeholder"),
	positional.Nullable("collateral", positional.Float, func(p *Position, v float64, ok bool) { p.Collateral = null.NewFloat64(v, ok) }),
	positional.Nullable("collateral_min", positional.Float, func(p *Position, v float64, ok bool) { p.CollateralMin = null.NewFloat64(v, ok) }),
	positional.Nullable("meta", positionMetaKind, func(p *Position, v *PositionMeta, _ bool) { p.Meta = v }),
)

var tradingTickerSchema = positional.NewSchema("trading ticker",
	positional.Required("bid", positional.Float, func(t *TradingTicker, v float64) { t.Bid = v }),
	positional.Required("bid_size", positional.Float, func(t *TradingTicker, v float64) { t.BidSize = v }),
	positional.Required("ask", positional.Float, func(t *TradingTicker, v float64) { t.Ask = v }),
	positional.Required("ask_size", positional.Float, func(t *TradingTicker, v float64) { t.AskSize = v }),
	positional.Required("daily_change", positional.Float, func(t *TradingTicker, v float64) { t.DailyChange = v }),
	positional.Required("daily_change_relative", positional.Float, func(t *TradingTicker, v float64) { t.DailyChangeRelative = v }),
	positional.Required("last_price", positional.Float, func(t *TradingTicker, v float64) { t.LastPrice = v }),
	positional.Required("volume", positional.Float, func(t *TradingTicker, v float64) { t.Volume = v }),
	positional.Required("high", positional.Float, func(t *TradingTicker, v float64) { t.High = v }),
	positional.Required("low", positional.Float, func(t *TradingTicker, v float64) { t.Low = v }),
)

var fundingTickerSchema = positional.NewSchema("funding ticker",
	positional.Required("frr", positional.Float, func(t *FundingTicker, v float64) { t.FRR = v }),
	positional.Required("bid", positional.Float, func(t *FundingTicker, v float64) { t.Bid = v }),
	positional.Required("bid_period", positional.Int64, func(t *FundingTicker, v int64) { t.BidPeriod = v }),
	positional.Required("bid_size", positional.Float, func(t *FundingTicker, v float64) { t.BidSize = v }),
	positional.Required("ask", positional.Float, func(t *FundingTicker, v float64) { t.Ask = v }),
	positional.Required("ask_period", positional.Int64, func(t *FundingTicker, v int64) { t.AskPeriod = v }),
	positional.Required("ask_size", positional.Float, func(t *FundingTicker, v float64) { t.AskSize = v }),
	positional.Required("daily_change", positional.Float, func(t *FundingTicker, v float64) { t.DailyChange = v }),
	positional.Required("daily_change_relative", positional.Float, func(t *FundingTicker, v float64) { t.DailyChangeRelative = v }),
	positional.Required("last_price", positional.Float, func(t *FundingTicker, v float64) { t.LastPrice = v }),
	positional.Required("volume", positional.Float, func(t *FundingTicker, v float64) { t.Volume = v }),
	positional.Required("high", positional.Float, func(t *FundingTicker, v float64) { t.High = v }),
	positional.Required("low", positional.Float, func(t *FundingTicker, v float64) { t.Low = v }),
)

var publicTradeSchema = positional.NewSchema("public trade",
	positional.Required("id", positional.Int64, func(t *PublicTrade, v int64) { t.ID = v }),
	positional.Required("mts", positional.Time, func(t *PublicTrade, v types.Time) { t.Timestamp = v }),
	positional.Required("amount", positional.Float, func(t *PublicTrade, v float64) { t.Amount = v }),
	positional.Required("price", positional.Float, func(t *PublicTrade, v float64) { t.Price = v }),
)

var fundingTradeSchema = positional.NewSchema("funding trade",
	positional.Required("id", positional.Int64, func(t *FundingTrade, v int64) { t.ID = v }),
	positional.Required("mts", positional.Time, func(t *FundingTrade, v types.Time) { t.Timestamp = v }),
	positional.Required("amount", positional.Float, func(t *FundingTrade, v float64) { t.Amount = v }),
	positional.Required("rate", positional.Float, func(t *FundingTrade, v float64) { t.Rate = v }),
	positional.Required("period", positional.Int64, func(t *FundingTrade, v int64) { t.Period = v }),
)

var bookEntrySchema = positional.NewSchema("book entry",
	positional.Required("price", positional.Float, func(b *BookEntry, v float64) { b.Price = v }),
	positional.Required("count", positional.Int64, func(b *BookEntry, v int64) { b.Count = v }),
	positional.Required("amount", positional.Float, func(b *BookEntry, v float64) { b.Amount = v }),
)

var fundingBookEntrySchema = positional.NewSchema("funding book entry",
	positional.Required("rate", positional.Float, func(b *FundingBookEntry, v float64) { b.Rate = v }),
	positional.Required("period", positional.Int64, func(b *FundingBookEntry, v int64) { b.Period = v }),
	positional.Required("count", positional.Int64, func(b *FundingBookEntry, v int64) { b.Count = v }),
	positional.Required("amount", positional.Float, func(b *FundingBookEntry, v float64) { b.Amount = v }),
)

var rawBookEntrySchema = positional.NewSchema("raw book entry",
	positional.Required("order_id", positional.Int64, func(b *RawBookEntry, v int64) { b.OrderID = v }),
	positional.Required("price", positional.Float, func(b *RawBookEntry, v float64) { b.Price = v }),
	positional.Required("amount", positional.Float, func(b *RawBookEntry, v float64) { b.Amount = v }),
)

var candleSchema = positional.NewSchema("candle",
	positional.Required("mts", positional.Time, func(c *Candle, v types.Time) { c.Timestamp = v }),
	positional.Required("open", positional.Float, func(c *Candle, v float64) { c.Open = v }),
	positional.Required("close", positional.Float, func(c *Candle, v float64) { c.Close = v }),
	positional.Required("high", positional.Float, func(c *Candle, v float64) { c.High = v }),
	positional.Required("low", positional.Float, func(c *Candle, v float64) { c.Low = v }),
	positional.Required("volume", positional.Float, func(c *Candle, v float64) { c.Volume = v }),
)

// parsePositionMeta decodes the keyed meta object attached to a position.
// Absent keys leave their field zeroed.
func parsePositionMeta(value []byte, dataType jsonparser.ValueType) (*PositionMeta, error) {
	if dataType != jsonparser.Object {
		return nil, fmt.Errorf("%w: want object, got %s", positional.ErrWrongType, dataType)
	}
	m := &PositionMeta{}
	if err := metaField(value, "reason", positional.String, func(v string) { m.Reason = v }); err != nil {
		return nil, err
	}
	if err := metaField(value, "order_id", positional.Int64, func(v int64) { m.OrderID = v }); err != nil {
		return nil, err
	}
	if err := metaField(value, "order_id_oppo", positional.Int64, func(v int64) { m.OrderIDOppo = v }); err != nil {
		return nil, err
	}
	if err := metaField(value, "liq_stage", positional.String, func(v string) { m.LiqStage = null.StringFrom(v) }); err != nil {
		return nil, err
	}
	if err := metaField(value, "trade_price", coercibleFloat, func(v float64) { m.TradePrice = v }); err != nil {
		return nil, err
	}
	if err := metaField(value, "trade_amount", coercibleFloat, func(v float64) { m.TradeAmount = v }); err != nil {
		return nil, err
	}
	return m, nil
}

func metaField[V any](obj []byte, key string, kind positional.Kind[V], set func(V)) error {
	value, dataType, _, err := jsonparser.Get(obj, key)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) || dataType == jsonparser.Null {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", positional.ErrMalformedJSON, err)
	}
	v, err := kind.Parse(value, dataType)
	if err != nil {
		return fmt.Errorf("meta %s: %w", key, err)
	}
	set(v)
	return nil
}

// notificationHeader maps the envelope's status and type onto their closed
// enumerations
func notificationHeader[K any](env *positional.Envelope, record string, kinds positional.Kind[K]) (Notification, K, error) {
	n := Notification{
		Timestamp: env.Timestamp,
		MessageID: env.MessageID,
		Code:      env.Code,
		Text:      env.Text,
		Nesting:   env.Nesting,
	}
	k, err := kinds.Parse([]byte(env.Kind), jsonparser.String)
	if err != nil {
		return n, k, &positional.DecodeError{Record: record, Field: "type", Index: 1, Err: err}
	}
	n.Status, err = responseStatuses.Parse([]byte(env.Status), jsonparser.String)
	if err != nil {
		return n, k, &positional.DecodeError{Record: record, Field: "status", Index: 6, Err: err}
	}
	return n, k, nil
}

// decodeNotification decodes a write endpoint response. A notification whose
// status is not SUCCESS returns ErrRequestRejected alongside the decoded
// header and the inner record is left zeroed.
func decodeNotification[K, T any](data []byte, kinds positional.Kind[K], inner *positional.Schema[T]) (Notification, K, T, error) {
	var rec T
	env, err := positional.DecodeEnvelope(data)
	if err != nil {
		var k K
		return Notification{}, k, rec, err
	}
	n, k, err := notificationHeader(&env, inner.Name()+" notification", kinds)
	if err != nil {
		return n, k, rec, err
	}
	if n.Status != StatusSuccess {
		return n, k, rec, fmt.Errorf("%w: %s %s: %s", ErrRequestRejected, env.Kind, n.Status, n.Text)
	}
	if env.Nesting == positional.NestingNone {
		return n, k, rec, &positional.DecodeError{Record: inner.Name(), Field: "payload", Index: 4, Err: positional.ErrEmptyPayload}
	}
	rec, err = inner.Decode(env.Payload)
	return n, k, rec, err
}
