package bitfinex

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/bfxclient/encoding/positional"
	"github.com/thrasher-corp/bfxclient/types"
	"github.com/volatiletech/null"
)

// OrderKind is the type of an order
type OrderKind string

// Order kinds
const (
	Limit                OrderKind = "LIMIT"
	ExchangeLimit        OrderKind = "EXCHANGE LIMIT"
	Market               OrderKind = "MARKET"
	ExchangeMarket       OrderKind = "EXCHANGE MARKET"
	Stop                 OrderKind = "STOP"
	ExchangeStop         OrderKind = "EXCHANGE STOP"
	StopLimit            OrderKind = "STOP LIMIT"
	ExchangeStopLimit    OrderKind = "EXCHANGE STOP LIMIT"
	TrailingStop         OrderKind = "TRAILING STOP"
	ExchangeTrailingStop OrderKind = "EXCHANGE TRAILING STOP"
	FOK                  OrderKind = "FOK"
	ExchangeFOK          OrderKind = "EXCHANGE FOK"
	IOC                  OrderKind = "IOC"
	ExchangeIOC          OrderKind = "EXCHANGE IOC"
)

// WalletKind identifies one of the account's wallets
type WalletKind string

// Wallet kinds
const (
	ExchangeWallet WalletKind = "exchange"
	MarginWallet   WalletKind = "margin"
	FundingWallet  WalletKind = "funding"
)

// ResponseStatus is the status of a notification
type ResponseStatus string

// Notification statuses
const (
	StatusSuccess ResponseStatus = "SUCCESS"
	StatusError   ResponseStatus = "ERROR"
	StatusFailure ResponseStatus = "FAILURE"
)

// OrderResponseKind is the purpose of an order notification
type OrderResponseKind string

// Order notification kinds
const (
	NewOrderRequest           OrderResponseKind = "on-req"
	UpdateOrderRequest        OrderResponseKind = "ou-req"
	CancelOrderRequest        OrderResponseKind = "oc-req"
	UCA                       OrderResponseKind = "uca"
	FundingNewOrderRequest    OrderResponseKind = "fon-req"
	FundingCancelOrderRequest OrderResponseKind = "foc-req"
)

// TransferResponseKind is the purpose of a wallet transfer notification
type TransferResponseKind string

// AccountTransfer is the only transfer notification kind
const AccountTransfer TransferResponseKind = "acc_tf"

// PositionResponseKind is the purpose of a position notification
type PositionResponseKind string

// PositionClaim is returned when a position is claimed
const PositionClaim PositionResponseKind = "pos_claim"

// PlatformStatus reports whether the platform accepts trading activity
type PlatformStatus int64

// Platform statuses. When the platform is marked in maintenance mode bots
// should stop trading activity. Cancelling orders will be possible.
const (
	Maintenance PlatformStatus = 0
	Operative   PlatformStatus = 1
)

// String implements fmt.Stringer
func (p PlatformStatus) String() string {
	if p == Operative {
		return "operative"
	}
	return "maintenance"
}

// Notification holds the outer fields shared by every write response
type Notification struct {
	Timestamp types.Time
	MessageID null.Int64
	Code      null.Int64
	Status    ResponseStatus
	Text      string
	// Nesting reports how the inner record was wrapped in the payload slot
	Nesting positional.Nesting
}

// ActiveOrder is an order as returned by the order listing endpoints
type ActiveOrder struct {
	ID             int64
	GroupID        null.Int64
	ClientID       int64
	Symbol         string
	Created        types.Time
	Updated        types.Time
	Amount         float64
	AmountOriginal float64
	Type           OrderKind
	// PreviousType is empty when the order type never changed
	PreviousType  OrderKind
	TimeInForce   types.Time
	Flags         uint32
	Status        string
	Price         float64
	PriceAverage  null.Float64
	PriceTrailing null.Float64
	PriceAuxLimit null.Float64
	Notify        bool
	Hidden        bool
	PlacedID      null.Int64
}

// Order is an ActiveOrder extended with the routing and meta slots returned
// inside order notifications
type Order struct {
	ActiveOrder
	Routing string
	Meta    json.RawMessage
}

// OrderResponse is the notification returned by order submit, update and
// cancel requests
type OrderResponse struct {
	Notification
	Kind  OrderResponseKind
	Order Order
}

// WalletTransfer is the inner record of a wallet transfer notification
type WalletTransfer struct {
	Updated    types.Time
	From       WalletKind
	To         WalletKind
	Currency   string
	CurrencyTo null.String
	Amount     decimal.Decimal
}

// TransferResponse is the notification returned by a wallet transfer
type TransferResponse struct {
	Notification
	Kind     TransferResponseKind
	Transfer WalletTransfer
}

// AccountFees holds the account's fee schedule from the summary endpoint
type AccountFees struct {
	MakerFee         decimal.Decimal
	DerivativeRebate decimal.Decimal
	TakerToCrypto    decimal.Decimal
	TakerToStable    decimal.Decimal
	TakerToFiat      decimal.Decimal
	DerivativeTaker  decimal.Decimal
}

// Wallet holds a single wallet balance
type Wallet struct {
	Type              WalletKind
	Currency          string
	Balance           decimal.Decimal
	UnsettledInterest decimal.Decimal
	// AvailableBalance is null until the exchange has computed it
	AvailableBalance decimal.NullDecimal
}

// MarginBase holds the account wide margin figures
type MarginBase struct {
	UserProfitLoss float64
	UserSwaps      float64
	MarginBalance  float64
	MarginNet      float64
}

// MarginSymbol holds the margin figures for one trading pair
type MarginSymbol struct {
	Symbol          string
	TradableBalance float64
	GrossBalance    float64
	Buy             float64
	Sell            float64
}

// FundingInfo holds the funding yields and durations for one currency
type FundingInfo struct {
	Symbol       string
	YieldLoan    float64
	YieldLend    float64
	DurationLoan float64
	DurationLend float64
}

// Trade is an execution of one of the account's orders
type Trade struct {
	ID         int64
	Symbol     string
	Executed   types.Time
	OrderID    int64
	ExecAmount float64
	ExecPrice  float64
	// OrderType is empty when the exchange omits it
	OrderType   OrderKind
	OrderPrice  null.Float64
	Maker       bool
	Fee         float64
	FeeCurrency string
}

// LedgerEntry is a single balance movement
type LedgerEntry struct {
	ID          int64
	Currency    string
	Timestamp   types.Time
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	Description string
}

// PositionMeta describes the trade that last changed a position
type PositionMeta struct {
	Reason      string
	OrderID     int64
	OrderIDOppo int64
	LiqStage    null.String
	TradePrice  float64
	TradeAmount float64
}

// CollateralLimits bounds the collateral that can be assigned to a derivative
// position
type CollateralLimits struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Position is an open margin or derivative position
type Position struct {
	Symbol            string
	Status            string
	Amount            float64
	BasePrice         float64
	MarginFunding     float64
	MarginFundingType int64
	ProfitLoss        null.Float64
	ProfitLossPerc    null.Float64
	LiquidationPrice  null.Float64
	Leverage          null.Float64
	ID                int64
	Created           types.Time
	Updated           types.Time
	Type              int64
	Collateral        null.Float64
	CollateralMin     null.Float64
	// Meta is nil for positions that have not traded
	Meta *PositionMeta
}

// PositionResponse is the notification returned by a position claim
type PositionResponse struct {
	Notification
	Kind     PositionResponseKind
	Position Position
}

// TradingTicker is the ticker of a trading pair
type TradingTicker struct {
	Bid                 float64
	BidSize             float64
	Ask                 float64
	AskSize             float64
	DailyChange         float64
	DailyChangeRelative float64
	LastPrice           float64
	Volume              float64
	High                float64
	Low                 float64
}

// FundingTicker is the ticker of a funding currency
type FundingTicker struct {
	FRR                 float64
	Bid                 float64
	BidPeriod           int64
	BidSize             float64
	Ask                 float64
	AskPeriod           int64
	AskSize             float64
	DailyChange         float64
	DailyChangeRelative float64
	LastPrice           float64
	Volume              float64
	High                float64
	Low                 float64
}

// PublicTrade is a public trade on a trading pair
type PublicTrade struct {
	ID        int64
	Timestamp types.Time
	Amount    float64
	Price     float64
}

// FundingTrade is a public trade on a funding currency
type FundingTrade struct {
	ID        int64
	Timestamp types.Time
	Amount    float64
	Rate      float64
	Period    int64
}

// BookEntry is an aggregated trading book level
type BookEntry struct {
	Price  float64
	Count  int64
	Amount float64
}

// FundingBookEntry is an aggregated funding book level
type FundingBookEntry struct {
	Rate   float64
	Period int64
	Count  int64
	Amount float64
}

// RawBookEntry is a single order in a raw trading book
type RawBookEntry struct {
	OrderID int64
	Price   float64
	Amount  float64
}

// Candle is an OHLCV bucket
type Candle struct {
	Timestamp types.Time
	Open      float64
	Close     float64
	High      float64
	Low       float64
	Volume    float64
}

// OrderRequest holds the parameters of a new order. Price is ignored for
// market orders.
type OrderRequest struct {
	Type          OrderKind
	Symbol        string
	Amount        decimal.Decimal
	Price         decimal.Decimal
	PriceTrailing decimal.NullDecimal
	PriceAuxLimit decimal.NullDecimal
	PriceOCOStop  decimal.NullDecimal
	GroupID       null.Int64
	ClientID      null.Int64
	Flags         []uint32
	Leverage      null.Int64
	TimeInForce   types.Time
}

// OrderUpdate holds the changes to an existing order, unset fields are left
// unchanged
type OrderUpdate struct {
	ID            int64
	Amount        decimal.NullDecimal
	Delta         decimal.NullDecimal
	Price         decimal.NullDecimal
	PriceTrailing decimal.NullDecimal
	PriceAuxLimit decimal.NullDecimal
	Flags         []uint32
}

// TransferRequest moves funds between wallets and optionally converts the
// currency
type TransferRequest struct {
	From       WalletKind
	To         WalletKind
	Currency   string
	CurrencyTo string
	Amount     decimal.Decimal
}
