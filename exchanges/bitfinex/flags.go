package bitfinex

import "github.com/thrasher-corp/bfxclient/encoding/positional"

// Order flag bits
const (
	FlagHidden     uint32 = 64
	FlagClose      uint32 = 512
	FlagReduceOnly uint32 = 1024
	FlagPostOnly   uint32 = 4096
	FlagOCO        uint32 = 16384
	FlagNoVarRates uint32 = 524288
)

// OrderFlags is the closed set of order flag bits accepted and returned by the
// exchange
var OrderFlags = positional.MustFlagSet("order flags",
	positional.Flag{Name: "HIDDEN", Bit: FlagHidden},
	positional.Flag{Name: "CLOSE", Bit: FlagClose},
	positional.Flag{Name: "REDUCE_ONLY", Bit: FlagReduceOnly},
	positional.Flag{Name: "POST_ONLY", Bit: FlagPostOnly},
	positional.Flag{Name: "OCO", Bit: FlagOCO},
	positional.Flag{Name: "NO_VAR_RATES", Bit: FlagNoVarRates},
)
