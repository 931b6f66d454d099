package mock

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// AnyValue matches any value for a key in MatchURLVals
const AnyValue = "*"

var errUnhandledType = errors.New("unhandled conversion type, please add as needed")

// MatchURLVals reports whether got carries exactly the keys of want with the
// same values. A want value of AnyValue only requires the key to be present.
func MatchURLVals(want, got url.Values) bool {
	if len(want) != len(got) {
		return false
	}

	for key, val := range want {
		val2, ok := got[key]
		if !ok {
			return false
		}
		if len(val) == 1 && val[0] == AnyValue {
			continue
		}
		if strings.Join(val2, "") != strings.Join(val, "") {
			return false
		}
	}
	return true
}

// DeriveURLValsFromJSONMap gets url vals from a JSON object body so that
// authenticated payloads can be matched like query strings
func DeriveURLValsFromJSONMap(payload []byte) (url.Values, error) {
	vals := url.Values{}
	if len(payload) == 0 {
		return vals, nil
	}
	intermediary := make(map[string]any)
	if err := json.Unmarshal(payload, &intermediary); err != nil {
		return vals, err
	}

	for k, v := range intermediary {
		switch val := v.(type) {
		case string:
			vals.Add(k, val)
		case bool:
			vals.Add(k, strconv.FormatBool(val))
		case float64:
			vals.Add(k, strconv.FormatFloat(val, 'f', -1, 64))
		case map[string]any, []any, nil:
			vals.Add(k, fmt.Sprintf("%v", val))
		default:
			return vals, fmt.Errorf("%w: %T", errUnhandledType, val)
		}
	}

	return vals, nil
}
