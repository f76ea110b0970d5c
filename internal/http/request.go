package http

import (
	"encoding/json"
	"strconv"
	"strings"

	"lootledger/internal/core"
)

// saveDayRequest is the wire form of a day save. Resource values arrive as
// arbitrary JSON because the original client sends form inputs verbatim;
// anything that isn't a number coerces to zero rather than failing the save.
type saveDayRequest struct {
	Resources map[string]json.RawMessage `json:"resources"`
	Note      string                     `json:"note"`
	Confirmed bool                       `json:"confirmed"`
}

func (r saveDayRequest) toResources() core.Resources {
	return core.Resources{
		Gold:             coerceInt64(r.Resources["gold"]),
		HeartPoints:      coerceInt64(r.Resources["heart_points"]),
		HighlightCoupons: coerceInt64(r.Resources["highlight_coupons"]),
		NewHighlight:     coerceInt64(r.Resources["new_highlight"]),
		ReturnHighlight:  coerceInt64(r.Resources["return_highlight"]),
		ExitHighlight:    coerceInt64(r.Resources["exit_highlight"]),
		HighlightCoins:   coerceInt64(r.Resources["highlight_coins"]),
	}
}

// coerceInt64 accepts numbers, numeric strings, or garbage. Garbage is zero.
func coerceInt64(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int64(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
	}

	return 0
}
