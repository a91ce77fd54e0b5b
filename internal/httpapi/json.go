package httpapi

import "math/big"

// bigStr stringifies a big.Int for the decimal-string wire contract
// (spec.md §6, "/orders/json" and /l2,/l3,...); nil becomes "0" rather than
// null, since a nil numeric field here always means "not set" on an
// otherwise-valid order, never a meaningful absence.
func bigStr(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// l2LevelJSON is one /l2 (and /batchL2) response level.
type l2LevelJSON struct {
	Price   string            `json:"price"`
	Size    string            `json:"size"`
	Sources map[string]string `json:"sources"`
}

// l3EntryJSON is one /l3 response entry.
type l3EntryJSON struct {
	Maker     string `json:"maker"`
	OrderId   uint32 `json:"orderId"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Side      string `json:"side"`
	InAuction bool   `json:"inAuction"`
}

func sourcesToJSON(sources map[string]*big.Int) map[string]string {
	out := make(map[string]string, len(sources))
	for k, v := range sources {
		out[k] = bigStr(v)
	}
	return out
}
