package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/topmakers"
)

func parseSide(s string) (dlobtypes.Direction, error) {
	switch s {
	case "bid":
		return dlobtypes.Long, nil
	case "ask":
		return dlobtypes.Short, nil
	default:
		return 0, fmt.Errorf("invalid side %q, want bid or ask", s)
	}
}

// handleTopMakers implements /topMakers (spec.md §4.5/§6): up to `limit`
// distinct maker pubkeys, or `[userAccount, userStatsPubkey]` pairs when
// includeUserStats is requested.
func (d *Deps) handleTopMakers(c *gin.Context) {
	m, err := resolveMarket(d.Markets, c.Query("marketName"), c.Query("marketIndex"), c.Query("marketType"))
	if err != nil {
		respondError(c, err)
		return
	}
	side, err := parseSide(c.Query("side"))
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := parseIntDefault(c.Query("limit"), 0)
	if err != nil {
		respondError(c, err)
		return
	}
	includeUserStats, err := parseBoolDefault(c.Query("includeUserStats"), false)
	if err != nil {
		respondError(c, err)
		return
	}

	snap := d.Book.Snapshot(m)
	od, hasOracle := d.Oracles.Get(m)

	entries := topmakers.Build(c.Request.Context(), snap, topmakers.Request{
		Market:           m,
		Side:             side,
		Limit:            limit,
		IncludeUserStats: includeUserStats,
	}, od, hasOracle, d.Stats, d.authorityOf)

	if !includeUserStats {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.Maker.String()
		}
		c.JSON(http.StatusOK, out)
		return
	}

	out := make([][2]string, len(entries))
	for i, e := range entries {
		statsAccount := ""
		if e.StatsAccount != nil {
			statsAccount = e.StatsAccount.String()
		}
		out[i] = [2]string{e.Maker.String(), statsAccount}
	}
	c.JSON(http.StatusOK, out)
}
