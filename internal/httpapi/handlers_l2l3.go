package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litebittech/cex/services/dlob/internal/aggregator"
	"github.com/litebittech/cex/services/dlob/internal/apierr"
	"github.com/litebittech/cex/services/dlob/internal/fallback"
	"github.com/litebittech/cex/services/dlob/internal/levelgen"
)

func l2QueryFrom(c *gin.Context) l2Query {
	return l2Query{
		marketName:     c.Query("marketName"),
		marketIndex:    c.Query("marketIndex"),
		marketType:     c.Query("marketType"),
		depth:          c.Query("depth"),
		numVammOrders:  c.Query("numVammOrders"),
		includeVamm:    c.Query("includeVamm"),
		includePhoenix: c.Query("includePhoenix"),
		includeSerum:   c.Query("includeSerum"),
		grouping:       c.Query("grouping"),
		includeOracle:  c.Query("includeOracle"),
	}
}

func (d *Deps) buildL2(p l2Params) gin.H {
	snap := d.Book.Snapshot(p.Market)

	var vammBids, vammAsks levelgen.Generator
	if p.IncludeVamm {
		if curve := d.vammFor(p.Market); curve != nil {
			vammBids = curve.Generate(true, p.NumVammOrders)
			vammAsks = curve.Generate(false, p.NumVammOrders)
		}
	}

	var sources []aggregator.FallbackSource
	if p.IncludePhoenix {
		if m := d.phoenixFor(p.Market); m != nil {
			sources = append(sources, aggregator.FallbackSource{Name: fallback.SourcePhoenix, Bids: m.Bids(), Asks: m.Asks()})
		}
	}
	if p.IncludeSerum {
		if m := d.serumFor(p.Market); m != nil {
			sources = append(sources, aggregator.FallbackSource{Name: fallback.SourceSerum, Bids: m.Bids(), Asks: m.Asks()})
		}
	}

	resp := aggregator.BuildL2(snap, p.Market, aggregator.L2Request{
		Depth:         p.Depth,
		IncludeVamm:   p.IncludeVamm,
		NumVammOrders: p.NumVammOrders,
		Fallbacks:     sources,
		Grouping:      p.Grouping,
	}, vammBids, vammAsks)

	out := gin.H{
		"bids": levelsToJSON(resp.Bids),
		"asks": levelsToJSON(resp.Asks),
		"slot": resp.Slot,
	}
	if p.IncludeOracle {
		if od, ok := d.Oracles.Get(p.Market); ok {
			out["oracle"] = od
		}
	}
	return out
}

func levelsToJSON(levels []aggregator.L2Level) []l2LevelJSON {
	out := make([]l2LevelJSON, len(levels))
	for i, l := range levels {
		out[i] = l2LevelJSON{Price: bigStr(l.Price), Size: bigStr(l.Size), Sources: sourcesToJSON(l.Sources)}
	}
	return out
}

func (d *Deps) handleL2(c *gin.Context) {
	p, err := parseL2Query(d.Markets, l2QueryFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.buildL2(p))
}

// handleBatchL2 implements spec.md §6's batch-normalization rule: every
// list-valued param must be equal length; a missing param is padded with
// an all-empty-string list of that length.
func (d *Deps) handleBatchL2(c *gin.Context) {
	keys := []string{
		"marketName", "marketIndex", "marketType", "depth", "numVammOrders",
		"includeVamm", "includePhoenix", "includeSerum", "grouping", "includeOracle",
	}
	lists := make(map[string][]string, len(keys))
	batchLen := 0
	for _, k := range keys {
		l := getParamList(c, k)
		lists[k] = l
		if len(l) > batchLen {
			batchLen = len(l)
		}
	}
	if batchLen == 0 {
		respondError(c, apierr.Validation("batchL2 requires at least one market selector"))
		return
	}
	for _, k := range keys {
		l := lists[k]
		if len(l) == 0 {
			lists[k] = make([]string, batchLen)
			continue
		}
		if len(l) != batchLen {
			respondError(c, apierr.Validation("mismatched list lengths across batchL2 params"))
			return
		}
	}

	results := make([]gin.H, batchLen)
	for i := 0; i < batchLen; i++ {
		q := l2Query{
			marketName:     lists["marketName"][i],
			marketIndex:    lists["marketIndex"][i],
			marketType:     lists["marketType"][i],
			depth:          lists["depth"][i],
			numVammOrders:  lists["numVammOrders"][i],
			includeVamm:    lists["includeVamm"][i],
			includePhoenix: lists["includePhoenix"][i],
			includeSerum:   lists["includeSerum"][i],
			grouping:       lists["grouping"][i],
			includeOracle:  lists["includeOracle"][i],
		}
		p, err := parseL2Query(d.Markets, q)
		if err != nil {
			respondError(c, err)
			return
		}
		results[i] = d.buildL2(p)
	}
	c.JSON(http.StatusOK, gin.H{"l2s": results})
}

func (d *Deps) handleL3(c *gin.Context) {
	m, err := resolveMarket(d.Markets, c.Query("marketName"), c.Query("marketIndex"), c.Query("marketType"))
	if err != nil {
		respondError(c, err)
		return
	}
	includeOracle, err := parseBoolDefault(c.Query("includeOracle"), false)
	if err != nil {
		respondError(c, err)
		return
	}

	snap := d.Book.Snapshot(m)
	resp := aggregator.BuildL3(snap)

	out := gin.H{
		"bids": l3EntriesToJSON(resp.Bids),
		"asks": l3EntriesToJSON(resp.Asks),
		"slot": resp.Slot,
	}
	if includeOracle {
		if od, ok := d.Oracles.Get(m); ok {
			out["oracle"] = od
		}
	}
	c.JSON(http.StatusOK, out)
}

func l3EntriesToJSON(entries []aggregator.L3Entry) []l3EntryJSON {
	out := make([]l3EntryJSON, len(entries))
	for i, e := range entries {
		out[i] = l3EntryJSON{
			Maker:     e.Maker.String(),
			OrderId:   e.OrderId,
			Price:     bigStr(e.Price),
			Size:      bigStr(e.Size),
			Side:      e.Side.String(),
			InAuction: e.InAuction,
		}
	}
	return out
}
