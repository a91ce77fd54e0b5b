package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/litebittech/cex/services/dlob/internal/book"
	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/fallback"
	"github.com/litebittech/cex/services/dlob/internal/market"
	"github.com/litebittech/cex/services/dlob/internal/oracle"
	"github.com/litebittech/cex/services/dlob/internal/orderindex"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
	"github.com/litebittech/cex/services/dlob/internal/ratelimit"
	"github.com/litebittech/cex/services/dlob/internal/slotsource"
	"github.com/litebittech/cex/services/dlob/internal/userstats"
	"github.com/litebittech/cex/services/dlob/internal/vamm"
	"github.com/litebittech/cex/services/dlob/services/marketfeeds/common/set"
)

// fakeProvider is a minimal accountstream.Provider stand-in: the real
// providers need a live subscription source these router tests don't
// exercise.
type fakeProvider struct{ orders *orderindex.Index }

func (f *fakeProvider) Subscribe(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }
func (f *fakeProvider) Size() int                            { return f.orders.Size() }
func (f *fakeProvider) GetUserAccounts() []*dlobtypes.UserAccount {
	entries := f.orders.Iterate()
	out := make([]*dlobtypes.UserAccount, len(entries))
	for i, e := range entries {
		out[i] = e.Account
	}
	return out
}
func (f *fakeProvider) GetUserAccount(pk pubkey.PublicKey) (*dlobtypes.UserAccount, bool) {
	return f.orders.Get(pk)
}
func (f *fakeProvider) GetUniqueAuthorities() set.Set[pubkey.PublicKey] {
	return f.orders.UniqueAuthorities()
}

func testDeps(t *testing.T) *Deps {
	gin.SetMode(gin.TestMode)

	registry := market.NewRegistry([]market.Market{
		{Type: market.Perp, Index: 0, Name: "SOL-PERP"},
	})
	orders := orderindex.New()
	slots := slotsource.New()
	oracles := oracle.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bookBuilder := book.New(orders, slots, oracles, registry, time.Hour, log)

	stats := userstats.New(func(ctx context.Context, authority pubkey.PublicKey) (userstats.Stats, error) {
		return userstats.Stats{Authority: authority}, nil
	}, nil, time.Minute)

	return &Deps{
		Markets:        registry,
		Book:           bookBuilder,
		Oracles:        oracles,
		Slots:          slots,
		Orders:         orders,
		Stats:          stats,
		Provider:       &fakeProvider{orders: orders},
		VammCurves:     map[string]*vamm.Curve{},
		PhoenixMirrors: map[string]*fallback.Mirror{},
		SerumMirrors:   map[string]*fallback.Mirror{},
		Subscribed:     &atomic.Bool{},
		Commit:         "test",
		AllowLoadTest:  true,
		RateLimiter:    ratelimit.New(1000),
		Log:            log,
		ZapLog:         zap.NewNop(),
	}
}

func TestHealthEndpoint(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	d.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartupNotReadyBeforeFirstUpdate(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/startup", nil)
	d.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDlobPrefixIsStripped(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dlob/health", nil)
	d.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestL2UnknownMarketReturns400(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/l2?marketName=NOPE", nil)
	d.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestL2EmptyBookReturnsEmptyLists(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/l2?marketName=SOL-PERP", nil)
	d.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body["bids"])
	assert.Empty(t, body["asks"])
}

func TestBatchL2RequiresAtLeastOneSelector(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/batchL2", nil)
	d.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchL2RejectsMismatchedListLengths(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/batchL2?marketName=SOL-PERP,SOL-PERP&depth=1", nil)
	d.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchL2PadsMissingParams(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/batchL2?marketName=SOL-PERP,SOL-PERP", nil)
	d.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		L2s []map[string]interface{} `json:"l2s"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.L2s, 2)
}

func TestL3UnknownMarketReturns400(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/l3", nil)
	d.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrdersJSONEmptyIndex(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/json", nil)
	d.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Orders []interface{} `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Orders)
}

func TestTopMakersRequiresSide(t *testing.T) {
	d := testDeps(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/topMakers?marketName=SOL-PERP", nil)
	d.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitBypassedWhenAllowLoadTest(t *testing.T) {
	d := testDeps(t)
	d.RateLimiter = ratelimit.New(1)
	d.AllowLoadTest = true

	router := d.Router()
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitEnforcedWhenNotBypassed(t *testing.T) {
	d := testDeps(t)
	d.RateLimiter = ratelimit.New(1)
	d.AllowLoadTest = false

	router := d.Router()
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
}
