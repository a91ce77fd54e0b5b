package main

import (
	"context"

	"github.com/litebittech/cex/services/dlob/internal/accountstream"
	"github.com/litebittech/cex/services/dlob/internal/fallback"
	"github.com/litebittech/cex/services/dlob/internal/levelgen"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
	"github.com/litebittech/cex/services/dlob/internal/userstats"
)

// The chain RPC/websocket client, its account decoder, the Phoenix/Serum
// wire clients, and the stats-account decoder are external collaborators
// spec.md's Non-goals place outside this module's scope: this service
// reconstructs a book from already-decoded updates, it does not speak the
// chain's wire protocol itself. The stand-ins below satisfy the
// collaborator contracts with an idle subscription, so the process boots
// and serves a (correctly empty) book against any endpoint configuration
// until a real decoder is wired in at this exact seam.

type idleUserMapSource struct{}

func (idleUserMapSource) Subscribe(ctx context.Context, _ func(accountstream.RawAccountUpdate)) error {
	<-ctx.Done()
	return ctx.Err()
}

type idleOrderSource struct{}

func (idleOrderSource) Subscribe(ctx context.Context, _ func(accountstream.RawOrderUpdate)) error {
	<-ctx.Done()
	return ctx.Err()
}

type idleVenueClient struct{}

func (idleVenueClient) Subscribe(ctx context.Context, _ func(bids, asks []levelgen.Level)) error {
	<-ctx.Done()
	return ctx.Err()
}

var _ accountstream.UserMapSource = idleUserMapSource{}
var _ accountstream.OrderSource = idleOrderSource{}
var _ fallback.Client = idleVenueClient{}

// zeroStatsLoader answers every lookup with an empty Stats record rather
// than an error, so TopMakers' includeUserStats path always has something
// to return instead of failing the whole request on a missing decoder.
func zeroStatsLoader(ctx context.Context, authority pubkey.PublicKey) (userstats.Stats, error) {
	return userstats.Stats{Authority: authority}, nil
}
