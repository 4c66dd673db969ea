package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"flexreviews/internal/adapters/approvals"
	"flexreviews/internal/adapters/hostaway"
	"flexreviews/internal/adapters/observability"
	redisad "flexreviews/internal/adapters/redis"
	"flexreviews/internal/app"
	"flexreviews/internal/shared"
)

// The refresher rebuilds the normalized review snapshot out-of-band and
// warms the shared cache, so the first dashboard request after a deploy or
// TTL expiry doesn't pay the upstream round trip. With REFRESH_LISTING_IDS
// set it fetches per listing with bounded concurrency; otherwise one
// fetch-all call.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.HostawayBase).
		Int("workers", cfg.Workers).
		Int("listings", len(cfg.ListingIDs)).
		Msg("refresher starting")

	var client *hostaway.Client
	if cfg.HostawayAccountID != "" && cfg.HostawaySecret != "" {
		var err error
		client, err = hostaway.New(cfg.HostawayBase, cfg.HostawayAccountID, cfg.HostawaySecret, cfg.HostawayRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
		}
	}
	src := hostaway.NewSource(client)

	var raws []map[string]any
	if len(cfg.ListingIDs) == 0 {
		var err error
		raws, err = src.FetchReviews(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("fetch failed")
		}
	} else {
		sem := semaphore.NewWeighted(int64(cfg.Workers))
		var wg sync.WaitGroup
		var mu sync.Mutex

		for _, id := range cfg.ListingIDs {
			id := id

			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, int64(1)); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func(listingID int64) {
				defer wg.Done()
				defer sem.Release(int64(1))

				batch, err := src.FetchListingReviews(ctx, listingID)
				if err != nil {
					log.Warn().Int64("listing", listingID).Err(err).Msg("listing fetch failed")
					return
				}
				mu.Lock()
				raws = append(raws, batch...)
				mu.Unlock()
				log.Info().Int64("listing", listingID).Int("reviews", len(batch)).Msg("listing fetch ok")
			}(id)
		}
		wg.Wait()
	}

	store := approvals.NewFileStore(cfg.ApprovalsFile)
	approvalMap, err := store.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("approval map read failed; defaulting to hidden")
		approvalMap = map[int64]bool{}
	}

	reviews := app.NormalizeAll(app.KeepGuestReviews(raws), approvalMap)

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Set(ctx, app.SnapshotKey, reviews, cfg.CacheTTLSeconds); err != nil {
		log.Fatal().Err(err).Msg("cache warm failed")
	}
	log.Info().Int("raw", len(raws)).Int("normalized", len(reviews)).Msg("snapshot refreshed")
}
