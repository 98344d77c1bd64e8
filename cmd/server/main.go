package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/suPer8Hu/debate-platform/internal/config"
	"github.com/suPer8Hu/debate-platform/internal/db"
	"github.com/suPer8Hu/debate-platform/internal/debate"
	"github.com/suPer8Hu/debate-platform/internal/httpapi"
	"github.com/suPer8Hu/debate-platform/internal/llm"
	"github.com/suPer8Hu/debate-platform/internal/nli"
	"github.com/suPer8Hu/debate-platform/internal/store/rabbitmq"
	"github.com/suPer8Hu/debate-platform/internal/store/redisstore"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	repo := debate.NewRepo(gdb)

	// The fallback chain is assembled exactly once; misconfiguration is
	// fatal here, never at call time.
	chain, err := llm.BuildChain(cfg.ProviderConfigs(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("provider chain build failed")
	}

	states := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := states.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, turn state tracking degraded")
	}
	defer states.Close()

	classifier := nli.NewHFClient(cfg.NLIBaseURL, cfg.NLIToken, cfg.NLIModel, cfg.NLITimeout)
	concession := debate.NewConcessionService(classifier, states, cfg.MinAssistantTurns, log.Logger)

	svc := debate.NewService(repo, chain, concession, states, cfg.HistoryPairs, cfg.IdleWindow, log.Logger)

	var pub *rabbitmq.Publisher
	pub, err = rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unreachable, async turns disabled")
		pub = nil
	} else {
		defer pub.Close()
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	r := httpapi.NewRouter(gdb, cfg, svc, pub)
	log.Info().Str("addr", addr).Msg("server starting")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
