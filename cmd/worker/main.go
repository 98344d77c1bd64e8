package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/suPer8Hu/debate-platform/internal/config"
	"github.com/suPer8Hu/debate-platform/internal/db"
	"github.com/suPer8Hu/debate-platform/internal/debate"
	"github.com/suPer8Hu/debate-platform/internal/llm"
	"github.com/suPer8Hu/debate-platform/internal/nli"
	"github.com/suPer8Hu/debate-platform/internal/store/rabbitmq"
	"github.com/suPer8Hu/debate-platform/internal/store/redisstore"
)

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	repo := debate.NewRepo(gdb)

	chain, err := llm.BuildChain(cfg.ProviderConfigs(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("provider chain build failed")
	}

	states := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer states.Close()

	classifier := nli.NewHFClient(cfg.NLIBaseURL, cfg.NLIToken, cfg.NLIModel, cfg.NLITimeout)
	concession := debate.NewConcessionService(classifier, states, cfg.MinAssistantTurns, log.Logger)

	svc := debate.NewService(repo, chain, concession, states, cfg.HistoryPairs, cfg.IdleWindow, log.Logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit dial failed")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit channel failed")
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatal().Err(err).Msg("topology declare failed")
	}

	concurrency := workerConcurrency()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatal().Err(err).Msg("qos failed")
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("consume failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", cfg.RabbitQueue).Int("concurrency", concurrency).Msg("worker started")

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m rabbitmq.JobMessage
				if err := json.Unmarshal(d.Body, &m); err != nil || m.JobID == "" {
					log.Error().Int("worker", workerID).Err(err).Msg("bad job message")
					// Malformed payloads go straight to the DLQ.
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := svc.ProcessJob(ctx, m.JobID); err != nil {
					log.Error().Int("worker", workerID).Str("job_id", m.JobID).
						Dur("cost", time.Since(start)).Err(err).Msg("job failed")
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Error().Int("worker", workerID).Str("job_id", m.JobID).Err(err).Msg("ack failed")
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Warn().Msg("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}
