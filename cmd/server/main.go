package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib"

	"organmatch/internal/authority"
	authorityhandler "organmatch/internal/authority/handler"
	authoritymetrics "organmatch/internal/authority/metrics"
	authoritystore "organmatch/internal/authority/store"
	"organmatch/internal/donor"
	donorhandler "organmatch/internal/donor/handler"
	donorstore "organmatch/internal/donor/store"
	jwttoken "organmatch/internal/jwt_token"
	"organmatch/internal/match"
	matchhandler "organmatch/internal/match/handler"
	matchmetrics "organmatch/internal/match/metrics"
	matchstore "organmatch/internal/match/store"
	"organmatch/internal/platform/config"
	"organmatch/internal/platform/events"
	"organmatch/internal/platform/httpserver"
	"organmatch/internal/platform/logger"
	platformredis "organmatch/internal/platform/redis"
	"organmatch/internal/program"
	programhandler "organmatch/internal/program/handler"
	httptransport "organmatch/internal/transport/http"
	"organmatch/internal/waitlist"
	waitlisthandler "organmatch/internal/waitlist/handler"
	waitlistmetrics "organmatch/internal/waitlist/metrics"
	waitliststore "organmatch/internal/waitlist/store"
)

// main wires dependencies and keeps the server lifecycle small. Every backend
// is optional: without Postgres, Redis, or Kafka configured the process runs
// fully in memory, which is how the integration tests and local development
// exercise it.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		programStore   program.Store
		authorityStore authority.Store
		recipientStore waitlist.Store
		donorStore     donor.Store
		proposalStore  match.ProposalStore
		storeTx        *postgresStoreTx
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			return
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to reach postgres", "error", err)
			return
		}
		programStore = program.NewPostgresStore(db)
		authorityStore = authoritystore.NewPostgres(db)
		recipientStore = waitliststore.NewPostgres(db)
		donorStore = donorstore.NewPostgres(db)
		proposalStore = matchstore.NewPostgres(db)
		storeTx = newPostgresStoreTx(db)
	} else {
		programStore = program.NewInMemoryStore()
		authorityStore = authoritystore.NewInMemory()
		recipientStore = waitliststore.NewInMemory()
		donorStore = donorstore.NewInMemory()
		proposalStore = matchstore.NewInMemory()
	}

	// Candidate index: Redis when configured so instances share the pool.
	var candidateIndex waitlist.CandidateIndex = waitliststore.NewInMemoryCandidates()
	redisClient, err := platformredis.New(cfg.RedisAddr)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		return
	}
	if redisClient != nil {
		defer redisClient.Close()
		candidateIndex = waitliststore.NewRedisCandidates(redisClient.Client)
	}

	// Event pipeline: Kafka behind a buffered worker when brokers are set.
	var (
		notifier events.Notifier
		worker   *events.Worker
	)
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			return
		}
		defer func() {
			if err := publisher.Close(context.Background()); err != nil {
				log.Warn("failed to flush kafka publisher", "error", err)
			}
		}()
		channel := events.NewChannelNotifier(1024)
		worker = events.NewWorker(publisher, channel.Inbox(), log)
		notifier = channel
	}

	// Services.
	programs := program.New(programStore, program.WithLogger(log))
	registry := authority.NewRegistry(authorityStore, programs,
		authority.WithLogger(log),
		authority.WithMetrics(authoritymetrics.New()),
	)

	waitlistOpts := []waitlist.Option{
		waitlist.WithLogger(log),
		waitlist.WithMetrics(waitlistmetrics.New()),
	}
	matchOpts := []match.Option{
		match.WithLogger(log),
		match.WithMetrics(matchmetrics.New()),
	}
	if notifier != nil {
		waitlistOpts = append(waitlistOpts, waitlist.WithNotifier(notifier))
		matchOpts = append(matchOpts, match.WithNotifier(notifier))
	}
	if storeTx != nil {
		waitlistOpts = append(waitlistOpts, waitlist.WithStoreTx(storeTx))
		matchOpts = append(matchOpts, match.WithStoreTx(storeTx))
	}

	waitlists := waitlist.New(recipientStore, candidateIndex, registry, programs, waitlistOpts...)
	donations := donor.New(donorStore, registry, programs, donor.WithLogger(log))
	matches := match.New(proposalStore, recipientStore, donorStore, registry, candidateIndex, programs, matchOpts...)

	// Transport.
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "organmatch", "organmatch-api")
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	router := httptransport.NewRouter(
		programhandler.New(programs, log, jwtValidator, cfg.AdminTokenHash),
		authorityhandler.New(registry, log, jwtValidator),
		waitlisthandler.New(waitlists, log, jwtValidator),
		donorhandler.New(donations, log, jwtValidator),
		matchhandler.New(matches, log, jwtValidator),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := httpserver.New(cfg.Addr, mux)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting organmatch server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if worker != nil {
		g.Go(func() error {
			if err := worker.Run(gCtx); errors.Is(err, context.Canceled) {
				return nil
			} else if err != nil {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
	}
}
