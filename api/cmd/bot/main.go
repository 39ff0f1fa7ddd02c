package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sky-answers-bot/api/internal/answers"
	"sky-answers-bot/api/internal/config"
	"sky-answers-bot/api/internal/handle"
	"sky-answers-bot/api/internal/httpserver"
	"sky-answers-bot/api/internal/logger"
	"sky-answers-bot/api/internal/skysmart"
	"sky-answers-bot/api/internal/store"
	"sky-answers-bot/api/internal/telegram"
)

const lookupTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogPretty)
	token := config.MustTelegramToken()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Answer cache (Postgres is optional) ---
	var (
		durable store.AnswerStore
		pinger  httpserver.Pinger
		repo    *store.AnswerRepo
	)
	if cfg.DatabaseURL != "" {
		db, err := openDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("db")
		}
		defer db.Close()
		repo = store.NewAnswerRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("db: ensure schema")
		}
		durable, pinger = repo, db
	}
	cache := store.NewCache(store.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL), durable, cfg.CacheTTL)

	// --- Skysmart ---
	client := skysmart.NewClient(&http.Client{Timeout: cfg.Timeout}, skysmart.Endpoints{
		Auth:  cfg.AuthURL,
		Room:  cfg.RoomURL,
		Steps: cfg.StepsURL,
	})
	svc := answers.NewService(
		func() answers.Source { return client.NewSession() },
		answers.WithMaxTasks(cfg.MaxTasks),
		answers.WithCache(cache),
	)

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram: init")
	}
	bot.Debug = false
	r := &telegram.Router{Bot: bot, Answers: svc, Timeout: lookupTimeout}

	mux := httpserver.NewMux(pinger)
	handle.New(svc, lookupTimeout).Register(mux)
	addr := "0.0.0.0:" + cfg.Port
	g, gctx := errgroup.WithContext(ctx)

	// --- Choose mode: Webhook vs Polling ---
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		if err := registerWebhook(gctx, bot, r, mux, webhookURL); err != nil {
			log.Fatal().Err(err).Msg("telegram: webhook")
		}
	} else {
		g.Go(func() error {
			runPolling(gctx, bot, func(upd tgbotapi.Update) { r.HandleUpdate(gctx, upd) })
			return nil
		})
	}
	g.Go(func() error { return httpserver.Run(gctx, addr, mux) })
	if repo != nil {
		g.Go(func() error { purgeLoop(gctx, repo, cfg.CacheTTL); return nil })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("shutdown")
	}
	r.Wait()
	log.Info().Msg("bye")
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("dsn", config.SafeDSNSummary(dsn)).Msg("db connected")
	return db, nil
}

// ---------------- Modes -----------------

func registerWebhook(ctx context.Context, bot *tgbotapi.BotAPI, r *telegram.Router, mux *http.ServeMux, baseURL string) error {
	// secret webhook path
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return err
	}

	mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Warn().Err(err).Msg("webhook: bad update")
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
		r.HandleUpdate(ctx, *upd)
	})
	log.Info().Str("path", path).Msg("webhook registered")
	return nil
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 from Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, onUpdate func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		if ctx.Err() != nil {
			log.Info().Msg("polling: context cancelled")
			return
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), baseDelay), maxDelay)
			log.Warn().Err(err).Dur("retry_in", d).Msg("polling error")
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			onUpdate(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func purgeLoop(ctx context.Context, repo *store.AnswerRepo, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.PurgeOlderThan(ctx, ttl)
			if err != nil {
				log.Warn().Err(err).Msg("db: purge")
				continue
			}
			log.Debug().Int64("rows", n).Msg("db: purged expired answers")
		}
	}
}

// ---------------- Helpers -----------------

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func shortHash(s string) string {
	// FNV-1a, stable per token; not a secret on its own
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
