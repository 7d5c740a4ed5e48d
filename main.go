package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"donation-settle-api/internal/callback"
	"donation-settle-api/internal/channel/health"
	"donation-settle-api/internal/config"
	"donation-settle-api/internal/dal"
	"donation-settle-api/internal/dao"
	"donation-settle-api/internal/fee"
	"donation-settle-api/internal/handler"
	"donation-settle-api/internal/idgen"
	"donation-settle-api/internal/logger"
	"donation-settle-api/internal/middleware"
	"donation-settle-api/internal/mq"
	"donation-settle-api/internal/notify"
	"donation-settle-api/internal/repo"
	"donation-settle-api/internal/service"
	"donation-settle-api/internal/system"
)

func main() {
	// load config env
	config.Init()
	c := config.C

	appLog := logger.NewLogger("app")
	accessLog := logger.NewLogger("access")
	errorLog := logger.NewLogger("error")

	// init infra
	dal.InitMainDB()
	dal.InitRedis()
	if err := dal.InitRabbitMQ(); err != nil {
		appLog.WithError(err).Warn("rabbitmq unavailable, events are dropped until it reconnects")
	}
	pub := mq.NewPublisher()

	// idgen
	idgen.Init(c.NodeID)
	go idgen.CheckSystemClock()

	schedule, err := fee.ScheduleFromPercent(c.Fee.ProcessorRatePct, c.Fee.ProcessorFixed, c.Fee.PlatformRatePct)
	if err != nil {
		log.Fatalf("fee schedule: %v", err)
	}

	var alert notify.Alerter = notify.Nop{}
	sysCfg := system.NewConfigSystem(dal.MainDB, dal.RedisClient, c.Redis.Prefix)
	chatID := system.TelegramChatID(context.Background(), sysCfg, c.Telegram.ChatID, appLog)
	if tg := notify.NewTelegram(c.Telegram.BotToken, chatID, appLog); tg.Enabled() {
		alert = tg
	}

	mainDao := dao.NewMainDao()
	orderDao := dao.NewOrderDao()
	authz := service.NewAuthorizer(mainDao)

	processor := service.NewProcessorClient(service.ProcessorOptions{
		URL:           c.Processor.ApiUrl,
		APIKey:        c.Processor.ApiKey,
		Timeout:       time.Duration(c.Processor.TimeoutSec) * time.Second,
		RetryTimes:    c.Processor.RetryTimes,
		RetryInterval: time.Duration(c.Processor.RetryInterval) * time.Millisecond,
	}, alert, appLog)
	if c.Processor.HealthThreshold > 0 {
		strategy, err := health.StrategyByName(c.Processor.HealthStrategy)
		if err != nil {
			log.Fatalf("processor health: %v", err)
		}
		processor.WithHealth(health.NewManager(dal.RedisClient, c.Redis.Prefix, strategy,
			c.Processor.HealthThreshold, time.Duration(c.Processor.HealthTTLSec)*time.Second))
	}

	deps := service.DonationDeps{
		Orgs:      mainDao,
		Donations: orderDao,
		Guard:     repo.NewGuardRepo(dal.RedisClient, c.Redis.Prefix),
		Processor: processor,
		Publisher: pub,
		Alert:     alert,
		IDs:       idgen.Default,
	}
	// left as nil interfaces when the feature is off
	if c.Features.SplitsEnabled {
		deps.Proposals = mainDao
	}
	if c.Features.DistributionsEnabled {
		deps.Distributions = mainDao
	}
	donations := service.NewDonationService(deps, schedule, c.Processor.Currency,
		time.Duration(c.Donation.GuardTTLSec)*time.Second, appLog)
	splits := service.NewSplitService(mainDao, authz, idgen.Default, service.SplitOptions{
		Enabled:           c.Features.SplitsEnabled,
		StrictPercentages: c.Features.StrictSplitPercentages,
	}, appLog)
	distributions := service.NewDistributionService(mainDao, authz, idgen.Default, c.Features.DistributionsEnabled, appLog)

	reconciler := callback.NewReconciler(orderDao,
		repo.NewSeenRepo(dal.RedisClient, c.Redis.Prefix, time.Duration(c.Webhook.SeenTTLHours)*time.Hour),
		pub, alert, callback.ReconcilerOptions{TerminalGuard: c.Webhook.TerminalGuard}, appLog)
	bank := callback.NewBankRail(c.Webhook.BankSecret)
	card := callback.NewCardRail(c.Webhook.CardSecret, time.Duration(c.Webhook.CardToleranceSec)*time.Second)

	// http server
	if c.Server.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "192.168.0.0/16"})
	r.Use(middleware.Trace(), middleware.Recover(errorLog), middleware.RequestLogger(accessLog, errorLog))

	handler.Register(r, handler.Handlers{
		Donations:     handler.NewDonationHandler(donations, appLog),
		Splits:        handler.NewSplitHandler(splits, appLog),
		Distributions: handler.NewDistributionHandler(distributions, appLog),
		Webhooks:      handler.NewWebhookHandler(reconciler, bank, card, appLog),
	})

	srv := &http.Server{
		Addr:              ":" + c.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLog.Infof("listening %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.WithError(err).Error("http server shutdown failed")
	}
}
