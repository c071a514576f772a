package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpadp "nftlend-backend/internal/adapter/http"
	mw "nftlend-backend/internal/adapter/middleware"
	"nftlend-backend/internal/adapter/repository/mysql"
	"nftlend-backend/internal/config"
	"nftlend-backend/internal/infrastructure/cache"
	"nftlend-backend/internal/infrastructure/db"
	"nftlend-backend/internal/observability"
	escrowuc "nftlend-backend/internal/usecase/escrow"
	loanuc "nftlend-backend/internal/usecase/loan"
	marketuc "nftlend-backend/internal/usecase/marketplace"
)

func main() {
	_ = godotenv.Load()

	log := observability.NewLogger("api")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect")
	}
	log.Info().Msg("mysql connected")

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect")
	}
	log.Info().Msg("redis connected")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(reg)

	loanRepo := mysql.NewLoanRepository(gdb)
	eventRepo := mysql.NewLoanEventRepository(gdb)
	escrowRepo := mysql.NewEscrowRepository(gdb)
	uow := mysql.NewGormUoW(gdb)

	allocator := escrowuc.NewAllocator(escrowRepo)
	ledger := loanuc.NewUsecase(uow, allocator).WithMetrics(metrics)
	market := marketuc.NewUsecase(loanRepo, eventRepo)

	h := httpadp.NewHandler()
	loanH := httpadp.NewLoanHandler(ledger)
	marketH := httpadp.NewMarketplaceHandler(market)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	idemp := mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	e.GET("/loans", marketH.ListLoans)
	e.GET("/loans/:loan_id", marketH.GetLoan)
	e.GET("/marketplace/stats", marketH.GetStatistics)
	e.GET("/events", marketH.ListEvents)

	e.POST("/loans", loanH.CreateLoan, idemp)
	e.POST("/loans/:loan_id/fund", loanH.FundLoan, idemp)
	e.POST("/loans/:loan_id/repay", loanH.RepayLoan, idemp)
	e.POST("/loans/:loan_id/liquidate", loanH.LiquidateLoan, idemp)
	e.POST("/loans/:loan_id/cancel", loanH.CancelLoan, idemp)

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
