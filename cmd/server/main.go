package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go-live-auction/config"
	"go-live-auction/internal/bus"
	"go-live-auction/internal/cache"
	"go-live-auction/internal/database"
	"go-live-auction/internal/handler"
	"go-live-auction/internal/repository"
	"go-live-auction/internal/service"
	"go-live-auction/internal/session"
	"go-live-auction/internal/ticket"
	"go-live-auction/internal/worker"
	"go-live-auction/internal/ws"
	"go-live-auction/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// Repositories
	auctionRepo := repository.NewAuctionRepository(pool)
	bidRepo := repository.NewBidRepository(pool)

	// Redis-backed services
	snapshotCache := cache.NewAuctionSnapshotCache(rdb, 30*time.Second)
	ticketStore := ticket.NewRedisStore(rdb)
	sessionStore := session.NewRedisStore(rdb)

	// 單機部署用 Redis bus 也沒問題，多台 Gateway 時直接水平擴展
	eventBus := bus.NewRedisBus(rdb)

	// Services
	auctionService := service.NewAuctionService(pool, auctionRepo, bidRepo, snapshotCache, eventBus)
	ticketService := service.NewWSTicketService(ticketStore, cfg.Ticket.TTL)

	// Websocket hub + gateway
	hub := ws.NewHub(cfg.WS.RoomGrace)
	gateway := ws.NewGateway(hub, ticketService, cfg.WS)

	// Router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	auth := handler.SessionAuth(sessionStore)
	handler.NewAuctionHandler(auctionService, auth).RegisterRoutes(router)
	handler.NewWSTicketHandler(ticketService, auth).RegisterRoutes(router)
	gateway.RegisterRoutes(router)

	sweeper := worker.NewAuctionSweeper(auctionService, cfg.Sweeper.Interval)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(ctx)
	})

	g.Go(func() error {
		// bus -> hub：事件從這裡流進所有房間
		return eventBus.Run(ctx, hub.Deliver)
	})

	g.Go(func() error {
		return sweeper.Start(ctx)
	})

	g.Go(func() error {
		logger.WithComponent("server").Info("listening on " + cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server exited: %v", err)
	}
}
