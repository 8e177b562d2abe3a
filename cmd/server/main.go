package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"uniform_shop/internal/cart"
	"uniform_shop/internal/config"
	"uniform_shop/internal/inventory"
	"uniform_shop/internal/model"
	"uniform_shop/internal/order"
	"uniform_shop/internal/queue"
	"uniform_shop/internal/router"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&model.School{}, &model.StockItem{}, &model.Order{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer rdb.Close()

	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	outbox := queue.NewStreamOutbox(rdb, cfg.OrderEventStream)
	engine := order.NewEngine(db, inventory.NewStore(db), outbox)
	carts := cart.NewStore(cfg.CartTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay := queue.NewRelay(rdb, producer, cfg.OrderEventStream, cfg.OrderEventGroup, cfg.OrderEventConsumer)
	go relay.Run(ctx)

	consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, db)
	defer consumer.Close()
	go consumer.Run(ctx)

	go carts.Janitor(ctx, time.Minute)

	r := gin.Default()
	router.Setup(r, db, rdb, carts, engine, cfg)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
