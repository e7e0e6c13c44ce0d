package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/bookhaven/bookstore/internal/auth"
	"github.com/bookhaven/bookstore/internal/config"
	"github.com/bookhaven/bookstore/internal/credit"
	"github.com/bookhaven/bookstore/internal/database"
	"github.com/bookhaven/bookstore/internal/handler"
	"github.com/bookhaven/bookstore/internal/queue"
	"github.com/bookhaven/bookstore/internal/repository"
	"github.com/bookhaven/bookstore/internal/router"
	"github.com/bookhaven/bookstore/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	codec, err := utils.NewTokenCodec(cfg.TokenKey, cfg.TokenIssuer, cfg.TokenValidity)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	custPwd, err := utils.NewPasswordCipher(cfg.PwdKey)
	if err != nil {
		log.Fatalf("password cipher: %v", err)
	}
	adminPwd, err := utils.NewPasswordCipher(cfg.AdminPwdKey)
	if err != nil {
		log.Fatalf("admin password cipher: %v", err)
	}

	customers := repository.NewCustomerRepo(db)
	admins := repository.NewAdminRepo(db)
	sessions := repository.NewSessionRepo(db)
	credits := repository.NewCreditRepo(db)
	books := repository.NewBookRepo(db)
	orders := repository.NewOrderRepo(db)
	suppliers := repository.NewSupplierRepo(db)
	shortages := repository.NewShortageRepo(db)

	verifier := auth.NewVerifier(codec, customers, admins, sessions, cfg.IdleTimeout)
	engine := credit.NewEngine(credits)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// Background consumer appending order/shortage events to logs/orders.log.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(customers, sessions, credits, codec, custPwd, verifier),
		Admin:    handler.NewAdminHandler(admins, codec, adminPwd, verifier),
		Order:    handler.NewOrderHandler(orders, customers, books, engine, verifier),
		Shipment: handler.NewShipmentHandler(orders, books, suppliers, shortages, verifier),
		Shortage: handler.NewShortageHandler(shortages, verifier),
		Books:    handler.NewBookHandler(books),
	}, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
