package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "pos-backend/internal/adapters/web"
	"pos-backend/internal/app"
	"pos-backend/internal/core"
	"pos-backend/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	stockService := core.NewStockService(pool, nil)
	paymentService := core.NewPaymentService(pool)
	transactionService := core.NewTransactionService(pool, stockService, paymentService)
	reportingService := core.NewReportingService(pool, paymentService)

	svc := app.NewAppService(stockService, paymentService, transactionService, reportingService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
