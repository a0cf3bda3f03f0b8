package main

import (
	"context"
	"encoding/base64"
	"log"
	"os"

	"deskhive.com/deskhive/core/renewal"
	"deskhive.com/deskhive/core/store"
	"deskhive.com/deskhive/core/termination"
	"deskhive.com/deskhive/infrastructure/brain"
	"deskhive.com/deskhive/infrastructure/calendar"
	"deskhive.com/deskhive/infrastructure/communication"
	"deskhive.com/deskhive/infrastructure/devops"
	"deskhive.com/deskhive/infrastructure/documents"
	"deskhive.com/deskhive/infrastructure/einvoice"
	"deskhive.com/deskhive/infrastructure/filesystem"
	v1 "deskhive.com/deskhive/postgrest/v1"
	"deskhive.com/deskhive/web/handlers"
	renewalweb "deskhive.com/deskhive/web/handlers/renewal"
	terminationweb "deskhive.com/deskhive/web/handlers/termination"
	"deskhive.com/deskhive/web/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := devops.LoadServiceConfig(ctx)
	if err != nil {
		log.Fatal(err)
	}

	client := v1.NewPostgrestClient(cfg.DataAPI.BaseURL, cfg.DataAPI.Token)
	dataStore := store.New(client)

	tracker := renewal.NewTracker(dataStore)
	renewalCases := renewal.NewCaseService(dataStore)
	terminations := termination.NewService(dataStore)

	line, err := communication.NewLine(cfg.Line.ChannelToken)
	if err != nil {
		log.Fatal(err)
	}
	brainClient := brain.NewClient(cfg.Brain.BaseURL, cfg.Brain.APIKey)
	dispatcher := communication.NewDispatcher(line, brainClient, communication.ConnectSlack(), cfg.Email.From)

	storage, err := filesystem.NewStorage(ctx, cfg.Storage.Endpoint, cfg.Storage.Bucket)
	if err != nil {
		log.Fatal(err)
	}

	docs := documents.NewClient(cfg.Documents.BaseURL, cfg.Documents.APIKey)
	invoices := einvoice.NewClient(cfg.EInvoice.BaseURL, cfg.EInvoice.APIKey, dataStore)

	var booker *calendar.Booker
	if cfg.Calendar.CredentialsFile != "" {
		booker, err = calendar.NewBooker(ctx, cfg.Calendar.CredentialsFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	base64Secret := os.Getenv("DESKHIVE_SIGNING_SECRET")
	jwtSecret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		log.Fatal("Failed to decode JWT secret:", err)
	}

	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	protected := r.Group("/api/v1")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		renewalweb.Register(protected, tracker, renewalCases, dataStore, docs, invoices)
		terminationweb.Register(protected, terminations, dataStore, dispatcher, booker)
		protected.POST("/termination-cases/:id/documents", handlers.UploadDocumentsHandler(storage))
	}

	r.Run(":8090")
}
