// Package main is our entry point.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/sehatlink/sehat/internal/broker"
	"github.com/sehatlink/sehat/internal/chat"
	"github.com/sehatlink/sehat/internal/config"
	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/feed"
	"github.com/sehatlink/sehat/internal/handler"
	"github.com/sehatlink/sehat/internal/reminder"
	"github.com/sehatlink/sehat/internal/sms"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %+v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Init DB
	log.Println("Initializing database connection...")

	dbConn, err := pgxpool.New(ctx, cfg.DB.URL)
	if err != nil {
		log.Fatalf("could not connect to the postgresql database: %v", err)
	}

	if err := database.Migrate(dbConn, "sql/schema"); err != nil {
		log.Fatalf("%v", err)
	}

	dbQueries := database.New(dbConn)

	// Init NATS. Without a broker the relay still runs, limited to one
	// instance.
	var (
		conn   *nats.Conn
		js     jetstream.JetStream
		stream jetstream.Stream
	)
	if cfg.NATS.URL != "" {
		log.Println("Initializing NATS connection...")

		opts := []nats.Option{nats.Timeout(5 * time.Second)}
		if cfg.NATS.CredFile != "" {
			opts = append(opts, nats.UserCredentials(cfg.NATS.CredFile))
		} else if cfg.NATS.User != "" && cfg.NATS.Password != "" {
			opts = append(opts, nats.UserInfo(cfg.NATS.User, cfg.NATS.Password))
		}

		conn, err = nats.Connect(cfg.NATS.URL, opts...)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}

		js, err = jetstream.New(conn)
		if err != nil {
			log.Fatalf("failed to create jetstream instance: %v", err)
		}

		stream, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     broker.StreamName,
			Subjects: []string{broker.SubjectAllRooms},
			MaxBytes: 1 << 30, // 1GB max storage
		})
		if err != nil {
			log.Fatalf("failed to create/update stream: %v", err)
		}
	} else {
		log.Println("NATS_URL not set; running the relay without a broker")
	}

	// hub.Run is the central relay loop, always listening for room events.
	hub := chat.NewHub(js, dbQueries)
	go hub.Run(ctx, stream)

	var sender sms.Sender = sms.LogSender{}
	if cfg.Twilio.Enabled() {
		sender = sms.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
	}

	var feedSvc *feed.Service
	if cfg.Groq.Enabled() {
		llm := feed.NewGroqClient(cfg.Groq.BaseURL, cfg.Groq.APIKey, cfg.Groq.Model)
		feedSvc = feed.NewService(dbQueries, llm)
	} else {
		log.Println("GROQ_API_KEY not set; feed generation disabled")
	}

	reminderSvc := reminder.NewService(dbQueries, sender)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.NewRouter(dbQueries, hub, feedSvc, reminderSvc, sender, cfg.JWT),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		log.Printf("Server starting at %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutdown signal received; shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println(err)
	}

	if conn != nil {
		if err := conn.Drain(); err != nil {
			log.Printf("couldn't drain NATS conn: %+v", err)
		}
	}

	dbConn.Close()

	log.Println("Server stopped")
}
