package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anglerclubs/roster-api/internal/infra/database"
	"github.com/anglerclubs/roster-api/internal/infra/http/handlers"
	"github.com/anglerclubs/roster-api/internal/infra/http/middleware"
	"github.com/anglerclubs/roster-api/internal/infra/integration/identity"
	"github.com/anglerclubs/roster-api/internal/infra/mail"
	"github.com/anglerclubs/roster-api/internal/infra/queue"
	"github.com/anglerclubs/roster-api/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	jobRepo := database.NewImportJobRepository(db)
	stagingRepo := database.NewStagingRepository(db)
	profileRepo := database.NewProfileRepository(db)
	roleRepo := database.NewRoleRepository(db)

	// 2. Integrations and adapters
	identityClient := identity.NewClient(os.Getenv("AUTH_SERVICE_KEY"), os.Getenv("AUTH_ADMIN_URL"))
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	mailPort := 587
	if p, err := strconv.Atoi(os.Getenv("MAIL_PORT")); err == nil {
		mailPort = p
	}
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), mailPort,
		os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		os.Getenv("MAIL_FROM"),
	)

	recoveryRedirectURL := os.Getenv("RECOVERY_REDIRECT_URL")

	// 3. Reconcile worker (retries failed best-effort commit sub-steps)
	worker := queue.NewWorker(rabbitMQ.Ch, profileRepo, roleRepo, identityClient, mailSender, recoveryRedirectURL)
	go worker.Start(queue.QueueName)

	// 4. Use cases
	validateUC := usecase.NewStartValidationUseCase(jobRepo, stagingRepo, identityClient)
	commitUC := usecase.NewCommitImportUseCase(
		jobRepo, stagingRepo, identityClient, profileRepo, roleRepo,
		producer, mailSender, recoveryRedirectURL,
	)

	// 5. Handlers
	importHandler := handlers.NewImportHandler(validateUC, commitUC, jobRepo)
	healthHandler := handlers.NewHealthHandler(db)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Post("/imports", importHandler.HandleCreate)
	r.Get("/imports/{jobID}", importHandler.HandleGet)
	r.Post("/imports/{jobID}/validate", importHandler.HandleValidate)
	r.Post("/imports/{jobID}/commit", importHandler.HandleCommit)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("roster-api listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
