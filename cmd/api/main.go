package main

import (
	"context"
	"log"
	"net"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ortrace/ortrace-go/internal/api/middleware"
	"github.com/ortrace/ortrace-go/internal/api/routes"
	"github.com/ortrace/ortrace-go/internal/client"
	"github.com/ortrace/ortrace-go/internal/config"
	"github.com/ortrace/ortrace-go/internal/config/db"
	"github.com/ortrace/ortrace-go/internal/domain/chat"
	"github.com/ortrace/ortrace-go/internal/domain/job"
	"github.com/ortrace/ortrace-go/internal/domain/project"
	"github.com/ortrace/ortrace-go/internal/domain/report"
	"github.com/ortrace/ortrace-go/internal/domain/ticket"
	"github.com/ortrace/ortrace-go/internal/domain/user"
	"github.com/ortrace/ortrace-go/internal/repository"
	"github.com/ortrace/ortrace-go/internal/state"
	"github.com/ortrace/ortrace-go/internal/storage"
	"github.com/ortrace/ortrace-go/internal/worker"
)

func main() {
	config.LoadConfig()
	middleware.Init(config.JwtSecret, config.Issuer)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	ready := state.NewReady()
	routes.RegisterRoutes(r, ready)

	// Local storage has no presigning; serve the base directory so the
	// video_url paths the local backend produces resolve.
	if config.StorageType == "local" || config.StorageType == "" {
		r.Static("/storage", config.StoragePath)
	}

	// Bind before initialization so health checks pass immediately;
	// handlers answer 503 until the state is published.
	addr := ":" + config.ServerPort
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen on %s: %v", addr, err)
	}
	log.Printf("listening on %s", addr)

	go initAndStart(ready)

	if err := r.RunListener(listener); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// initAndStart runs in the background. On failure it logs and returns
// without setting the gate, so the process keeps answering 503 instead
// of dying under a health-checked deployment.
func initAndStart(ready *state.Ready) {
	gdb, err := db.Connect()
	if err != nil {
		log.Printf("init: %v", err)
		return
	}

	err = gdb.AutoMigrate(
		&user.User{},
		&project.Project{},
		&ticket.FeedbackTicket{},
		&job.Job{},
		&report.Report{},
		&report.Issue{},
		&chat.Message{},
	)
	if err != nil {
		log.Printf("init: migrate: %v", err)
		return
	}

	store, err := storage.New()
	if err != nil {
		log.Printf("init: storage: %v", err)
		return
	}

	gemini := client.NewGeminiClient(config.GeminiAPIKey)
	repos := repository.NewRepositories(gdb)

	ready.Set(&state.AppState{
		Repos:   repos,
		Storage: store,
	})
	log.Println("initialization complete, service ready")

	w := worker.New(
		repos.Job,
		repos.Ticket,
		repos.Project,
		repos.Report,
		store,
		gemini,
		time.Duration(config.WorkerPollSeconds)*time.Second,
	)
	go w.Start(context.Background())
}
