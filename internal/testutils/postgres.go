package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ortrace/ortrace-go/internal/domain/chat"
	"github.com/ortrace/ortrace-go/internal/domain/job"
	"github.com/ortrace/ortrace-go/internal/domain/project"
	"github.com/ortrace/ortrace-go/internal/domain/report"
	"github.com/ortrace/ortrace-go/internal/domain/ticket"
	"github.com/ortrace/ortrace-go/internal/domain/user"
)

// SetupPostgres returns a migrated database for integration tests. It
// prefers TEST_DB_DSN and otherwise starts a throwaway container,
// skipping the test when neither is available.
func SetupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = startContainer(t)
	}

	waitForDB(t, dsn)

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
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
		t.Fatalf("migrate: %v", err)
	}

	// Shared databases (TEST_DB_DSN) start each test from a clean slate.
	err = gdb.Exec("TRUNCATE users, projects, tickets, analysis_jobs, reports, issues, chat_messages CASCADE").Error
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return gdb
}

func startContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return fmt.Sprintf("host=%s port=%s user=test password=test dbname=test sslmode=disable", host, port.Port())
}

func waitForDB(t *testing.T, dsn string) {
	t.Helper()

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open sql connection: %v", err)
	}
	defer sqlDB.Close()

	deadline := time.Now().Add(30 * time.Second)
	for {
		if err = sqlDB.Ping(); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("database not reachable: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}
