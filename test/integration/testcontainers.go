package integration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/unkani/unkani/pkg/account"
	"github.com/unkani/unkani/pkg/config"
	"github.com/unkani/unkani/pkg/db"
	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/ratelimit"
	"github.com/unkani/unkani/pkg/security"
	"github.com/unkani/unkani/pkg/server"
	"github.com/unkani/unkani/pkg/server/endpoints"
)

const secretKey = "integration-secret-key"

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	Stores      server.Stores
	Accounts    *account.Service
	Signer      *security.Signer
	Container   testcontainers.Container
	Redis       *miniredis.Miniredis
	ServerURL   string
	DatabaseURL string
	HTTPClient  *http.Client

	serverProcess *exec.Cmd
	inlineServer  *server.Server
	cancel        context.CancelFunc
}

// discardMailer drops account emails; scenarios sign their own tokens
type discardMailer struct{}

func (discardMailer) SendConfirmation(context.Context, *model.User, string) error  { return nil }
func (discardMailer) SendPasswordReset(context.Context, *model.User, string) error { return nil }
func (discardMailer) SendEmailChange(context.Context, *model.User, string, string) error {
	return nil
}

// NewTestContext starts PostgreSQL in a container, an in-memory redis and
// the server.
// Modes:
//   - Inline mode (default): the server runs in-process
//   - Binary mode: set UNKANI_BINARY to the path of the unkanictl binary
func NewTestContext(ctx context.Context) (*TestContext, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	migrationsDir := filepath.Join(projectRoot, "db", "migrations")

	binaryPath := os.Getenv("UNKANI_BINARY")
	if binaryPath != "" {
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("UNKANI_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("unkani_test"),
		tcpostgres.WithUsername("unkani"),
		tcpostgres.WithPassword("unkani"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	tc := &TestContext{
		Container:  pgContainer,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}
	tc.DatabaseURL = connStr

	if err := runMigrations(connStr, migrationsDir); err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	tc.DB, err = db.Connect(db.Config{URL: connStr})
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}

	tc.Redis, err = miniredis.Run()
	if err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to start redis: %w", err)
	}

	cfg := config.Default()
	cfg.SecretKey = secretKey
	cfg.DatabaseURL = connStr
	cfg.RedisURL = "redis://" + tc.Redis.Addr() + "/0"
	cfg.ValueSetCacheSize = 0

	security.BcryptCost = 4
	tc.Signer, err = security.NewSigner(secretKey)
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}
	tc.Stores = server.GormStores(tc.DB, cfg)
	tc.Accounts = account.NewService(tc.Stores.Users, tc.Stores.Roles, tc.Stores.AppGroups, tc.Signer, discardMailer{}, account.Options{
		Logger: zerolog.Nop(),
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	tc.ServerURL = fmt.Sprintf("http://127.0.0.1:%d", port)
	cfg.BaseURL = tc.ServerURL

	if binaryPath != "" {
		_ = listener.Close()
		err = tc.startBinary(binaryPath, cfg, port)
	} else {
		err = tc.startInline(cfg, listener)
	}
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}

	if err := waitForServer(tc.ServerURL, 30*time.Second); err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return tc, nil
}

// startInline runs the server in-process on listener
func (tc *TestContext) startInline(cfg *config.Config, listener net.Listener) error {
	rdb := redis.NewClient(&redis.Options{Addr: tc.Redis.Addr()})

	// One window for the whole run; Reset flushes the counters between scenarios
	started := time.Now()
	limiter := ratelimit.NewRedisLimiter(rdb, ratelimit.DefaultPrefix).WithClock(func() time.Time { return started })

	s := server.NewServer(cfg, tc.Stores, tc.Accounts, limiter, zerolog.Nop())
	s.Redis = rdb
	endpoints.RegisterAll(s)

	go func() {
		_ = s.StartWithListener(listener)
	}()

	tc.inlineServer = s
	tc.cancel = func() { _ = rdb.Close() }
	return nil
}

// startBinary runs `unkanictl server`
func (tc *TestContext) startBinary(binaryPath string, cfg *config.Config, port int) error {
	ctx, cancel := context.WithCancel(context.Background())

	// Migrations already ran in the test setup
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", strconv.Itoa(port))
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+cfg.DatabaseURL,
		"REDIS_URL="+cfg.RedisURL,
		"UNKANI_SECRET_KEY="+secretKey,
		"UNKANI_BASE_URL="+cfg.BaseURL,
		"UNKANI_BCRYPT_COST=4",
		"UNKANI_VALUE_SET_CACHE_SIZE=0",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start binary: %w", err)
	}

	tc.serverProcess = cmd
	tc.cancel = cancel
	return nil
}

// Reset empties every table and the redis keyspace between scenarios
func (tc *TestContext) Reset() error {
	tc.Redis.FlushAll()
	return tc.DB.Exec(`TRUNCATE users, user_app_groups, email_addresses, phone_numbers, addresses,
		value_sets, value_set_concepts, roles, app_groups RESTART IDENTITY CASCADE`).Error
}

// waitForServer polls the server until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.inlineServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = tc.inlineServer.Shutdown(shutdownCtx)
		cancel()
	}
	if tc.cancel != nil {
		tc.cancel()
	}
	if tc.serverProcess != nil && tc.serverProcess.Process != nil {
		_ = tc.serverProcess.Process.Kill()
		_ = tc.serverProcess.Wait()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Redis != nil {
		tc.Redis.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}

// runMigrations applies db/migrations with golang-migrate
func runMigrations(dbURL, migrationsDir string) error {
	m, err := migrate.New("file://"+migrationsDir, db.WithMigrationsTable(dbURL))
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
