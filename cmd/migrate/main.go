package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/config"
)

// migrator is the part of *migrate.Migrate the commands use
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
}

// SQL migrations target PostgreSQL. SQLite and MySQL deployments use
// DB_AUTO_MIGRATE instead.
//
//	migrate -cmd up
//	migrate -cmd steps -- -1
//	migrate -cmd force 1
func main() {
	var module, command, dir string

	flag.StringVar(&module, "module", "finance", "Module to migrate")
	flag.StringVar(&command, "cmd", "up", "Migration command (up, down, steps, version, force)")
	flag.StringVar(&dir, "dir", "migrations", "Directory holding one folder per module")
	flag.Parse()

	cfg := config.LoadConfig()
	if !isPostgres(cfg.DatabaseURL) {
		log.Fatalf("❌ SQL migrations need a PostgreSQL DATABASE_URL, got %s (use DB_AUTO_MIGRATE=true instead)", maskDatabaseURL(cfg.DatabaseURL))
	}

	source := "file://" + filepath.ToSlash(filepath.Join(dir, module))
	log.Printf("🔄 Running %s migrations from %s on %s", module, source, maskDatabaseURL(cfg.DatabaseURL))

	m, err := migrate.New(source, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to create migrate instance: %v", err)
	}
	defer m.Close()

	if err := run(m, command, flag.Args()); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(m migrator, command string, args []string) error {
	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration up failed: %w", err)
		}
		log.Println("✅ Migrations up to date")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration down failed: %w", err)
		}
		log.Println("✅ All migrations rolled back")

	case "steps":
		n, err := intArg(args)
		if err != nil || n == 0 {
			return fmt.Errorf("steps needs a non-zero count, e.g. -cmd steps -- -1")
		}
		if err := m.Steps(n); err != nil {
			return fmt.Errorf("migration steps failed: %w", err)
		}
		log.Printf("✅ Migrated %d step(s)", n)

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("📌 No migration applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		log.Printf("📌 Current version: %d (dirty: %t)", version, dirty)

	case "force":
		version, err := intArg(args)
		if err != nil {
			return fmt.Errorf("force needs a version number")
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force failed: %w", err)
		}
		log.Printf("✅ Forced version to %d", version)

	default:
		return fmt.Errorf("unknown command %q (use: up, down, steps, version, force)", command)
	}
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) < 1 {
		return 0, errors.New("missing argument")
	}
	return strconv.Atoi(args[0])
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// maskDatabaseURL hides the password in database URL for logging
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
