// Command migrate manages the garagebook database schema. It wraps
// golang-migrate over the SQL files in db/migrations and reads the database
// DSN from the same configuration as the server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"garagebook/internal/config"
)

const usage = `usage: migrate [-source DIR] <command>

commands:
  up           apply all pending migrations
  down         revert all migrations
  steps N      apply N migrations (negative N reverts)
  version      print the current schema version
  force V      mark the schema as version V, clearing a dirty flag
`

func main() {
	if err := run(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func run() error {
	source := flag.String("source", "db/migrations", "directory holding migration SQL files")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	m, err := migrate.New("file://"+*source, cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("opening migration source %q: %w", *source, err)
	}
	defer m.Close()

	switch cmd := args[0]; cmd {
	case "up":
		return report(m.Up(), "schema is up to date")

	case "down":
		return report(m.Down(), "all migrations reverted")

	case "steps":
		if len(args) < 2 {
			return errors.New("steps needs a count, e.g. steps -1")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("steps count %q is not a number", args[1])
		}
		return report(m.Steps(n), fmt.Sprintf("applied %d step(s)", n))

	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
		fmt.Printf("schema version %d (dirty: %v)\n", v, dirty)
		return nil

	case "force":
		if len(args) < 2 {
			return errors.New("force needs a version, e.g. force 3")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force version %q is not a number", args[1])
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("forcing schema version %d: %w", v, err)
		}
		log.Printf("schema version forced to %d", v)
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// report collapses golang-migrate's no-op signal: ErrNoChange means the
// database already matches the requested state, which is success here.
func report(err error, done string) error {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("no schema changes to apply")
		return nil
	}
	log.Println(done)
	return nil
}
