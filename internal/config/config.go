// Package config loads the environment-driven configuration shared by
// cmd/sync and cmd/schema-init, using the same go-flags env-tag style every
// cmd/*/main.go in this codebase uses.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	flags "github.com/jessevdk/go-flags"
)

// Config holds every environment variable spec.md names.
type Config struct {
	ClickhouseDSN          string        `long:"clickhouse-dsn" env:"CLICKHOUSE_DSN" description:"ClickHouse DSN" required:"true"`
	CassandraContactPoints string        `long:"cassandra-contact-points" env:"CASSANDRA_CONTACT_POINTS" description:"JSON array of host:port, kept for naming parity with the original store's config surface" default:"[\"localhost:9042\"]"`
	NodeURL                string        `long:"node-url" env:"NODE_URL" description:"remote chain node base URL" required:"true"`
	ParallelWorkers        int           `long:"parallel-workers" env:"PARALLEL_WORKERS" description:"number of concurrent block-import workers" default:"1"`
	DBTimeout              time.Duration `long:"db-timeout" env:"DB_TIMEOUT" description:"timeout for the schema migration run, as a duration with a unit (e.g. 30s); a bare number is rejected" default:"30s"`
	DevelopmentSyncLength  *int          `long:"development-sync-length" env:"DEVELOPMENT_SYNC_LENGTH" description:"truncate the unsynced list starting at this index; development only"`
	PollIntervalSeconds    int           `long:"polltime-delay-seconds" env:"POLLTIME_DELAY_SECONDS" description:"seconds between polling ticks" default:"30"`
	MigrationsDir          string        `long:"migrations-dir" env:"MIGRATIONS_DIR" description:"directory of ClickHouse migration files" default:"migrations/clickhouse"`
	MetricsAddr            string        `long:"metrics-addr" env:"METRICS_ADDR" description:"address for the metrics server" default:":2112"`
}

// ContactPoints decodes CassandraContactPoints's JSON array. go-flags has
// no native JSON-array env decoding, so this one field is parsed by hand
// after the rest of the struct loads through the normal tag-driven path.
func (c Config) ContactPoints() ([]string, error) {
	var points []string
	if err := json.Unmarshal([]byte(c.CassandraContactPoints), &points); err != nil {
		return nil, fmt.Errorf("parse contact points: %w", err)
	}
	return points, nil
}

// Load parses args (typically os.Args) into a Config.
func Load(args []string) (Config, error) {
	var cfg Config
	if _, err := flags.ParseArgs(&cfg, args); err != nil {
		return Config{}, err
	}
	if cfg.ParallelWorkers <= 0 {
		return Config{}, fmt.Errorf("parallel workers must be positive, got %d", cfg.ParallelWorkers)
	}
	if _, err := cfg.ContactPoints(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
