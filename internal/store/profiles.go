package store

import (
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ExecutionProfile stands in for a Cassandra execution profile: a timeout
// paired with the per-query settings that express the same write-durability
// intent a consistency level would on a wide-column cluster.
type ExecutionProfile struct {
	Timeout  time.Duration
	Settings clickhouse.Settings
}

// ProfileFull is used for the core block/transaction writes: generous
// timeout, async_insert enabled but wait_for_async_insert on, so the
// caller still blocks for a durable ack even though the server queues the
// insert rather than writing a part per statement.
var ProfileFull = ExecutionProfile{
	Timeout: 15 * time.Second,
	Settings: clickhouse.Settings{
		"async_insert":          1,
		"wait_for_async_insert": 1,
	},
}

// ProfileFast is used for doctor scans, where a slow reply should surface
// quickly rather than stall gap detection.
var ProfileFast = ExecutionProfile{
	Timeout: 5 * time.Second,
}

// ProfileGQL is used for query-layer reads serving the downstream frontend.
var ProfileGQL = ExecutionProfile{
	Timeout: 5 * time.Second,
}
