package typeadapter

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// gregorianOffset is the number of 100-nanosecond intervals between the
// Gregorian calendar epoch (1582-10-15) and the Unix epoch, the same
// constant a Cassandra-style TimeUUID generator uses to build a version-1
// UUID from an arbitrary instant rather than the current wall clock.
const gregorianOffset = 0x01B21DD213814000

// TimeUUID builds an RFC 4122 version-1 (time-based) UUID from ts. The
// google/uuid package's uuid.NewUUID only stamps the current wall-clock time,
// so the 100-ns timestamp field is assembled by hand here; uuid.UUID itself,
// and its string/byte formatting, come straight from google/uuid.
func TimeUUID(ts TimeSource) uuid.UUID {
	intervals := uint64(ts.UnixNano()/100) + gregorianOffset

	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], uint32(intervals))
	binary.BigEndian.PutUint16(u[4:6], uint16(intervals>>32))
	binary.BigEndian.PutUint16(u[6:8], uint16(intervals>>48))
	u[6] = (u[6] & 0x0F) | 0x10 // version 1

	clockSeq := uint16(intervals & 0x3FFF)
	binary.BigEndian.PutUint16(u[8:10], clockSeq)
	u[8] = (u[8] & 0x3F) | 0x80 // RFC 4122 variant

	node := nodeID(ts)
	copy(u[10:16], node[:])

	return u
}

// TimeSource is satisfied by time.Time; it exists so TimeUUID does not
// force every caller to import "time" just to pass a timestamp.
type TimeSource interface {
	UnixNano() int64
}

// ParseTimeUUID recovers the unix-seconds timestamp a version-1 UUID string
// was built from, the reverse of TimeUUID. This is what the Query Builder's
// `since` filter needs: spec.md requires accepting a time-based UUID string
// and converting it to unix seconds before comparing against
// block_timestamp.
func ParseTimeUUID(s string) (int64, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("parse time uuid: %w", err)
	}
	if u.Version() != 1 {
		return 0, fmt.Errorf("uuid %s is not a version-1 time UUID", s)
	}

	timeLow := uint64(binary.BigEndian.Uint32(u[0:4]))
	timeMid := uint64(binary.BigEndian.Uint16(u[4:6]))
	timeHi := uint64(binary.BigEndian.Uint16(u[6:8]) & 0x0FFF)
	intervals := timeLow | timeMid<<32 | timeHi<<48

	return int64(intervals-gregorianOffset) / 1e7, nil
}

// nodeID derives a stable 6-byte "node" field from the timestamp itself.
// A real MAC address is unnecessary here: the node field only needs to make
// UUIDs minted for the same block deterministic and distinct from UUIDs
// minted for other blocks, not globally unique across machines.
func nodeID(ts TimeSource) [6]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(ts.UnixNano()))

	var node [6]byte
	copy(node[:], b[2:8])
	node[0] |= 0x01 // multicast bit, per RFC 4122 §4.1.6 for non-MAC node IDs
	return node
}
