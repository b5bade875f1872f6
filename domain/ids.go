package domain

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Layout of a generated MessageID, most significant bits first:
// 41 bits of milliseconds since idEpoch, 6 bits of origin tag, 6 bits of sequence.
// The 53 bits keep every id exact in a JSON number parsed as a double.
// Two client instances only collide if they share an origin tag and the
// same millisecond, and a single instance never repeats itself.
const (
	originBits   = 6
	sequenceBits = 6
	maxOrigin    = 1<<originBits - 1
	maxSequence  = 1<<sequenceBits - 1

	// MaxMessageID is the largest id a generator hands out, 2^53 - 1.
	MaxMessageID = MessageID(1<<53 - 1)
)

// idEpoch is 2024-01-01T00:00:00Z in unix milliseconds.
const idEpoch = 1_704_067_200_000

// IDGenerator stamps collision-resistant, monotonically increasing ids.
// It is safe for concurrent use.
type IDGenerator struct {
	mu       sync.Mutex
	origin   int64
	lastMs   int64
	sequence int64
	now      func() time.Time
}

// NewIDGenerator derives the origin tag from a random uuid.
func NewIDGenerator() *IDGenerator {
	id := uuid.New()
	origin := binary.BigEndian.Uint16(id[:2]) & maxOrigin
	return NewIDGeneratorWithOrigin(origin, time.Now)
}

func NewIDGeneratorWithOrigin(origin uint16, now func() time.Time) *IDGenerator {
	return &IDGenerator{origin: int64(origin & maxOrigin), now: now}
}

// Next returns a new id, strictly greater than the previous one.
func (g *IDGenerator) Next() MessageID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := max(g.now().UnixMilli()-idEpoch, 0)
	if ms < g.lastMs {
		// Clock went backwards, stay on the last known millisecond.
		ms = g.lastMs
	}
	if ms == g.lastMs {
		g.sequence++
		if g.sequence > maxSequence {
			ms++
			g.sequence = 0
		}
	} else {
		g.sequence = 0
	}
	g.lastMs = ms
	return MessageID(ms<<(originBits+sequenceBits) | g.origin<<sequenceBits | g.sequence)
}

// TimeOf extracts the millisecond timestamp embedded in a generated id.
func TimeOf(id MessageID) time.Time {
	return time.UnixMilli(int64(id)>>(originBits+sequenceBits) + idEpoch)
}
