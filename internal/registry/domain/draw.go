package domain

import (
	"encoding/binary"
	"hash/fnv"
	"time"
)

// DrawParticipant picks which participant receives a treasury
// distribution. The index is derived from the invocation time, the
// caller, the balance, and the participant count, hashed and reduced
// modulo the count.
//
// Known weakness: every entropy input is observable or influenceable by
// a caller who controls invocation timing, so the draw is predictable.
// Replacing it requires an explicit decision on a verifiable randomness
// source; until then the draw stays deterministic and auditable.
func DrawParticipant(count int, caller string, balance uint64, at time.Time) int {
	if count <= 0 {
		return 0
	}

	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(at.UnixNano()))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(caller))
	binary.LittleEndian.PutUint64(buf[:], balance)
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(count))
	_, _ = h.Write(buf[:])

	return int(h.Sum64() % uint64(count))
}
