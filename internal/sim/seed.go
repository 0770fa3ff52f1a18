package sim

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Key is a structured tuple of stable business identifiers. Every random draw
// in the engine is derived from a Key, so replays reproduce the same values
// regardless of evaluation order.
type Key struct {
	Domain string
	IDs    []uuid.UUID
	Ints   []int64
}

func NewKey(domain string, ids ...uuid.UUID) Key {
	return Key{Domain: domain, IDs: ids}
}

func (k Key) With(ints ...int64) Key {
	out := Key{Domain: k.Domain, IDs: k.IDs}
	out.Ints = append(append([]int64(nil), k.Ints...), ints...)
	return out
}

const (
	tagDomain byte = 1
	tagID     byte = 2
	tagInt    byte = 3
)

// Seed hashes the tuple. Each field is tagged and length-prefixed so that
// distinct tuples cannot collide by concatenation.
func (k Key) Seed() uint64 {
	d := xxhash.New()
	writeField(d, tagDomain, []byte(k.Domain))
	for _, id := range k.IDs {
		writeField(d, tagID, id[:])
	}
	var buf [8]byte
	for _, v := range k.Ints {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		writeField(d, tagInt, buf[:])
	}
	return d.Sum64()
}

func writeField(d *xxhash.Digest, tag byte, b []byte) {
	var hdr [5]byte
	hdr[0] = tag
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(b)))
	_, _ = d.Write(hdr[:])
	_, _ = d.Write(b)
}

// Rand returns an independent generator for the named stream of this key.
func (k Key) Rand(stream string) *rand.Rand {
	return NewRand(k.Seed(), stream)
}

func NewRand(seed uint64, stream string) *rand.Rand {
	return rand.New(rand.NewPCG(seed, xxhash.Sum64String(stream)))
}
