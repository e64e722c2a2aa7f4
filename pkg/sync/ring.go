package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring consistently maps keys onto a fixed set of stripe indices. Each stripe
// owns vnodes points on the ring.
type ring struct {
	points *treemap.Map

	// first is the stripe owning the lowest point, which also owns every hash
	// past the highest one.
	first int
}

func newRing(stripes, vnodes uint) *ring {
	points := treemap.NewWith(utils.Int64Comparator)

	var seed [12]byte
	for stripe := uint(0); stripe < stripes; stripe++ {
		binary.LittleEndian.PutUint64(seed[:8], uint64(stripe))
		for vnode := uint(0); vnode < vnodes; vnode++ {
			binary.LittleEndian.PutUint32(seed[8:], uint32(vnode))
			points.Put(hash(seed[:]), int(stripe))
		}
	}

	r := &ring{points: points}
	if _, first := points.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

func (r *ring) stripe(key []byte) int {
	if _, stripe := r.points.Ceiling(hash(key)); stripe != nil {
		return stripe.(int)
	}
	return r.first
}

func hash(b []byte) int64 {
	h, _ := murmur3.Sum128(b)
	return int64(h)
}
