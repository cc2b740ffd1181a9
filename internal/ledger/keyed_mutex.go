package ledger

import (
	"hash/fnv"
	"sync"
)

// keyedMutex serializes writers per completion key using lock striping.
// Two distinct keys may share a stripe, which only over-serializes; it never
// lets two writers into the same key at once.
type keyedMutex struct {
	stripes [256]sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{}
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &k.stripes[h.Sum32()%uint32(len(k.stripes))]
	m.Lock()
	return m.Unlock
}
