package qlearning

import "math/rand"

// Transition rappresenta un singolo step nell'ambiente.
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// ReplayBuffer memorizza le esperienze per il training. It is a fixed-size
// ring: once full, every Add overwrites the oldest transition.
type ReplayBuffer struct {
	buffer   []Transition
	maxSize  int
	position int
	size     int
}

// NewReplayBuffer crea un nuovo buffer di replay.
func NewReplayBuffer(maxSize int) *ReplayBuffer {
	return &ReplayBuffer{
		buffer:  make([]Transition, maxSize),
		maxSize: maxSize,
	}
}

// Add aggiunge una transizione al buffer, evicting the oldest when full.
func (b *ReplayBuffer) Add(t Transition) {
	b.buffer[b.position] = t
	b.position = (b.position + 1) % b.maxSize
	if b.size < b.maxSize {
		b.size++
	}
}

// Len returns the number of stored transitions.
func (b *ReplayBuffer) Len() int {
	return b.size
}

// Sample restituisce un batch casuale di transizioni, drawn uniformly and
// without replacement within the batch. Callers must check Len first; a
// batch larger than the buffer is truncated.
func (b *ReplayBuffer) Sample(batchSize int) []Transition {
	if batchSize > b.size {
		batchSize = b.size
	}

	batch := make([]Transition, batchSize)
	for i, idx := range rand.Perm(b.size)[:batchSize] {
		batch[i] = b.buffer[idx]
	}
	return batch
}
