package task

import "github.com/google/uuid"

// Sequence returns the partition's ids after removing excluding and inserting
// inserting at insertAt. uuid.Nil disables either step. insertAt is clamped to
// [0, len] of the list left after removal.
func Sequence(ids []uuid.UUID, excluding, inserting uuid.UUID, insertAt int) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids)+1)
	for _, id := range ids {
		if id == excluding || (inserting != uuid.Nil && id == inserting) {
			continue
		}
		out = append(out, id)
	}
	if inserting == uuid.Nil {
		return out
	}

	at := clamp(insertAt, 0, len(out))
	out = append(out, uuid.Nil)
	copy(out[at+1:], out[at:])
	out[at] = inserting
	return out
}

// Reindex assigns order = position for every task of the resulting sequence.
// The result is always the dense range 0..n-1.
func Reindex(ids []uuid.UUID, excluding, inserting uuid.UUID, insertAt int) map[uuid.UUID]int {
	seq := Sequence(ids, excluding, inserting, insertAt)
	assignments := make(map[uuid.UUID]int, len(seq))
	for i, id := range seq {
		assignments[id] = i
	}
	return assignments
}

// ClampIndex reports where insertAt lands in a list of length n.
func ClampIndex(insertAt, n int) int {
	return clamp(insertAt, 0, n)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func idsOf(tasks []Task) []uuid.UUID {
	ids := make([]uuid.UUID, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	return ids
}
