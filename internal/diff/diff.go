// Package diff implements key-based set reconciliation between two ordered
// collections. It is the heart of the snapshot merge: two competing
// full-state snapshots are partitioned into shared and exclusive items.
package diff

// Pair holds matched items that share a key across both collections.
type Pair[T any] struct {
	Old T
	New T
}

// Result partitions the two inputs. Together with Both, OnlyOld covers the
// old collection exactly and OnlyNew covers the new one exactly.
type Result[T any] struct {
	OnlyOld []T
	OnlyNew []T
	Both    []Pair[T]
}

// Diff reconciles oldItems and newItems by the given key. Both inputs must
// have unique keys under keyOf; callers dedupe first. Input order is
// preserved within each partition. Runs in O(n+m).
func Diff[T any, K comparable](oldItems, newItems []T, keyOf func(T) K) Result[T] {
	oldByKey := make(map[K]T, len(oldItems))
	for _, x := range oldItems {
		oldByKey[keyOf(x)] = x
	}
	newByKey := make(map[K]T, len(newItems))
	for _, x := range newItems {
		newByKey[keyOf(x)] = x
	}

	var res Result[T]
	for _, x := range oldItems {
		if match, ok := newByKey[keyOf(x)]; ok {
			res.Both = append(res.Both, Pair[T]{Old: x, New: match})
		} else {
			res.OnlyOld = append(res.OnlyOld, x)
		}
	}
	for _, x := range newItems {
		if _, ok := oldByKey[keyOf(x)]; !ok {
			res.OnlyNew = append(res.OnlyNew, x)
		}
	}
	return res
}
