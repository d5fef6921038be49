package analytics

// AdvanceCursor consumes every leading item from cursor onward that satisfies
// keep, calling apply for each, and returns the new cursor position. It is
// the shared two-pointer step for streaming merges over date-sorted slices —
// the same code advances a lot cursor (accumulating quantity) and a price
// cursor (carrying the last observation forward).
func AdvanceCursor[T any](items []T, cursor int, keep func(T) bool, apply func(T)) int {
	for cursor < len(items) && keep(items[cursor]) {
		apply(items[cursor])
		cursor++
	}
	return cursor
}
