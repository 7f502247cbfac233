// Package ordering maintains the contiguous 1..N rank invariant for ordered
// collections (sections of a package, work items of a section). Every
// mutation repairs ranks immediately; sparse or duplicated orders never
// survive a call.
package ordering

// Renumber assigns 1-based positional ranks to every element.
func Renumber[T any](items []T, setOrder func(*T, int)) {
	for i := range items {
		setOrder(&items[i], i+1)
	}
}

// MoveUp swaps the element at idx with its predecessor and renumbers.
// It reports false (no-op) at the top boundary or for an invalid index.
func MoveUp[T any](items []T, idx int, setOrder func(*T, int)) bool {
	if idx <= 0 || idx >= len(items) {
		return false
	}
	items[idx-1], items[idx] = items[idx], items[idx-1]
	Renumber(items, setOrder)
	return true
}

// MoveDown swaps the element at idx with its successor and renumbers.
// It reports false (no-op) at the bottom boundary or for an invalid index.
func MoveDown[T any](items []T, idx int, setOrder func(*T, int)) bool {
	if idx < 0 || idx >= len(items)-1 {
		return false
	}
	items[idx], items[idx+1] = items[idx+1], items[idx]
	Renumber(items, setOrder)
	return true
}

// Append adds an element at the end with rank len+1.
func Append[T any](items []T, item T, setOrder func(*T, int)) []T {
	items = append(items, item)
	setOrder(&items[len(items)-1], len(items))
	return items
}

// Remove deletes the element at idx and compacts the remaining ranks.
// An invalid index leaves the slice untouched.
func Remove[T any](items []T, idx int, setOrder func(*T, int)) []T {
	if idx < 0 || idx >= len(items) {
		return items
	}
	items = append(items[:idx], items[idx+1:]...)
	Renumber(items, setOrder)
	return items
}
