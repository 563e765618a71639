package bookmarks

import (
	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// The functions below are the only place list mutations are written.
// They never modify their input; both facades rely on that.

// prepend returns a new list with b in front.
func prepend(list []domain.Bookmark, b domain.Bookmark) []domain.Bookmark {
	out := make([]domain.Bookmark, len(list)+1)
	out[0] = b
	copy(out[1:], list)
	return out
}

// edit applies patch to the record with the given id.
// The bool is false (and the list returned untouched) when id is unknown.
func edit(list []domain.Bookmark, id string, patch domain.Patch) ([]domain.Bookmark, domain.Bookmark, bool) {
	for i, b := range list {
		if b.ID != id {
			continue
		}
		out := clone(list)
		out[i] = patch.Apply(b)
		return out, out[i], true
	}
	return list, domain.Bookmark{}, false
}

// remove drops every record with the given id.
func remove(list []domain.Bookmark, id string) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(list))
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

// move takes the element at oldIndex out and reinserts it at newIndex.
// Both indices must be in [0, len(list)).
func move(list []domain.Bookmark, oldIndex, newIndex int) ([]domain.Bookmark, error) {
	n := len(list)
	if oldIndex < 0 || oldIndex >= n {
		return nil, domain.ErrIndexOutOfRange.
			Withf("oldIndex %d out of range [0, %d)", oldIndex, n).
			WithDetails(map[string]int{"oldIndex": oldIndex, "length": n})
	}
	if newIndex < 0 || newIndex >= n {
		return nil, domain.ErrIndexOutOfRange.
			Withf("newIndex %d out of range [0, %d)", newIndex, n).
			WithDetails(map[string]int{"newIndex": newIndex, "length": n})
	}

	moved := list[oldIndex]
	out := make([]domain.Bookmark, 0, n)
	out = append(out, list[:oldIndex]...)
	out = append(out, list[oldIndex+1:]...)

	out = append(out, domain.Bookmark{})
	copy(out[newIndex+1:], out[newIndex:])
	out[newIndex] = moved
	return out, nil
}

// clone returns a shallow copy that is never nil.
func clone(list []domain.Bookmark) []domain.Bookmark {
	out := make([]domain.Bookmark, len(list))
	copy(out, list)
	return out
}
