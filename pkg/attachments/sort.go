package attachments

import (
	"cmp"
	"slices"
	"strings"
)

// SortKey is a sortable attachment column.
type SortKey string

const (
	SortFileName  SortKey = "file_name"
	SortFileSize  SortKey = "file_size_bytes"
	SortUpdatedAt SortKey = "updated_at"
)

// Direction orders a sort.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the column and direction of an attachment table.
type SortState struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSort lists the most recently updated attachments first.
var DefaultSort = SortState{Key: SortUpdatedAt, Direction: Descending}

// Toggle returns the state after clicking key: the same column flips its
// direction, a new column starts ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key != key {
		return SortState{Key: key, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// Sort returns a sorted copy of list. Unknown keys fall back to updated_at.
func Sort(list []Attachment, state SortState) []Attachment {
	out := slices.Clone(list)
	compare := func(a, b Attachment) int {
		switch state.Key {
		case SortFileName:
			return strings.Compare(strings.ToLower(a.FileName), strings.ToLower(b.FileName))
		case SortFileSize:
			return cmp.Compare(a.FileSizeBytes, b.FileSizeBytes)
		default:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	}
	slices.SortStableFunc(out, func(a, b Attachment) int {
		if state.Direction == Descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}
