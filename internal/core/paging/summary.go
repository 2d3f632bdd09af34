package paging

import (
	"context"

	"Fediview/internal/core/entities"
)

// Summary is the non-generic snapshot of one list's state, shaped for the
// local API and log output.
type Summary struct {
	Phase  string        `json:"phase"`
	Exists bool          `json:"exists"`
	Count  int           `json:"count"`
	IDs    []entities.ID `json:"ids,omitempty"`
	Error  string        `json:"error,omitempty"`
	Cursor *string       `json:"cursor,omitempty"`
	Done   bool          `json:"exhausted"`
}

// Summarizer is the view any paging store exposes to the API layer.
type Summarizer interface {
	Summary() Summary
}

// Summary implements Summarizer.
func (s *Store[R, T]) Summary() Summary {
	st := s.State()
	sum := Summary{
		Phase:  st.Phase.String(),
		Exists: st.Content.Exists,
		Count:  len(st.Content.Items),
		Cursor: s.holder.Next(),
		Done:   s.holder.Exhausted(),
	}
	for _, it := range st.Content.Items {
		sum.IDs = append(sum.IDs, it.ItemID())
	}
	if st.Err != nil {
		sum.Error = st.Err.Error()
	}
	return sum
}

// Pageable is the operational surface of a paging store once the item
// types are erased: what the API layer needs to trigger loads and resets.
type Pageable interface {
	Summarizer
	LoadPrevious(ctx context.Context) error
	Clear(ctx context.Context) error
}
