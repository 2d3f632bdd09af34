package paging

import (
	"context"

	"Fediview/internal/core/entities"
)

// Item is one element of a paginated list: a normalized entity reference
// plus the cursor token that was valid after the page it arrived on. The
// store dedups appended pages by ItemID.
type Item interface {
	ItemID() entities.ID
	NextCursor() *string
}

// PreviousLoader fetches one page of raw wire items using, and advancing,
// the list's cursor. "Previous" means "older": pages arrive newest-first and
// the cursor always continues past the page's last item.
//
// Expected failures are returned as the taxonomy in errors.go. An empty page
// with a non-nil cursor is a valid terminal state, not an error.
type PreviousLoader[R any] interface {
	LoadPrevious(ctx context.Context, cursor *IDHolder) ([]R, error)
}

// LoaderFunc adapts a function to PreviousLoader.
type LoaderFunc[R any] func(ctx context.Context, cursor *IDHolder) ([]R, error)

func (f LoaderFunc[R]) LoadPrevious(ctx context.Context, cursor *IDHolder) ([]R, error) {
	return f(ctx, cursor)
}

// Resolve picks the loader configuration for the next call. It is invoked
// on every load, never cached, so an account whose backend tier changed is
// picked up immediately.
type Resolve[R any] func(ctx context.Context) (PreviousLoader[R], error)

// Converter turns raw wire items into list items, upserting the normalized
// entities into the entity store as a side effect. Field mapping itself is
// the conversion collaborator's concern.
type Converter[R any, T Item] interface {
	ConvertAll(ctx context.Context, raw []R) ([]T, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc[R any, T Item] func(ctx context.Context, raw []R) ([]T, error)

func (f ConverterFunc[R, T]) ConvertAll(ctx context.Context, raw []R) ([]T, error) {
	return f(ctx, raw)
}
