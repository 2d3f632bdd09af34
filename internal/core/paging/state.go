package paging

// Phase is the lifecycle position of one paginated list.
type Phase int

const (
	// PhaseLoadingInit is the initial load, before any content exists.
	PhaseLoadingInit Phase = iota
	// PhaseLoadingPrevious is a further page load; prior content is carried.
	PhaseLoadingPrevious
	// PhaseFixed is the settled state after a successful load or a clear.
	PhaseFixed
	// PhaseError is the settled state after a failed load; prior content is
	// carried so the view keeps showing what it had.
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoadingInit:
		return "loading-init"
	case PhaseLoadingPrevious:
		return "loading-previous"
	case PhaseFixed:
		return "fixed"
	case PhaseError:
		return "error"
	default:
		return "invalid"
	}
}

// Content is the presence-tagged item list of a paginated state: either no
// content has ever been loaded (Exists == false) or an ordered list exists,
// possibly empty only never — an existing list always has at least one item.
type Content[T any] struct {
	Exists bool
	Items  []T
}

// Exist wraps a non-empty item list.
func Exist[T any](items []T) Content[T] {
	return Content[T]{Exists: true, Items: items}
}

// NotExist is the no-content sentinel.
func NotExist[T any]() Content[T] {
	return Content[T]{}
}

// State is the tagged union every paginated list exposes. Transitions only
// ever discard content through Clear; LoadingPrevious and Error always carry
// the last good snapshot forward.
type State[T any] struct {
	Phase   Phase
	Content Content[T]
	Err     error // set only in PhaseError
}
