package client

// TriState is the header checkbox state of the notification list.
type TriState int

const (
	Unchecked TriState = iota
	Indeterminate
	Checked
)

// SelectionSet tracks which notification ids are selected for a bulk
// action.
type SelectionSet struct {
	ids map[string]struct{}
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{ids: make(map[string]struct{})}
}

func (s *SelectionSet) Select(id string)   { s.ids[id] = struct{}{} }
func (s *SelectionSet) Deselect(id string) { delete(s.ids, id) }

func (s *SelectionSet) Toggle(id string) {
	if s.Contains(id) {
		s.Deselect(id)
	} else {
		s.Select(id)
	}
}

func (s *SelectionSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *SelectionSet) Count() int { return len(s.ids) }

func (s *SelectionSet) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids
}

func (s *SelectionSet) Clear() {
	s.ids = make(map[string]struct{})
}

// SelectAll replaces the selection with the given ids.
func (s *SelectionSet) SelectAll(ids []string) {
	s.Clear()
	for _, id := range ids {
		s.Select(id)
	}
}

// HeaderState derives the tri-state header checkbox from the selection
// size against the number of listed notifications.
func (s *SelectionSet) HeaderState(total int) TriState {
	switch {
	case s.Count() == 0:
		return Unchecked
	case s.Count() >= total && total > 0:
		return Checked
	default:
		return Indeterminate
	}
}
