package record

// Frame is an open scan module while walking a chain's records
type Frame struct {
	ID   string
	Kind ModuleKind
}

// Stack tracks open scan modules from boundary markers.
// A module is closed implicitly when a sibling or an outer module shows up
// before its end marker; callers treat implicitly closed frames as truncated.
type Stack struct {
	frames []Frame
}

// Len returns the number of open modules
func (s *Stack) Len() int {
	return len(s.frames)
}

// Top returns the innermost open module
func (s *Stack) Top() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// Kind returns the kind of the innermost open module, ModuleNone outside any module
func (s *Stack) Kind() ModuleKind {
	top, ok := s.Top()
	if !ok {
		return ModuleNone
	}
	return top.Kind
}

// Push opens the module of a start marker. If the marker declares a parent that is
// not the innermost open module, the modules above the parent are closed first and returned,
// innermost first.
func (s *Stack) Push(rec *Record) (closed []Frame) {
	if rec.Parent != "" && s.index(rec.Parent) != -1 {
		for len(s.frames) > 0 && s.frames[len(s.frames)-1].ID != rec.Parent {
			closed = append(closed, s.pop())
		}
	} else if rec.Parent == "" {
		// a start marker repeating the innermost id means its end marker went missing
		if top, ok := s.Top(); ok && top.ID == rec.Module {
			closed = append(closed, s.pop())
		}
	}
	s.frames = append(s.frames, Frame{ID: rec.Module, Kind: rec.ModuleKind})
	return closed
}

// Pop closes module id. Modules opened after it are closed implicitly and returned in implicit,
// innermost first. ok is false when id is not open; the stack is then left unchanged.
func (s *Stack) Pop(id string) (explicit Frame, implicit []Frame, ok bool) {
	if s.index(id) == -1 {
		return Frame{}, nil, false
	}
	for {
		frame := s.pop()
		if frame.ID == id {
			return frame, implicit, true
		}
		implicit = append(implicit, frame)
	}
}

// Drain closes every open module, innermost first
func (s *Stack) Drain() []Frame {
	var ret []Frame
	for len(s.frames) > 0 {
		ret = append(ret, s.pop())
	}
	return ret
}

func (s *Stack) pop() Frame {
	ret := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return ret
}

func (s *Stack) index(id string) int {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].ID == id {
			return i
		}
	}
	return -1
}
