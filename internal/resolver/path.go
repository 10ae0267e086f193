package resolver

import "github.com/xraph/kiln/internal/model"

// Frame is one step of the resolution path: key resolved in component, reached
// through a request of kind Via.
type Frame struct {
	Component model.ComponentID
	Key       model.Key
	Via       model.RequestKind
}

type frameKey struct {
	component model.ComponentID
	key       model.Key
}

// Path is the explicit stack of frames currently being resolved.
type Path struct {
	frames []Frame
	index  map[frameKey]int
}

// NewPath returns an empty path.
func NewPath() *Path {
	return &Path{index: make(map[frameKey]int)}
}

// Push appends f. A (component, key) pair is pushed at most once at a time.
func (p *Path) Push(f Frame) {
	p.index[frameKey{f.Component, f.Key}] = len(p.frames)
	p.frames = append(p.frames, f)
}

// Pop removes and returns the last frame.
func (p *Path) Pop() Frame {
	f := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]
	delete(p.index, frameKey{f.Component, f.Key})
	return f
}

// IndexOf returns the position of (component, key) on the path, or -1.
func (p *Path) IndexOf(component model.ComponentID, key model.Key) int {
	if i, ok := p.index[frameKey{component, key}]; ok {
		return i
	}
	return -1
}

// Top returns the last frame.
func (p *Path) Top() (Frame, bool) {
	if len(p.frames) == 0 {
		return Frame{}, false
	}
	return p.frames[len(p.frames)-1], true
}

// From returns a copy of the frames starting at i.
func (p *Path) From(i int) []Frame {
	return append([]Frame(nil), p.frames[i:]...)
}

// Keys returns the key of every frame, outermost first.
func (p *Path) Keys() []model.Key {
	keys := make([]model.Key, len(p.frames))
	for i, f := range p.frames {
		keys[i] = f.Key
	}
	return keys
}
