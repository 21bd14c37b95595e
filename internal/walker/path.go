package walker

import "errors"

// DefaultMaxPath is the default limit on a constructed path, in bytes.
const DefaultMaxPath = 4094

// ErrPathTooLong is returned when a constructed path would exceed the limit.
var ErrPathTooLong = errors.New("path too long")

// pathBuf is the walker's growable path. Components are pushed on entry and
// popped on exit, so a sibling never sees another branch's name. The length
// limit is checked explicitly instead of relying on buffer capacity.
type pathBuf struct {
	b   []byte
	sep byte
	max int
}

func newPathBuf(sep byte, max int) *pathBuf {
	if max <= 0 {
		max = DefaultMaxPath
	}
	return &pathBuf{b: make([]byte, 0, 256), sep: sep, max: max}
}

// reset makes root the whole buffer.
func (p *pathBuf) reset(root string) error {
	p.b = p.b[:0]
	if len(root) > p.max {
		return ErrPathTooLong
	}
	p.b = append(p.b, root...)
	return nil
}

// push appends a separator (unless the buffer already ends with one) and
// name. It returns the mark to pop back to. On overflow the buffer is left
// unchanged.
func (p *pathBuf) push(name string) (int, error) {
	mark := len(p.b)
	need := mark + len(name)
	if p.needsSep() {
		need++
	}
	if need > p.max {
		return mark, ErrPathTooLong
	}
	if p.needsSep() {
		p.b = append(p.b, p.sep)
	}
	p.b = append(p.b, name...)
	return mark, nil
}

// pop truncates the buffer back to mark.
func (p *pathBuf) pop(mark int) {
	if mark >= 0 && mark <= len(p.b) {
		p.b = p.b[:mark]
	}
}

// join returns the path push would have produced, without touching the buffer.
func (p *pathBuf) join(name string) string {
	if !p.needsSep() {
		return string(p.b) + name
	}
	return string(p.b) + string(p.sep) + name
}

func (p *pathBuf) needsSep() bool {
	if len(p.b) == 0 {
		return false
	}
	last := p.b[len(p.b)-1]
	return last != p.sep && last != '/'
}

func (p *pathBuf) String() string {
	return string(p.b)
}
