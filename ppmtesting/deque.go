package ppmtesting

import (
	"slices"

	"github.com/forestrie/go-persistent/ppm"
)

// DequeModel is a plain slice deque that remembers its contents at every
// version it is told about.
type DequeModel struct {
	items   []int
	history map[ppm.Version][]int
}

func NewDequeModel() *DequeModel {
	return &DequeModel{history: map[ppm.Version][]int{}}
}

func (m *DequeModel) Len() int { return len(m.items) }

func (m *DequeModel) PushBack(x int)  { m.items = append(m.items, x) }
func (m *DequeModel) PushFront(x int) { m.items = append([]int{x}, m.items...) }

func (m *DequeModel) PopBack() (int, bool) {
	if len(m.items) == 0 {
		return 0, false
	}
	x := m.items[len(m.items)-1]
	m.items = m.items[:len(m.items)-1]
	return x, true
}

func (m *DequeModel) PopFront() (int, bool) {
	if len(m.items) == 0 {
		return 0, false
	}
	x := m.items[0]
	m.items = m.items[1:]
	return x, true
}

// Record stores the current contents as the state at v.
func (m *DequeModel) Record(v ppm.Version) {
	m.history[v] = slices.Clone(m.items)
}

// At returns the contents recorded for v.
func (m *DequeModel) At(v ppm.Version) ([]int, bool) {
	items, ok := m.history[v]
	return items, ok
}

// Versions returns the recorded versions in ascending order.
func (m *DequeModel) Versions() []ppm.Version {
	vs := make([]ppm.Version, 0, len(m.history))
	for v := range m.history {
		vs = append(vs, v)
	}
	slices.Sort(vs)
	return vs
}
