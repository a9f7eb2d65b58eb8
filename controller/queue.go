package controller

import (
	"sync"

	"beatbridge/resolver"
)

// TrackSource is the ordered track list the player navigates. It keeps its
// own cursor; ok is false at either boundary.
type TrackSource interface {
	Next() (track resolver.TrackDescriptor, ok bool)
	Previous() (track resolver.TrackDescriptor, ok bool)
}

// Queue is an in-memory TrackSource. The cursor starts before the first item.
type Queue struct {
	items  []resolver.TrackDescriptor
	cursor int
	mutex  sync.Mutex
}

func NewQueue(tracks ...resolver.TrackDescriptor) *Queue {
	return &Queue{
		items:  append([]resolver.TrackDescriptor(nil), tracks...),
		cursor: -1,
	}
}

func (q *Queue) Add(track resolver.TrackDescriptor) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.items = append(q.items, track)
}

func (q *Queue) Next() (resolver.TrackDescriptor, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.cursor+1 >= len(q.items) {
		return resolver.TrackDescriptor{}, false
	}
	q.cursor++
	return q.items[q.cursor], true
}

func (q *Queue) Previous() (resolver.TrackDescriptor, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.cursor <= 0 {
		return resolver.TrackDescriptor{}, false
	}
	q.cursor--
	return q.items[q.cursor], true
}

// Position is the cursor index, -1 before the first Next.
func (q *Queue) Position() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.cursor
}

func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.items)
}

func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}
