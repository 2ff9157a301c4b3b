// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"sync"

	"github.com/danielhkuo/condo-survey/models"
)

// Item is one pending mail: a survey snapshot and who receives it.
type Item struct {
	Survey    models.Survey
	Recipient models.Identity
}

// Queue is an unbounded in-process FIFO. Its contents are lost on
// restart.
type Queue struct {
	mu    sync.Mutex
	items []Item
}

func (q *Queue) Push(items ...Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Take removes and returns up to n items from the head of the queue.
func (q *Queue) Take(n int) []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n <= 0 || len(q.items) == 0 {
		return nil
	}
	if n > len(q.items) {
		n = len(q.items)
	}

	batch := make([]Item, n)
	copy(batch, q.items[:n])
	q.items = q.items[n:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return batch
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
