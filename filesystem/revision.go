package filesystem

import (
	"maps"
	"slices"
	"sync"
)

// Subscribe registers a listener for revision changes. The returned channel
// holds at most the latest revision: a slow reader sees the newest value and
// never blocks a mutation. Call the returned func to unsubscribe; the channel
// is not closed.
func (t *FileTree) Subscribe() (<-chan uint64, func()) {
	id := t.lastSubID.Add(1)
	ch := make(chan uint64, 1)
	t.subscribers.Store(id, ch)

	var once sync.Once
	return ch, func() {
		once.Do(func() { t.subscribers.Delete(id) })
	}
}

// SubscriberCount returns the number of live subscriptions
func (t *FileTree) SubscriberCount() int {
	return t.subscribers.Size()
}

func (t *FileTree) notifyLocked(rev uint64) {
	t.subscribers.Range(func(_ uint64, ch chan uint64) bool {
		select {
		case ch <- rev:
		default:
			// Replace the stale value with the latest one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- rev:
			default:
			}
		}
		return true
	})
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
