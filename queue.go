package blame

import "container/heap"

// commitQueue orders commits newest first by committer time. Commits with
// equal time leave in the order they were pushed, so traversal is
// reproducible.
type commitQueue struct {
	items  commitHeap
	queued map[ObjectID]bool
	seq    int
}

func newCommitQueue() *commitQueue {
	return &commitQueue{queued: make(map[ObjectID]bool)}
}

// push enqueues c unless it is already waiting.
func (q *commitQueue) push(c *Commit) {
	if q.queued[c.ID] {
		return
	}
	q.queued[c.ID] = true
	heap.Push(&q.items, queuedCommit{commit: c, seq: q.seq})
	q.seq++
}

func (q *commitQueue) pop() *Commit {
	item := heap.Pop(&q.items).(queuedCommit)
	delete(q.queued, item.commit.ID)
	return item.commit
}

func (q *commitQueue) Len() int {
	return q.items.Len()
}

type queuedCommit struct {
	commit *Commit
	seq    int
}

type commitHeap []queuedCommit

func (h commitHeap) Len() int { return len(h) }

func (h commitHeap) Less(i, j int) bool {
	if !h[i].commit.Time.Equal(h[j].commit.Time) {
		return h[i].commit.Time.After(h[j].commit.Time)
	}
	return h[i].seq < h[j].seq
}

func (h commitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *commitHeap) Push(x any) { *h = append(*h, x.(queuedCommit)) }

func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
