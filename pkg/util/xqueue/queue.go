package xqueue

import "sync"

// initialCapacity 底层切片的初始容量。
const initialCapacity = 64

// Queue 是无界的多生产者/多消费者 FIFO 队列。
// 所有方法都是并发安全的。
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	head   int // 下一个待取元素的下标
	closed bool
}

// New 创建空队列。
func New[T any]() *Queue[T] {
	q := &Queue[T]{
		items: make([]T, 0, initialCapacity),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue 将 item 追加到队尾，永不阻塞。
// 队列关闭后返回 ErrClosed。
func (q *Queue[T]) Enqueue(item T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	// 只唤醒一个等待者：每个元素只交付给一个消费者
	q.cond.Signal()
	return nil
}

// Dequeue 取出队头元素。
//
// 队列为空时阻塞，直到有新元素入队或队列关闭。
// 队列关闭且已取完时返回零值和 ErrDisconnected。
func (q *Queue[T]) Dequeue() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == len(q.items) && !q.closed {
		q.cond.Wait()
	}

	var zero T
	if q.head == len(q.items) {
		return zero, ErrDisconnected
	}

	item := q.items[q.head]
	q.items[q.head] = zero // 释放引用，避免已执行的闭包被切片持有
	q.head++
	q.compact()
	return item, nil
}

// TryDequeue 非阻塞地取出队头元素。
// 队列为空时 ok 为 false；err 仅在队列已关闭且取完时为 ErrDisconnected。
func (q *Queue[T]) TryDequeue() (item T, ok bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		if q.closed {
			return item, false, ErrDisconnected
		}
		return item, false, nil
	}

	var zero T
	item = q.items[q.head]
	q.items[q.head] = zero
	q.head++
	q.compact()
	return item, true, nil
}

// compact 回收已出队部分占用的空间。调用方必须持有 mu。
func (q *Queue[T]) compact() {
	if q.head == len(q.items) {
		// 队列已空：复用底层数组
		q.items = q.items[:0]
		q.head = 0
		return
	}
	// 已出队部分超过一半时整体前移，摊还 O(1)
	if q.head > initialCapacity && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
}

// Close 关闭队列并唤醒所有阻塞的消费者。
//
// 关闭是一次性操作：首次调用返回 true，之后的调用为空操作并返回 false。
// 已入队的元素在关闭后仍会被交付。
func (q *Queue[T]) Close() bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.closed = true
	q.mu.Unlock()

	q.cond.Broadcast()
	return true
}

// Closed 报告队列是否已关闭。
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len 返回尚未被取出的元素数量。
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
