package xqueue_test

import (
	"fmt"

	"github.com/omeyang/xserve/pkg/util/xqueue"
)

func Example() {
	q := xqueue.New[string]()

	_ = q.Enqueue("a")
	_ = q.Enqueue("b")
	q.Close()

	// 关闭后仍可取完已入队的元素
	for {
		v, err := q.Dequeue()
		if err != nil {
			fmt.Println(err)
			break
		}
		fmt.Println(v)
	}

	// Output:
	// a
	// b
	// xqueue: queue is closed and drained
}
