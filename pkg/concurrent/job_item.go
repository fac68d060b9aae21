package concurrent

import "github.com/lintang-b-s/graphtile/pkg/datastructure"

// JobI. job payloads: tile ids or storage keys.
type JobI interface {
	datastructure.GraphID | string
}

type Job[T JobI] struct {
	ID      int
	JobItem T
}

type JobFunc[T JobI, G any] func(job T) G
