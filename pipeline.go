package physx

import "golang.org/x/sync/errgroup"

// task runs fn over data in contiguous chunks on at most workersCount
// goroutines. fn receives the index of each item so results can be written
// in input order.
func task[T any](workersCount int, data []T, fn func(i int, item T)) {
	if workersCount <= 1 || len(data) < 2 {
		for i, item := range data {
			fn(i, item)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workersCount)

	chunkSize := (len(data) + workersCount - 1) / workersCount
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i, data[i])
			}
			return nil
		})
	}

	_ = g.Wait()
}
