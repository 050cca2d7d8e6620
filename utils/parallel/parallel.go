// 并行工具：按CPU核数分块执行切片上的独立计算
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// chunks 将[0,n)按worker数分块
func chunks(n int) [][2]int {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 0 {
		return nil
	}
	size := (n + workers - 1) / workers
	res := make([][2]int, 0, workers)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		res = append(res, [2]int{start, end})
	}
	return res
}

// GoFor 并行执行f(x)
// 说明：f之间不能有共享写入；每个元素只被一个goroutine处理
func GoFor[T any](data []T, f func(x T)) {
	var g errgroup.Group
	for _, c := range chunks(len(data)) {
		c := c
		g.Go(func() error {
			for _, x := range data[c[0]:c[1]] {
				f(x)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// GoMap 并行计算f(x)并按原顺序返回结果
func GoMap[T, R any](data []T, f func(x T) R) []R {
	res := make([]R, len(data))
	var g errgroup.Group
	for _, c := range chunks(len(data)) {
		c := c
		g.Go(func() error {
			for i := c[0]; i < c[1]; i++ {
				res[i] = f(data[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return res
}
