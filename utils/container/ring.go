package container

// Ring 定长滞后序列
// 功能：保存最近depth个已提交的记录，按滞后阶数读取
// 说明：Lag(1)为最近一次Push的记录，超出深度的记录被覆盖
type Ring[T any] struct {
	buf  []T
	head int // 下一次写入的位置
	size int
}

// NewRing 创建深度为depth的滞后序列（depth至少为1）
func NewRing[T any](depth int) *Ring[T] {
	if depth < 1 {
		depth = 1
	}
	return &Ring[T]{buf: make([]T, depth)}
}

// Len 当前保存的记录数
func (r *Ring[T]) Len() int {
	return r.size
}

// Push 提交一条新记录
func (r *Ring[T]) Push(v T) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// Lag 读取滞后k期的记录
// 返回：记录与是否存在；k<1或超出已保存范围时返回零值与false
func (r *Ring[T]) Lag(k int) (T, bool) {
	var zero T
	if k < 1 || k > r.size {
		return zero, false
	}
	i := (r.head - k + len(r.buf)) % len(r.buf)
	return r.buf[i], true
}

// Latest 最近一次提交的记录
func (r *Ring[T]) Latest() (T, bool) {
	return r.Lag(1)
}

// LagSum 滞后窗口求和
// 功能：对滞后from到from+n-1期中已存在的记录求和
// 返回：和与参与求和的记录数
func LagSum[T any](r *Ring[T], value func(T) float64, n, from int) (sum float64, count int) {
	for k := from; k < from+n; k++ {
		v, ok := r.Lag(k)
		if !ok {
			break
		}
		sum += value(v)
		count++
	}
	return
}

// LagAverage 滞后窗口平均
// 说明：只对已存在的记录求平均，没有记录时返回0
func LagAverage[T any](r *Ring[T], value func(T) float64, n, from int) float64 {
	sum, count := LagSum(r, value, n, from)
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// LagGrowth 滞后增长率
// 功能：计算(x[from] - x[from+n]) / x[from+n]
// 说明：任一记录不存在或分母为0时返回0
func LagGrowth[T any](r *Ring[T], value func(T) float64, n, from int) float64 {
	cur, ok1 := r.Lag(from)
	base, ok2 := r.Lag(from + n)
	if !ok1 || !ok2 {
		return 0
	}
	b := value(base)
	if b == 0 {
		return 0
	}
	return (value(cur) - b) / b
}
