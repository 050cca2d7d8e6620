package container

import (
	"sync"
)

// IIncrementalItem 支持增量更新的元素接口
// 功能：元素记录自己在数组中的位置，增量操作据此定位
type IIncrementalItem interface {
	Index() int         // 获取元素的索引
	SetIndex(index int) // 设置元素的索引
}

// IncrementalItemBase 增量元素基类
// 说明：嵌入即可实现IIncrementalItem接口
type IncrementalItemBase struct {
	index int // 元素在数组中的索引
}

// Index 获取元素的索引
func (b *IncrementalItemBase) Index() int {
	return b.index
}

// SetIndex 设置元素的索引
func (b *IncrementalItemBase) SetIndex(index int) {
	b.index = index
}

// IncrementalArray 增量数组
// 功能：收集待添加与待删除的元素，在Prepare时一次性应用
// 说明：家庭池在运行前按目标规模调整一次，之后冻结；只删除尾部元素时保持其余元素的相对顺序
type IncrementalArray[T IIncrementalItem] struct {
	data   []T        // 主数据数组
	add    []T        // 待添加的元素列表
	remove []T        // 待删除的元素列表
	mtx    sync.Mutex // 保护add与remove
}

// NewIncrementalArray 创建增量数组
// 参数：initial-初始元素（按顺序写入索引）
// 返回：新创建的增量数组指针
func NewIncrementalArray[T IIncrementalItem](initial ...T) *IncrementalArray[T] {
	a := &IncrementalArray[T]{
		data:   make([]T, 0, len(initial)),
		add:    make([]T, 0),
		remove: make([]T, 0),
	}
	for i, x := range initial {
		x.SetIndex(i)
		a.data = append(a.data, x)
	}
	return a
}

// Len 已生效的元素数量
func (a *IncrementalArray[T]) Len() int {
	return len(a.data)
}

// Pending 待生效的元素数量变化（新增数-删除数）
func (a *IncrementalArray[T]) Pending() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return len(a.add) - len(a.remove)
}

// Data 获取已生效的数据
// 说明：返回内部切片，调用方不应修改
func (a *IncrementalArray[T]) Data() []T {
	return a.data
}

// Add 增加元素（等到Prepare时才会真正增加）
func (a *IncrementalArray[T]) Add(value T) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.add = append(a.add, value)
}

// Remove 删除元素（等到Prepare时才会真正删除）
func (a *IncrementalArray[T]) Remove(value T) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.remove = append(a.remove, value)
}

// Resize 将数组规模调整到n
// 功能：不足时用factory生成新元素补齐，超出时从尾部删除
// 参数：n-目标规模，factory-生成第i个新增元素的函数
// 说明：操作同样延迟到Prepare生效
func (a *IncrementalArray[T]) Resize(n int, factory func(i int) T) {
	cur := len(a.data)
	switch {
	case n > cur:
		for i := 0; i < n-cur; i++ {
			a.Add(factory(i))
		}
	case n < cur:
		for i := cur - 1; i >= n; i-- {
			a.Remove(a.data[i])
		}
	}
}

// Prepare 执行增量操作
// 功能：统一执行所有待处理的添加和删除操作
// 算法说明：
// 1. 如果添加 >= 删除：用新增元素填入被删除的位置，剩余新增元素追加到末尾
// 2. 如果删除 > 添加：先用新增元素填入部分删除位置，再从尾部搬运元素填补剩余位置，最后截断
// 3. 清空待处理列表
func (a *IncrementalArray[T]) Prepare() {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if len(a.add) >= len(a.remove) {
		for i, x := range a.remove {
			ind := x.Index()
			a.data[ind] = a.add[i]
			a.data[ind].SetIndex(ind)
		}
		rest := a.add[len(a.remove):]
		for i, x := range rest {
			x.SetIndex(len(a.data) + i)
		}
		a.data = append(a.data, rest...)
	} else {
		for i, x := range a.add {
			ind := a.remove[i].Index()
			a.data[ind] = x
			a.data[ind].SetIndex(ind)
		}
		l1 := len(a.add)
		l2 := len(a.remove) - l1
		l3 := len(a.data) - l2
		for i := 0; i < l2; i++ {
			// 从后面拿一项填过来
			ind := a.remove[l1+i].Index()
			a.data[ind] = a.data[l3+i]
			a.data[ind].SetIndex(ind)
		}
		a.data = a.data[:l3]
	}

	a.add = []T{}
	a.remove = []T{}
}
