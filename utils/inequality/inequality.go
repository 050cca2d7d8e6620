// 不平等与分位数计算：Gini、Theil、顶部/底部份额、Palma比率与线性插值分位数
package inequality

import (
	"math"
	"sort"

	"github.com/samber/lo"
)

const (
	// PalmaSentinel 底部40%份额接近0时Palma比率的返回值
	PalmaSentinel = 1e6

	// theilEpsilon Theil指数计算中值的下限，避免ln(0)
	theilEpsilon = 1e-10
	// nearZero 视为0的阈值
	nearZero = 1e-10
)

// Sorted 升序排列的样本
// 说明：对同一组样本计算多个统计量时只排序一次
type Sorted []float64

// NewSorted 复制并升序排列样本
func NewSorted(values []float64) Sorted {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	return s
}

// Sum 样本总和
func (s Sorted) Sum() float64 {
	return lo.Sum([]float64(s))
}

// Mean 样本均值，空样本返回0
func (s Sorted) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	return s.Sum() / float64(len(s))
}

// Percentile 线性插值分位数
// 功能：在位置p·(N-1)处对相邻两个顺序统计量线性插值
// 参数：p-分位点，超出[0,1]时截断
// 返回：分位数，空样本返回0
func (s Sorted) Percentile(p float64) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	p = lo.Clamp(p, 0, 1)
	pos := p * float64(n-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return s[lower]
	}
	frac := pos - float64(lower)
	return s[lower] + frac*(s[upper]-s[lower])
}

// Gini 基尼系数
// 功能：G = Σ(2i - N - 1)·x_(i) / (N·Σx)，i从1开始
// 返回：N<2或总和接近0时返回0
func (s Sorted) Gini() float64 {
	n := len(s)
	if n < 2 {
		return 0
	}
	total := s.Sum()
	if math.Abs(total) < nearZero {
		return 0
	}
	num := 0.
	for i, x := range s {
		num += float64(2*(i+1)-n-1) * x
	}
	return num / (float64(n) * total)
}

// Theil Theil-T指数
// 功能：T = (1/N)·Σ r_i·ln(r_i)，r_i = max(x_i, ε)/mean
// 说明：均值不大于ε时返回0；r_i接近0的项贡献为0而被跳过
func (s Sorted) Theil() float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	mean := s.Mean()
	if mean <= theilEpsilon {
		return 0
	}
	sum := 0.
	for _, x := range s {
		r := math.Max(x, theilEpsilon) / mean
		if r > nearZero {
			sum += r * math.Log(r)
		}
	}
	return sum / float64(n)
}

// TopShare 最高p比例个体持有的份额
// 说明：个体数取floor(N·p)，总和接近0时返回0
func (s Sorted) TopShare(p float64) float64 {
	total := s.Sum()
	if math.Abs(total) < nearZero {
		return 0
	}
	k := int(math.Floor(float64(len(s)) * lo.Clamp(p, 0, 1)))
	return lo.Sum([]float64(s[len(s)-k:])) / total
}

// BottomShare 最低p比例个体持有的份额
func (s Sorted) BottomShare(p float64) float64 {
	total := s.Sum()
	if math.Abs(total) < nearZero {
		return 0
	}
	k := int(math.Floor(float64(len(s)) * lo.Clamp(p, 0, 1)))
	return lo.Sum([]float64(s[:k])) / total
}

// Palma Palma比率：最高10%份额 / 最低40%份额
// 说明：最低40%份额接近0时返回PalmaSentinel
func (s Sorted) Palma() float64 {
	bottom := s.BottomShare(0.4)
	if math.Abs(bottom) < nearZero {
		return PalmaSentinel
	}
	return s.TopShare(0.1) / bottom
}

// Gini 对未排序样本计算基尼系数
func Gini(values []float64) float64 {
	return NewSorted(values).Gini()
}

// Theil 对未排序样本计算Theil指数
func Theil(values []float64) float64 {
	return NewSorted(values).Theil()
}

// Percentile 对未排序样本计算线性插值分位数
func Percentile(values []float64, p float64) float64 {
	return NewSorted(values).Percentile(p)
}

// TopShare 对未排序样本计算顶部份额
func TopShare(values []float64, p float64) float64 {
	return NewSorted(values).TopShare(p)
}

// BottomShare 对未排序样本计算底部份额
func BottomShare(values []float64, p float64) float64 {
	return NewSorted(values).BottomShare(p)
}

// Palma 对未排序样本计算Palma比率
func Palma(values []float64) float64 {
	return NewSorted(values).Palma()
}

// Summary 一组样本的分布统计
type Summary struct {
	N             int     `json:"n" bson:"n"`
	Total         float64 `json:"total" bson:"total"`
	Mean          float64 `json:"mean" bson:"mean"`
	Median        float64 `json:"median" bson:"median"`
	Gini          float64 `json:"gini" bson:"gini"`
	Theil         float64 `json:"theil" bson:"theil"`
	Top1Share     float64 `json:"top1_share" bson:"top1_share"`
	Top10Share    float64 `json:"top10_share" bson:"top10_share"`
	Bottom40Share float64 `json:"bottom40_share" bson:"bottom40_share"`
	Bottom50Share float64 `json:"bottom50_share" bson:"bottom50_share"`
	Palma         float64 `json:"palma" bson:"palma"`
}

// Summarize 计算样本的全部分布统计
// 功能：一次排序后计算总量、均值、中位数、Gini、Theil、顶部/底部份额与Palma比率
func Summarize(values []float64) Summary {
	s := NewSorted(values)
	return Summary{
		N:             len(s),
		Total:         s.Sum(),
		Mean:          s.Mean(),
		Median:        s.Percentile(0.5),
		Gini:          s.Gini(),
		Theil:         s.Theil(),
		Top1Share:     s.TopShare(0.01),
		Top10Share:    s.TopShare(0.1),
		Bottom40Share: s.BottomShare(0.4),
		Bottom50Share: s.BottomShare(0.5),
		Palma:         s.Palma(),
	}
}
