// 随机数引擎，包装了golang.org/x/exp/rand，所有随机抽取共用同一个序列
package randengine

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Engine 随机数引擎
// 功能：提供单一随机序列上的均匀、正态、对数正态、Beta与q指数分布抽样
// 说明：模拟结果的可复现性依赖于固定的抽取顺序，只能在顺序阶段调用
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 参数：seed-随机数种子，offset-种子偏移量
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改配置主体的情况下调整随机数序列
func New(seed, offset uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + offset))}
}

// Uniform 在[lo, hi)上均匀抽样
func (e *Engine) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*e.Float64()
}

// Normal 正态分布抽样
func (e *Engine) Normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: e.Rand}.Rand()
}

// LogNormal 对数正态分布抽样
// 参数：mu, sigma-对应正态分布的均值与标准差
func (e *Engine) LogNormal(mu, sigma float64) float64 {
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: e.Rand}.Rand()
}

// Beta Beta分布抽样
// 说明：参数非正时分布无定义，返回均值近似值0.5
func (e *Engine) Beta(alpha, beta float64) float64 {
	if alpha <= 0 || beta <= 0 {
		return 0.5
	}
	return distuv.Beta{Alpha: alpha, Beta: beta, Src: e.Rand}.Rand()
}

// QExponential q指数分布抽样
// 功能：逆变换抽样生成q指数分布随机数
// 参数：q-形状参数，lambda-尺度参数
// 算法说明：
// 1. u ~ U(0,1)
// 2. q≈1时退化为指数分布：-λ·ln(1-u)
// 3. 否则：|λ/(1-q)·((1-u)^(1-q) - 1)|
func (e *Engine) QExponential(q, lambda float64) float64 {
	return QExponentialQuantile(e.Float64(), q, lambda)
}

// QExponentialQuantile q指数分布的逆变换
func QExponentialQuantile(u, q, lambda float64) float64 {
	if math.Abs(q-1) < 1e-10 {
		return -lambda * math.Log(1-u)
	}
	return math.Abs(lambda / (1 - q) * (math.Pow(1-u, 1-q) - 1))
}
