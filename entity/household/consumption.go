package household

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
)

const (
	minReferenceIncome = 0.01
	minMedianIncome    = 0.01
	minPrice           = 0.01
	maxImportsShare    = 0.95
)

// ReferenceIncome 参考收入（消费棘轮）
// 功能：收入高于上期参考收入时以λ⁺向上调整，否则以λ⁻向下调整
// 参数：mode-习惯模式（0时参考收入等于当期收入），y-平均实际收入，prev-上期参考收入
// 返回：参考收入，下限0.01
func ReferenceIncome(mode int32, y, prev, lambdaUp, lambdaDown float64) float64 {
	r := y
	if mode != 0 {
		lambda := lambdaDown
		if y > prev {
			lambda = lambdaUp
		}
		r = prev + lambda*(y-prev)
	}
	return math.Max(minReferenceIncome, r)
}

// IncomePercentile 相对收入位置
// 功能：x = r/(1+r)，r = y/中位数；中位数不大于0.01时r=1
func IncomePercentile(y, median float64) float64 {
	ratio := 1.
	if median > minMedianIncome {
		ratio = y / median
	}
	return ratio / (1 + ratio)
}

// Propensity 边际消费倾向
// 功能：广义logistic基础倾向加上习惯项
// 参数：p-曲线参数，x-相对收入位置，mode-习惯模式，beta-习惯持续性，y-平均实际收入，ref-参考收入
// 算法说明：
// 1. base = (1 + exp(k·(a·x - b)))^(-1/ν)，|ν|≤0.001时取1/ν=1
// 2. 习惯模式非0且ref>0.01时加上β·max(0, 1 - y/ref)
// 3. 结果不小于0，不设上限
func Propensity(p config.Propensity, x float64, mode int32, beta, y, ref float64) float64 {
	invNu := 1.
	if math.Abs(p.Asymmetry) > 0.001 {
		invNu = 1 / p.Asymmetry
	}
	base := math.Pow(1+math.Exp(p.Steepness*(p.Slope*x-p.Shift)), -invNu)
	if mode != 0 && ref > minReferenceIncome {
		base += beta * math.Max(0, 1-y/ref)
	}
	return math.Max(0, base)
}

// AutonomousConsumption 实际自主消费
// 功能：年初按质量增长调整：prev·(1 + adj·g)，其余期沿用上期
func AutonomousConsumption(prev, adjustment, qualityGrowth float64, yearStart bool) float64 {
	if !yearStart {
		return prev
	}
	return math.Max(0, prev*(1+adjustment*qualityGrowth))
}

// ImportsShare 进口占消费的比例
// 功能：share = clamp(m·ρ^ε, 0, 0.95)
// 算法说明：
// 1. 相对价格ρ = 上期国内价格 / (外国价格·汇率)，分母不大于0.01时ρ=1
// 2. 可支配比例d = max(0, (y - 自主消费)/y)，y不大于0.01时d=0
// 3. 弹性ε = clamp(2 - 1.5·d, 0.5, 2)
func ImportsShare(m, laggedDomesticPrice, foreignPrice, exchangeRate, y, autonomous float64) float64 {
	ratio := 1.
	if fx := foreignPrice * exchangeRate; fx > minPrice {
		ratio = laggedDomesticPrice / fx
	}
	disc := 0.
	if y > 0.01 {
		disc = math.Max(0, (y-autonomous)/y)
	}
	elasticity := lo.Clamp(2-1.5*disc, 0.5, 2)
	return lo.Clamp(m*math.Pow(ratio, elasticity), 0, maxImportsShare)
}

// DesiredConsumption 意愿实际消费
// 返回：国内部分 max(0, y·c·(1-s) + A)，进口部分 max(0, y·c·s)
func DesiredConsumption(y, propensity, importsShare, autonomous float64) (domestic, imported float64) {
	domestic = math.Max(0, y*propensity*(1-importsShare)+autonomous)
	imported = math.Max(0, y*propensity*importsShare)
	return
}

// Allocate 国内优先的支出分配
// 功能：在名义支出上限内先满足国内意愿消费，再满足进口意愿消费
// 参数：budget-名义支出上限，desDom/desImp-意愿实际消费，pDom/pImp-价格（下限0.01）
// 返回：实际国内需求与进口需求
func Allocate(budget, desDom, desImp, pDom, pImp float64) (domestic, imported float64) {
	pDom = math.Max(minPrice, pDom)
	pImp = math.Max(minPrice, pImp)
	budget = math.Max(0, budget)
	domestic = math.Min(desDom, budget/pDom)
	rest := math.Max(0, budget-domestic*pDom)
	imported = math.Min(desImp, rest/pImp)
	return
}

// EffectiveConsumption 有效消费
// 功能：国内需求按上期需求满足率实现；未满足的国内需求按比例由进口补足
// 返回：有效国内实际消费与有效进口实际消费
func EffectiveConsumption(domDemand, impDemand, laggedDemandMet, demandMet, byImports float64) (domestic, imported float64) {
	domestic = domDemand * laggedDemandMet
	imported = (1-demandMet)*byImports*domDemand + impDemand
	return
}
