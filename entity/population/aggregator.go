package population

import (
	"math"

	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/inequality"
)

const (
	minMedianIncome  = 0.01
	minTaxPayment    = 0.01
	minEvadedBalance = 0.01
)

// Aggregator 人口汇总器
// 功能：在家庭更新的各阶段之间扫描家庭截面，形成国家层面变量与统计
// 说明：所有扫描都在顺序阶段执行，扫描结果在下一阶段只读
type Aggregator struct {
	rc      *config.RuntimeConfig
	hm      *household.HouseholdManager
	country entity.Country
	latest  *Stats
}

// NewAggregator 创建汇总器
func NewAggregator(rc *config.RuntimeConfig, hm *household.HouseholdManager) *Aggregator {
	return &Aggregator{rc: rc, hm: hm}
}

// Country 当期国家层面变量
func (a *Aggregator) Country() entity.Country {
	return a.country
}

// Latest 最近一期的统计，尚未汇总时为nil
func (a *Aggregator) Latest() *Stats {
	return a.latest
}

// PreScan 预扫描
// 功能：基于上期状态计算劳动力、失业与就业家庭数、收入中位数与转移支付资格线，并同时写入每个家庭的资格标记
// 算法说明：
// 1. 一次遍历统计就业状态并收集上期平均实际收入
// 2. 一次排序得到中位数（下限0.01）与目标分位数
// 3. 上期平均实际收入不高于资格线的家庭有资格；未启用财富税时全部清除
func (a *Aggregator) PreScan() {
	hs := a.hm.Data()
	c := entity.Country{Households: int32(len(hs))}
	incomes := make([]float64, len(hs))
	workers := int32(0)
	for i, h := range hs {
		lag := h.Lag(1)
		incomes[i] = lag.AvgRealIncome
		if h.Type() != entity.Worker {
			continue
		}
		workers++
		switch lag.EmploymentStatus {
		case entity.Unemployed:
			c.UnemployedHouseholds++
		default:
			c.EmployedHouseholds++
		}
	}
	c.LaborForce = max(1, workers)

	sorted := inequality.NewSorted(incomes)
	c.MedianIncome = math.Max(minMedianIncome, sorted.Percentile(0.5))
	enabled := a.rc.WealthTaxEnabled()
	if enabled {
		c.TransferThreshold = sorted.Percentile(a.rc.TransferTargetPercentile())
	}
	for i, h := range hs {
		eligible := enabled && incomes[i] <= c.TransferThreshold
		h.SetTransferEligible(eligible)
		if eligible {
			c.TransferEligible++
		}
	}
	a.country = c
}

// EmploymentScan 就业扫描：当期就业人数与就业者技能总和
func (a *Aggregator) EmploymentScan() {
	a.country.TotalEmployment = 0
	a.country.TotalEmployedSkill = 0
	for _, h := range a.hm.Data() {
		if h.Type() == entity.Worker && h.State().EmploymentStatus == entity.Employed {
			a.country.TotalEmployment++
			a.country.TotalEmployedSkill += h.Params().Skill
		}
	}
}

// TaxScan 财富税扫描：收入、纳税人数与来源构成
func (a *Aggregator) TaxScan() {
	c := &a.country
	c.WealthTaxRevenue, c.WealthTaxpayers = 0, 0
	c.WealthTaxFromDeposits, c.WealthTaxFromAssets, c.WealthTaxFromBorrowing = 0, 0, 0
	for _, h := range a.hm.Data() {
		s := h.State()
		c.WealthTaxRevenue += s.WealthTaxPayment
		c.WealthTaxFromDeposits += s.WealthTaxFromDeposits
		c.WealthTaxFromAssets += s.WealthTaxFromAssets
		c.WealthTaxFromBorrowing += s.WealthTaxFromBorrowing
		if s.WealthTaxPayment > minTaxPayment {
			c.WealthTaxpayers++
		}
	}
}

// Feedback 最近一期统计中供外部部门使用的汇总
func (a *Aggregator) Feedback() entity.Feedback {
	s := a.latest
	if s == nil {
		return entity.Feedback{}
	}
	return entity.Feedback{
		Valid:                   true,
		RealDomesticConsumption: s.RealDomesticConsumption,
		Wages:                   s.Wages,
		Employed:                s.Employed,
		Unemployed:              s.Unemployed,
		IncomeTax:               s.IncomeTax,
		WealthTaxRevenue:        s.WealthTaxRevenue,
		PenaltyRevenue:          s.PenaltyRevenue,
		TaxGap:                  s.TaxGap,
		EvasionRate:             ratio(s.OffshoreDeposits+s.UndeclaredAssets, s.Deposits+s.FinancialAssets),
	}
}

// ratio 分母不为正时返回0
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
