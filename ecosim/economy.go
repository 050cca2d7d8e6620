package ecosim

import (
	"math"
	"sync"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
)

// Economy 家庭部门之外的宏观环境
// 功能：形成每期国家与部门视角、央行与金融部门利率、外部部门价格，以及政府预算
// 说明：需求由上期家庭实际国内消费与外生自主需求闭合，情景输入中给出的序列覆盖内部计算值
type Economy struct {
	c        config.Economy
	scenario map[int32]entity.ScenarioPoint

	macro            entity.Macro
	gov              *Government
	autonomousDemand float64 // 当期实际自主需求（投资+政府）

	mu sync.RWMutex
}

// NewEconomy 创建宏观环境
// 参数：rc-运行时配置，scenario-情景序列（可为空）
// 说明：第0期宏观变量由初始值给出，供构建家庭与第1期的滞后值使用
func NewEconomy(rc *config.RuntimeConfig, scenario []entity.ScenarioPoint) *Economy {
	c := rc.All.Economy
	init := c.Initial
	p := lo.Ternary(init.PriceIndex > 0, init.PriceIndex, 1.)
	cu := lo.Clamp(init.CapacityUtilization, 0.01, 1)
	output := p * init.RealDemand
	wages := c.WageShare * output
	e := &Economy{
		c:                c,
		scenario:         lo.KeyBy(scenario, func(s entity.ScenarioPoint) int32 { return s.Period }),
		gov:              NewGovernment(rc.All.Policy),
		autonomousDemand: init.AutonomousDemand,
	}
	e.macro = entity.Macro{
		Period:              rc.C.Step.Start,
		CPI:                 p,
		DomesticPrice:       p,
		LaggedDomesticPrice: p,
		ForeignPrice:        c.ForeignPrice,
		ExchangeRate:        c.ExchangeRate,
		CapacityUtilization: cu,
		RealDemand:          init.RealDemand,
		Capacity:            init.RealDemand / cu,
		NominalOutput:       output,
		LaggedNominalOutput: output,
		TotalWages:          wages,
		TotalProfits:        (output - wages) * c.ProfitDistribution,
		CapitalStock:        init.CapitalStock,
		QualityGrowth:       c.QualityGrowth,
		AssetInflation:      c.AssetInflation,
		DemandMet:           1,
		LaggedDemandMet:     1,
		DemandMetByImports:  c.DemandMetByImports,
	}
	e.setRates(&e.macro, c.BaseInterestRate, c.ExternalInterestRate)
	if len(scenario) > 0 {
		log.Infof("scenario input covers %d periods", len(scenario))
	}
	return e
}

func (e *Economy) setRates(m *entity.Macro, base, external float64) {
	m.BaseRate = base
	m.DepositRate = base * e.c.DepositSpread
	m.ShortTermRate = base * (1 + e.c.LoanSpread)
	m.ExternalRate = external
}

// Prepare 准备阶段
// 功能：由上期宏观变量与家庭部门汇总形成当期宏观变量，然后准备政府预算
// 参数：t-当前期，fb-上期家庭部门汇总
// 算法说明：
// 1. 价格按通胀率增长，CPI等于国内消费品价格
// 2. 产能与自主需求按各自增长率增长
// 3. 实际需求 = 上期家庭实际国内消费 + 自主需求，尚无汇总时沿用初始需求
// 4. CU = clamp(需求/产能, 0, 1)，名义产出 = P·需求，工资 = 工资份额·产出，分配利润 = (产出-工资)·分配比例
// 5. 需求满足率 = min(1, 产能/需求)，资本存量随价格调整
// 6. 情景输入覆盖
func (e *Economy) Prepare(t int32, fb entity.Feedback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.macro
	c := e.c
	m := prev
	m.Period = t
	m.LaggedDomesticPrice = prev.DomesticPrice
	m.LaggedNominalOutput = prev.NominalOutput
	m.LaggedDemandMet = prev.DemandMet

	m.DomesticPrice = prev.DomesticPrice * (1 + c.Inflation)
	m.CPI = m.DomesticPrice
	m.ForeignPrice = prev.ForeignPrice * (1 + c.ForeignInflation)

	m.Capacity = prev.Capacity * (1 + c.CapacityGrowth)
	e.autonomousDemand *= 1 + c.AutonomousGrowth
	household := prev.RealDemand - e.autonomousDemand/(1+c.AutonomousGrowth)
	if fb.Valid {
		household = fb.RealDomesticConsumption
	}
	m.RealDemand = math.Max(0, household) + e.autonomousDemand
	m.CapacityUtilization = 0
	if m.Capacity > 0 {
		m.CapacityUtilization = lo.Clamp(m.RealDemand/m.Capacity, 0, 1)
	}
	m.NominalOutput = m.DomesticPrice * m.RealDemand
	m.TotalWages = c.WageShare * m.NominalOutput
	m.TotalProfits = (m.NominalOutput - m.TotalWages) * c.ProfitDistribution
	m.DemandMet = 1
	if m.RealDemand > 0 {
		m.DemandMet = math.Min(1, m.Capacity/m.RealDemand)
	}
	if prev.DomesticPrice > 0 {
		m.CapitalStock = prev.CapitalStock * m.DomesticPrice / prev.DomesticPrice
	}
	m.QualityGrowth = c.QualityGrowth
	m.AssetInflation = c.AssetInflation
	m.DemandMetByImports = c.DemandMetByImports
	e.setRates(&m, c.BaseInterestRate, c.ExternalInterestRate)

	if s, ok := e.scenario[t]; ok {
		e.apply(&m, s)
	}
	e.macro = m
	e.gov.Prepare(t, fb)
	log.Debugf("t=%d demand=%.2f cu=%.3f wages=%.2f profits=%.2f", t, m.RealDemand, m.CapacityUtilization, m.TotalWages, m.TotalProfits)
}

// apply 用情景输入覆盖内部计算值，利率覆盖后重新计算派生利率
func (e *Economy) apply(m *entity.Macro, s entity.ScenarioPoint) {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&m.DomesticPrice, s.DomesticPrice)
	m.CPI = m.DomesticPrice
	set(&m.CPI, s.CPI)
	set(&m.CapacityUtilization, s.CapacityUtilization)
	m.CapacityUtilization = lo.Clamp(m.CapacityUtilization, 0, 1)
	set(&m.TotalWages, s.TotalWages)
	set(&m.TotalProfits, s.TotalProfits)
	set(&m.CapitalStock, s.CapitalStock)
	set(&m.DemandMet, s.DemandMet)
	set(&m.ForeignPrice, s.ForeignPrice)
	set(&m.ExchangeRate, s.ExchangeRate)
	set(&m.AssetInflation, s.AssetInflation)
	set(&m.QualityGrowth, s.QualityGrowth)
	base, external := m.BaseRate, m.ExternalRate
	set(&base, s.BaseRate)
	set(&external, s.ExternalRate)
	e.setRates(m, base, external)
}

// SetWealthTaxRevenue 记录当期财富税收入并确定转移支付预算
func (e *Economy) SetWealthTaxRevenue(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gov.SetWealthTaxRevenue(v)
}

// Macro 当期宏观变量
func (e *Economy) Macro() entity.Macro {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.macro
}

// Fiscal 当期政府侧变量
func (e *Economy) Fiscal() entity.Fiscal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gov.Fiscal()
}
