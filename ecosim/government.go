package ecosim

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
)

// Government 代表政府
// 功能：确定失业救济与转移支付预算、动态审计概率，记录当期财富税与上期其他税收
type Government struct {
	policy config.Policy
	fiscal entity.Fiscal
}

// NewGovernment 创建政府，审计概率从基础值开始
func NewGovernment(policy config.Policy) *Government {
	return &Government{
		policy: policy,
		fiscal: entity.Fiscal{AuditProbability: lo.Clamp(policy.AuditProbability, 0, 1)},
	}
}

// Fiscal 当期政府侧变量
func (g *Government) Fiscal() entity.Fiscal {
	return g.fiscal
}

// wealthTaxEnabled 是否启用财富税模块
func (g *Government) wealthTaxEnabled() bool {
	return g.policy.TaxStructure >= config.WealthTaxStructure
}

// Prepare 准备阶段
// 功能：根据上期家庭部门汇总确定当期失业救济与审计概率
// 参数：t-当前期，fb-上期汇总
// 算法说明：
// 1. 意愿救济 = 上期失业人数·替代率·上期平均工资；实际救济 = 意愿·预算比例
// 2. 审计概率 p_t = clamp(p_base + (1-δ)(p_{t-1} - p_base) + η·e_{t-1}, 0, 1)，η不为正或t≤1时取p_base
// 3. 当期财富税收入与转移支付预算清零，等待财富税阶段汇总
func (g *Government) Prepare(t int32, fb entity.Feedback) {
	p := g.policy
	f := &g.fiscal
	f.DesiredBenefits = 0
	if fb.Valid && fb.Employed > 0 {
		f.DesiredBenefits = float64(fb.Unemployed) * p.BenefitRate * fb.Wages / float64(fb.Employed)
	}
	f.EffectiveBenefits = f.DesiredBenefits * p.BenefitBudgetShare

	base := lo.Clamp(p.AuditProbability, 0, 1)
	if p.EnforcementSensitivity <= 0 || t <= 1 || !fb.Valid {
		f.AuditProbability = base
	} else {
		f.AuditProbability = lo.Clamp(
			base+(1-p.EnforcementDecay)*(f.AuditProbability-base)+p.EnforcementSensitivity*fb.EvasionRate,
			0, 1,
		)
	}

	f.IncomeTaxRevenue = fb.IncomeTax
	f.WealthTaxRevenue = 0
	f.PenaltyRevenue = fb.PenaltyRevenue
	f.TaxGap = fb.TaxGap
	f.PotentialWealthTax = fb.WealthTaxRevenue + fb.TaxGap
	f.DesiredTransfers, f.EffectiveTransfers = 0, 0
}

// SetWealthTaxRevenue 记录当期财富税收入并确定转移支付预算
func (g *Government) SetWealthTaxRevenue(v float64) {
	g.fiscal.WealthTaxRevenue = v
	if !g.wealthTaxEnabled() {
		g.fiscal.DesiredTransfers, g.fiscal.EffectiveTransfers = 0, 0
		return
	}
	g.fiscal.DesiredTransfers = v
	g.fiscal.EffectiveTransfers = v * g.policy.TransferBudgetShare
}
