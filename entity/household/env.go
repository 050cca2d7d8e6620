package household

import (
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
)

// Env 一期更新所需的全部外部输入
// 说明：由管理器在每个阶段开始时从任务上下文组装，阶段内只读
type Env struct {
	T            int32 // 当前期
	Annual       int32 // 每年的期数
	YearStart    bool  // t mod annual == 0
	AdjustPeriod bool  // t mod annual == 1

	Macro   entity.Macro
	Fiscal  entity.Fiscal
	Country entity.Country

	Heterogeneous bool
	Household     config.Household
	Employment    config.Employment
	Policy        config.Policy
}

// WealthTaxEnabled 是否启用财富税模块
func (e *Env) WealthTaxEnabled() bool {
	return e.Policy.TaxStructure >= config.WealthTaxStructure
}

// envFromContext 从任务上下文组装Env
func envFromContext(ctx entity.ITaskContext) *Env {
	c := ctx.Clock()
	rc := ctx.RuntimeConfig()
	return &Env{
		T:             c.T,
		Annual:        c.ANNUAL,
		YearStart:     c.IsYearStart(),
		AdjustPeriod:  c.IsAdjustPeriod(),
		Macro:         ctx.Economy().Macro(),
		Fiscal:        ctx.Economy().Fiscal(),
		Country:       ctx.Population().Country(),
		Heterogeneous: rc.C.Heterogeneous,
		Household:     rc.All.Household,
		Employment:    rc.All.Employment,
		Policy:        rc.All.Policy,
	}
}
