package household

import (
	"math"

	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/container"
)

const minEmployedSkill = 0.001

// Wage 工资收入
// 功能：就业工人分得工资总额
// 算法说明：
// 1. 非就业工人为0
// 2. 同质：W / 就业人数
// 3. 异质：W·skill / 就业者技能总和（下限0.001）
func Wage(typ entity.HouseholdType, status entity.EmploymentStatus, skill float64, c entity.Country, totalWages float64, heterogeneous bool) float64 {
	if typ != entity.Worker || status != entity.Employed {
		return 0
	}
	if heterogeneous {
		return totalWages * skill / math.Max(minEmployedSkill, c.TotalEmployedSkill)
	}
	if c.TotalEmployment <= 0 {
		return 0
	}
	return totalWages / float64(c.TotalEmployment)
}

// ProfitIncome 利润收入：资本家按份额分得利润总额
func ProfitIncome(typ entity.HouseholdType, share, totalProfits float64) float64 {
	if typ != entity.Capitalist {
		return 0
	}
	return totalProfits * share
}

// Benefits 失业救济
// 功能：失业工人平分救济总额，人数按上期失业家庭计
func Benefits(typ entity.HouseholdType, status entity.EmploymentStatus, effectiveBenefits float64, unemployed int32) float64 {
	if typ != entity.Worker || status == entity.Employed || unemployed <= 0 {
		return 0
	}
	return math.Max(0, effectiveBenefits/float64(unemployed))
}

// GrossIncome 税前收入：工资+利润+上期存款收益
func GrossIncome(wage, profit, laggedDepositReturn float64) float64 {
	return math.Max(0, wage+profit+laggedDepositReturn)
}

// DisposableIncome 可支配收入：税前-所得税+救济+转移支付
func DisposableIncome(gross, tax, benefits, transfer float64) float64 {
	return math.Max(0, gross-tax+benefits+transfer)
}

// RealIncome 名义值按CPI折算，CPI非正时为0
func RealIncome(nominal, cpi float64) float64 {
	if cpi <= 0 {
		return 0
	}
	return nominal / cpi
}

// averageIncomes 平均实际与名义可支配收入
// 说明：取滞后1到annual期中已存在的记录的平均值，没有历史时为0
func (h *Household) averageIncomes(annual int32) (avgReal, avgNominal float64) {
	avgReal = container.LagAverage(h.history, func(s State) float64 { return s.RealDisposableIncome }, int(annual), 1)
	avgNominal = container.LagAverage(h.history, func(s State) float64 { return s.DisposableIncome }, int(annual), 1)
	return
}
