package population

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
)

const (
	RelativeTolerance = 0.001
	AbsoluteTolerance = 0.1
)

// Diagnostic 一项一致性检查的结果
type Diagnostic struct {
	Name      string  `json:"name" bson:"name"`
	Value     float64 `json:"value" bson:"value"` // 误差
	Tolerance float64 `json:"tolerance" bson:"tolerance"`
	OK        bool    `json:"ok" bson:"ok"`
}

func newDiagnostic(name string, value, tolerance float64) Diagnostic {
	return Diagnostic{Name: name, Value: value, Tolerance: tolerance, OK: value <= tolerance}
}

// Check 一致性诊断
// 功能：检查当期统计、政府记录与家庭截面之间的会计恒等式，超出容差的项以warn级别记录，不中断运行
// 参数：stats-当期统计，households-家庭截面，macro-当期宏观变量，fiscal-当期政府侧变量，wealthTaxThreshold-财富税起征点
// 返回：全部检查项
// 说明：必须在家庭提交当期记录之前调用，此时State()为当期记录，Lag(1)为上期记录
func Check(stats *Stats, households []*household.Household, macro entity.Macro, fiscal entity.Fiscal, wealthTaxThreshold float64) []Diagnostic {
	var wages, profits, shares, payments, penalties float64
	var offshore, domestic, deposits, declared, undeclared, assets float64
	var maxNetWealthError float64
	var thresholdViolations, misclassified int
	classNW := make(map[entity.HouseholdType]float64)
	capitalists := 0
	for _, h := range households {
		s := h.State()
		lag := h.Lag(1)
		wages += s.Wage
		profits += s.ProfitIncome
		payments += s.WealthTaxPayment
		penalties += s.Penalty
		offshore += s.OffshoreDeposits
		domestic += s.DomesticDeposits
		deposits += s.Deposits
		declared += s.DeclaredAssets
		undeclared += s.UndeclaredAssets
		assets += s.FinancialAssets
		classNW[h.Type()] += s.NetWealth
		if h.Type() == entity.Capitalist {
			capitalists++
			shares += h.Params().ProfitShare
		}
		// 低于起征点的家庭不应纳税
		visible := (lag.Deposits - lag.OffshoreDeposits) + (lag.FinancialAssets - lag.UndeclaredAssets)
		if s.WealthTaxOwed > 0 && visible <= wealthTaxThreshold {
			thresholdViolations++
		}
		if (h.Type() == entity.Worker) != (s.EmploymentStatus != entity.NotInLaborForce) {
			misclassified++
		}
		maxNetWealthError = math.Max(maxNetWealthError, math.Abs(s.NetWealth-(s.Deposits+s.FinancialAssets-s.Loans)))
	}

	res := make([]Diagnostic, 0, 10)
	if stats.Employed > 0 {
		res = append(res, newDiagnostic("wage_identity", math.Abs(wages-macro.TotalWages), AbsoluteTolerance))
	}
	if capitalists > 0 {
		res = append(res, newDiagnostic("profit_identity", math.Abs(profits-macro.TotalProfits), AbsoluteTolerance))
		res = append(res, newDiagnostic("profit_share_normalization", math.Abs(shares-1), RelativeTolerance))
	}
	res = append(res,
		newDiagnostic("wealth_tax_consistency",
			math.Abs(fiscal.WealthTaxRevenue-payments)+
				math.Abs(stats.WealthTaxRevenue-payments)+
				math.Abs(stats.WealthTaxFromDeposits+stats.WealthTaxFromAssets+stats.WealthTaxFromBorrowing-payments)+
				float64(thresholdViolations),
			AbsoluteTolerance),
		newDiagnostic("evasion_consistency",
			math.Abs(offshore+domestic-deposits)+
				math.Abs(declared+undeclared-assets)+
				math.Abs(stats.PenaltyRevenue-penalties),
			AbsoluteTolerance),
		newDiagnostic("class_integrity", float64(misclassified), 0),
		newDiagnostic("class_aggregation", relativeError(lo.Sum(lo.Values(classNW)), stats.NetWealth), RelativeTolerance),
		newDiagnostic("class_share_sum", classShareDeviation(stats), RelativeTolerance),
		newDiagnostic("net_wealth_identity", maxNetWealthError, AbsoluteTolerance),
	)
	for _, d := range res {
		if !d.OK {
			log.Warnf("t=%d consistency check %s failed: error %.6g > %.6g", stats.Period, d.Name, d.Value, d.Tolerance)
		}
	}
	return res
}

// relativeError |a-b|/max(|b|, 1)
func relativeError(a, b float64) float64 {
	return math.Abs(a-b) / math.Max(math.Abs(b), 1)
}

// classShareDeviation 各阶层收入、财富、消费份额之和与1的最大偏差，对应全国合计为0时跳过
func classShareDeviation(stats *Stats) float64 {
	var income, wealth, consumption float64
	for _, c := range stats.Classes {
		income += c.IncomeShare
		wealth += c.WealthShare
		consumption += c.ConsumptionShare
	}
	dev := 0.
	if stats.DisposableIncome > 0 {
		dev = math.Max(dev, math.Abs(income-1))
	}
	if stats.NetWealth > 0 {
		dev = math.Max(dev, math.Abs(wealth-1))
	}
	if stats.Expenses > 0 {
		dev = math.Max(dev, math.Abs(consumption-1))
	}
	return dev
}
