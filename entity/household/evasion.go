package household

import (
	"math"

	"github.com/samber/lo"
)

const minPenaltyBase = 0.01

// FlightDecision 资本外逃决策
// 功能：逃税收益 propensity·θ 大于境内外利差 r_dom - r_off 时，把上期境内存款全部转移到离岸
// 参数：liable-财富税启用且上期净财富超过起征点，lagDomestic-上期境内存款，propensity-逃税倾向，rate-财富税率
// 返回：是否外逃与外逃金额
func FlightDecision(liable bool, lagDomestic, propensity, rate, domesticRate, offshoreRate float64) (bool, float64) {
	if !liable || lagDomestic <= 0 || propensity <= 0 {
		return false, 0
	}
	if propensity*rate > domesticRate-offshoreRate {
		return true, lagDomestic
	}
	return false, 0
}

// RepatriationInputs 回流计算所需的当期支出与上期存量
type RepatriationInputs struct {
	LagOffshore     float64
	LagDomestic     float64
	DesiredExpenses float64
	Obligations     float64
	WealthTaxOwed   float64
	Penalty         float64
	Propensity      float64
	Rate            float64 // 财富税率θ
	DomesticRate    float64
	OffshoreRate    float64
}

// Repatriation 离岸存款回流
// 功能：回流额 = min(max(流动性缺口, 自主回流), 上期离岸存款)
// 算法说明：
// 1. 流动性缺口 = max(0, 意愿支出+财务负担+应缴财富税+罚款-上期境内存款)
// 2. 自主回流 = 上期离岸存款·max(0, (r_dom - r_off) - propensity·θ)
// 3. 上期无离岸存款时为0
func Repatriation(in RepatriationInputs) float64 {
	if in.LagOffshore <= 0 {
		return 0
	}
	shortfall := math.Max(0, in.DesiredExpenses+in.Obligations+in.WealthTaxOwed+in.Penalty-in.LagDomestic)
	discretionary := in.LagOffshore * math.Max(0, (in.DomesticRate-in.OffshoreRate)-in.Propensity*in.Rate)
	return math.Min(math.Max(shortfall, discretionary), in.LagOffshore)
}

// SplitDeposits 当期存款在离岸与境内之间的划分
// 功能：离岸存款 = 上期离岸 + 离岸利息 - 回流 + 外逃，整体不超过当期总存款
// 参数：deposits-当期总存款，lagOffshore-上期离岸存款，flight-意愿外逃额，interest-离岸利息，repatriation-回流额
// 返回：离岸存款、境内存款与实际外逃额
// 算法说明：
// 1. 留存离岸部分 = clamp(上期离岸 + 利息 - 回流, 0, 总存款)
// 2. 实际外逃额 = min(意愿外逃额, 总存款 - 留存离岸部分)
// 3. 境内存款 = 总存款 - 离岸存款
func SplitDeposits(deposits, lagOffshore, flight, interest, repatriation float64) (offshore, domestic, moved float64) {
	total := math.Max(0, deposits)
	carried := lo.Clamp(lagOffshore+interest-repatriation, 0, total)
	moved = lo.Clamp(flight, 0, total-carried)
	offshore = carried + moved
	return offshore, total - offshore, moved
}

// HideFraction 资产隐匿比例 = clamp(propensity·(1 - p·π), 0, 1)
// 说明：威慑p·π不小于1时不隐匿
func HideFraction(propensity, auditProbability, penaltyRate float64) float64 {
	deterrence := auditProbability * penaltyRate
	if deterrence >= 1 {
		return 0
	}
	return lo.Clamp(propensity*(1-deterrence), 0, 1)
}

// Penalty 审计罚款 = π·θ·隐匿资产（被审计且隐匿资产不小于0.01）
func Penalty(audited bool, undeclared, penaltyRate, rate float64) float64 {
	if !audited || undeclared < minPenaltyBase {
		return 0
	}
	return penaltyRate * rate * undeclared
}
