package household

import (
	"math"

	"github.com/samber/lo"
)

const settledRemainder = 0.001

// WealthTaxOwed 应缴财富税
// 功能：max(0, (上期境内存款 + 上期申报资产 - 起征点)·税率)
// 参数：lagDeposits/lagOffshore-上期存款与离岸存款，lagAssets/lagUndeclared-上期资产与隐匿资产
// 说明：贷款不从税基中扣除
func WealthTaxOwed(lagDeposits, lagOffshore, lagAssets, lagUndeclared, threshold, rate float64) float64 {
	base := (lagDeposits - lagOffshore) + (lagAssets - lagUndeclared)
	return math.Max(0, (base-threshold)*rate)
}

// WealthTaxSources 财富税的资金来源
type WealthTaxSources struct {
	FromDeposits  float64
	FromAssets    float64
	FromBorrowing float64
}

// Total 三个来源之和
func (s WealthTaxSources) Total() float64 {
	return s.FromDeposits + s.FromAssets + s.FromBorrowing
}

// PayWealthTax 财富税支付来源分解
// 功能：先用可动用存款，再在出售资产与借款之间按负债空间分配
// 参数：owed-应缴税额，lagDeposits-上期存款，liq-流动性偏好，maxDebtRate-当期最大负债率，lagDebtRate-上期负债率，lagAssets-上期金融资产
// 算法说明：
// 1. 存款部分 = min(应缴, max(0, 上期存款·(1 - 流动性偏好)))
// 2. 余额不大于0.001时结束，该余额不再支付
// 3. 负债空间h = clamp((最大负债率 - 上期负债率)/最大负债率, 0, 1)，最大负债率不大于0.001时h=0
// 4. 资产部分 = min(余额·(1-h), 上期资产)，其余由借款支付
// 说明：借款部分不受贷款上限约束；除不大于0.001的余额外，三部分之和等于应缴税额
func PayWealthTax(owed, lagDeposits, liq, maxDebtRate, lagDebtRate, lagAssets float64) WealthTaxSources {
	var s WealthTaxSources
	if owed <= 0 {
		return s
	}
	s.FromDeposits = math.Min(owed, math.Max(0, lagDeposits-lagDeposits*liq))
	rem := owed - s.FromDeposits
	if rem <= settledRemainder {
		return s
	}
	headroom := 0.
	if maxDebtRate > minMaxDebtRateBase {
		headroom = lo.Clamp((maxDebtRate-lagDebtRate)/maxDebtRate, 0, 1)
	}
	s.FromAssets = math.Min(rem*(1-headroom), math.Max(0, lagAssets))
	s.FromBorrowing = rem - s.FromAssets
	return s
}

// Transfer 转移支付：有资格的家庭平分预算
func Transfer(enabled, eligible bool, budget float64, eligibleCount int32) float64 {
	if !enabled || !eligible || eligibleCount <= 0 {
		return 0
	}
	return math.Max(0, budget/float64(eligibleCount))
}
