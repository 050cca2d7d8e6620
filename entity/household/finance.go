package household

import (
	"math"

	"github.com/samber/lo"
)

const (
	minMaxDebtRate     = 0.05
	maxMaxDebtRate     = 1.
	defaultDebtRate    = 1.1 // 分母过小时的负债率
	maxDepositsStock   = 1e12
	minDenominator     = 0.01
	minMaxDebtRateBase = 0.001
)

// MaxDebtRate 最大负债率
// 功能：年度调整期按可支配收入年增长率的符号上调或下调，其余期沿用上期；结果截断到[0.05, 1]
func MaxDebtRate(prev, adjustment, growth float64, adjustPeriod bool) float64 {
	v := prev
	if adjustPeriod {
		switch {
		case growth > 0:
			v += adjustment
		case growth < 0:
			v -= adjustment
		}
	}
	return lo.Clamp(v, minMaxDebtRate, maxMaxDebtRate)
}

// DebtRate 负债率 = 贷款 / (存款 + 平均名义收入)
// 说明：分母不大于0.01时返回1.1
func DebtRate(loans, deposits, avgNominalIncome float64) float64 {
	d := deposits + avgNominalIncome
	if d <= minDenominator {
		return defaultDebtRate
	}
	return loans / d
}

// InterestRate 家庭贷款利率 = max(0, (1 + 平均负债率·风险溢价)·短期利率)
func InterestRate(avgDebtRate, riskPremium, shortTermRate float64) float64 {
	return math.Max(0, (1+avgDebtRate*riskPremium)*shortTermRate)
}

// RetainedDeposits 保留存款 = clamp(平均名义收入·流动性偏好, 0, 上期存款+上期可支配收入)
func RetainedDeposits(avgNominalIncome, liquidityPreference, laggedDeposits, laggedDisposable float64) float64 {
	return lo.Clamp(avgNominalIncome*liquidityPreference, 0, math.Max(0, laggedDeposits+laggedDisposable))
}

// InternalFunds 内部资金 = max(0, 上期存款+上期可支配收入-保留存款-财务负担)
func InternalFunds(laggedDeposits, laggedDisposable, retained, obligations float64) float64 {
	return math.Max(0, laggedDeposits+laggedDisposable-retained-obligations)
}

// MaxLoans 可新增贷款上限
// 功能：max(0, 最大负债率·(上期存款+上期可支配收入+上期金融资产) - 上期贷款)
// 参数：laggedAssets-工人传0
func MaxLoans(maxDebtRate, laggedDeposits, laggedDisposable, laggedAssets, laggedLoans float64) float64 {
	return math.Max(0, maxDebtRate*(laggedDeposits+laggedDisposable+laggedAssets)-laggedLoans)
}

// LoanDemand 贷款需求 = clamp(意愿支出-内部资金, 0, 贷款上限)
func LoanDemand(desiredExpenses, internalFunds, maxLoans float64) float64 {
	return math.Max(0, math.Min(desiredExpenses-internalFunds, maxLoans))
}

// SavingsRate 储蓄率 = clamp(储蓄/可支配收入, -1, 1)，收入不大于0.01时为0
func SavingsRate(savings, disposable float64) float64 {
	if disposable <= minDenominator {
		return 0
	}
	return lo.Clamp(savings/disposable, -1, 1)
}

// AssetPurchases 资本家用正储蓄中非流动部分购买金融资产
func AssetPurchases(capitalist bool, savings, liquidityPreference float64) float64 {
	if !capitalist || savings <= 0 {
		return 0
	}
	return savings * (1 - liquidityPreference)
}

// FinancialAssets 金融资产存量 = max(0, 上期·(1+资产涨幅) + 购买 - 用于缴纳财富税的资产)
func FinancialAssets(capitalist bool, lagged, assetInflation, purchases, taxFromAssets float64) float64 {
	if !capitalist {
		return 0
	}
	return math.Max(0, lagged+lagged*assetInflation+purchases-taxFromAssets)
}

// DepositsFlows 存款变动的各项来源
type DepositsFlows struct {
	Savings                float64
	EffectiveLoans         float64
	AssetPurchases         float64
	WealthTaxFromDeposits  float64
	WealthTaxFromBorrowing float64
	Penalty                float64
}

// Deposits 存款存量
// 功能：上期存款 + 储蓄 + 新增贷款 - 资产购买 - 财富税（存款与借款部分）- 罚款，截断到[0, 1e12]
func Deposits(lagged float64, f DepositsFlows) float64 {
	v := lagged + f.Savings + f.EffectiveLoans - f.AssetPurchases -
		f.WealthTaxFromDeposits - f.WealthTaxFromBorrowing - f.Penalty
	return lo.Clamp(v, 0, maxDepositsStock)
}
