package household

import (
	"math"

	"github.com/tsinghua-fib-lab/agentsociety-household/ecosim"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/container"
)

// updateEmployment 就业阶段
// 说明：只读上期状态与宏观产能利用率，使用准备阶段预抽的随机数
func (h *Household) updateEmployment(env *Env) {
	prev := h.Lag(1).EmploymentStatus
	if h.history.Len() == 0 {
		prev = h.cur.EmploymentStatus
	}
	h.cur.EmploymentStatus = NextEmploymentStatus(
		h.typ, prev, env.Employment, h.params.Skill, env.Macro.CapacityUtilization, h.employmentDraw,
	)
}

// updateTaxes 财富税阶段
// 功能：调整最大负债率，计算应缴财富税及其资金来源
// 说明：政府在该阶段之后汇总财富税收入，作为转移支付预算
func (h *Household) updateTaxes(env *Env) {
	lag := h.Lag(1)
	growth := container.LagGrowth(h.history, func(s State) float64 { return s.DisposableIncome }, int(env.Annual), 1)
	h.cur.MaxDebtRate = MaxDebtRate(lag.MaxDebtRate, env.Household.DebtRateAdjustment, growth, env.AdjustPeriod)

	var sources WealthTaxSources
	owed := 0.
	if env.WealthTaxEnabled() {
		owed = WealthTaxOwed(
			lag.Deposits, lag.OffshoreDeposits, lag.FinancialAssets, lag.UndeclaredAssets,
			env.Policy.WealthTaxThreshold, env.Policy.WealthTaxRate,
		)
		sources = PayWealthTax(
			owed, lag.Deposits, h.params.LiquidityPreference, h.cur.MaxDebtRate, lag.DebtRate, lag.FinancialAssets,
		)
	}
	h.cur.WealthTaxOwed = owed
	h.cur.WealthTaxPayment = sources.Total()
	h.cur.WealthTaxFromDeposits = sources.FromDeposits
	h.cur.WealthTaxFromAssets = sources.FromAssets
	h.cur.WealthTaxFromBorrowing = sources.FromBorrowing
}

// updateBudget 收支阶段
// 功能：计算收入、消费、借贷、储蓄、存量与逃税变量
// 算法说明：
// 1. 收入：工资、利润、失业救济、转移支付，平均收入
// 2. 消费：参考收入、相对位置、消费倾向、自主消费、进口比例、意愿支出
// 3. 借贷：利率、偿付旧贷款、内部资金、贷款需求与发放
// 4. 实际支出：国内优先分配与有效消费
// 5. 税后收入、储蓄与资产
// 6. 资产隐匿与审计、存款与净财富、离岸存款
func (h *Household) updateBudget(env *Env) {
	lag := h.Lag(1)
	s := &h.cur
	m := env.Macro
	annual := int(env.Annual)
	capitalist := h.typ == entity.Capitalist
	wealthTax := env.WealthTaxEnabled()

	// 1. 收入
	s.Wage = Wage(h.typ, s.EmploymentStatus, h.params.Skill, env.Country, m.TotalWages, env.Heterogeneous)
	s.ProfitIncome = ProfitIncome(h.typ, h.params.ProfitShare, m.TotalProfits)
	s.Benefits = Benefits(h.typ, s.EmploymentStatus, env.Fiscal.EffectiveBenefits, env.Country.UnemployedHouseholds)
	s.Transfer = Transfer(wealthTax, s.TransferEligible, env.Fiscal.EffectiveTransfers, env.Country.TransferEligible)
	s.AvgRealIncome, s.AvgNominalIncome = h.averageIncomes(env.Annual)

	// 2. 意愿消费
	y := s.AvgRealIncome
	habit := env.Household.Habit.Mode
	s.ReferenceIncome = ReferenceIncome(habit, y, lag.ReferenceIncome, h.params.HabitInflation, h.params.HabitDeflation)
	s.IncomePercentile = IncomePercentile(y, env.Country.MedianIncome)
	s.Propensity = Propensity(env.Household.Propensity, s.IncomePercentile, habit, h.params.HabitPersistence, y, s.ReferenceIncome)
	s.AutonomousConsumption = AutonomousConsumption(lag.AutonomousConsumption, h.params.AutonomousAdjustment, m.QualityGrowth, env.YearStart)
	s.ImportsShare = ImportsShare(h.params.ImportPropensity, m.LaggedDomesticPrice, m.ForeignPrice, m.ExchangeRate, y, s.AutonomousConsumption)
	s.DesiredDomestic, s.DesiredImported = DesiredConsumption(y, s.Propensity, s.ImportsShare, s.AutonomousConsumption)
	importPrice := m.ForeignPrice * m.ExchangeRate
	s.DesiredExpenses = s.DesiredDomestic*m.LaggedDomesticPrice + s.DesiredImported*importPrice

	// 3. 借贷
	s.AvgDebtRate = container.LagAverage(h.history, func(st State) float64 { return st.DebtRate }, annual, 1)
	s.InterestRate = InterestRate(s.AvgDebtRate, env.Household.RiskPremium, m.ShortTermRate)
	pay := h.loans.Service(s.InterestRate, env.Household.FloatingInterest)
	s.InterestPayment = pay.Interest
	s.DebtPayment = pay.Amortization
	s.Obligations = pay.Obligations()

	s.RetainedDeposits = RetainedDeposits(s.AvgNominalIncome, h.params.LiquidityPreference, lag.Deposits, lag.DisposableIncome)
	s.InternalFunds = InternalFunds(lag.Deposits, lag.DisposableIncome, s.RetainedDeposits, s.Obligations)
	lagAssets := 0.
	if capitalist {
		lagAssets = lag.FinancialAssets
	}
	s.MaxLoans = MaxLoans(s.MaxDebtRate, lag.Deposits, lag.DisposableIncome, lagAssets, lag.Loans)
	s.LoanDemand = LoanDemand(s.DesiredExpenses, s.InternalFunds, s.MaxLoans)
	s.ConsumptionLoans, s.TaxLoans = 0, 0
	if h.loans.Originate(s.LoanDemand, s.InterestRate, env.Annual) {
		s.ConsumptionLoans = s.LoanDemand
	}
	if h.loans.Originate(s.WealthTaxFromBorrowing, s.InterestRate, env.Annual) {
		s.TaxLoans = s.WealthTaxFromBorrowing
	}
	s.EffectiveLoans = s.ConsumptionLoans + s.TaxLoans

	// 4. 实际支出
	s.Funds = s.InternalFunds + s.ConsumptionLoans
	s.MaxExpenses = math.Max(0, math.Min(s.DesiredExpenses, s.Funds))
	s.DomesticDemand, s.ImportedDemand = Allocate(s.MaxExpenses, s.DesiredDomestic, s.DesiredImported, m.LaggedDomesticPrice, importPrice)
	s.EffectiveDomestic, s.EffectiveImported = EffectiveConsumption(
		s.DomesticDemand, s.ImportedDemand, m.LaggedDemandMet, m.DemandMet, m.DemandMetByImports,
	)
	s.EffectiveExpenses = s.EffectiveDomestic*m.LaggedDomesticPrice + s.EffectiveImported*importPrice
	s.AvailableDeposits = math.Max(0, s.Funds-s.EffectiveExpenses)
	s.DepositsReturn = (s.AvailableDeposits + s.RetainedDeposits) * m.DepositRate

	// 5. 税后收入、储蓄与资产
	s.GrossIncome = GrossIncome(s.Wage, s.ProfitIncome, lag.DepositsReturn)
	s.IncomeTax = ecosim.IncomeTax(env.Policy.TaxStructure, env.Policy.IncomeTaxRate, s.Wage, s.ProfitIncome, s.DepositsReturn)
	s.DisposableIncome = DisposableIncome(s.GrossIncome, s.IncomeTax, s.Benefits, s.Transfer)
	s.RealDisposableIncome = RealIncome(s.DisposableIncome, m.CPI)
	s.Savings = s.DisposableIncome - s.EffectiveExpenses - s.Obligations
	s.SavingsRate = SavingsRate(s.Savings, s.DisposableIncome)
	s.AssetPurchases = AssetPurchases(capitalist, s.Savings, h.params.LiquidityPreference)
	s.FinancialAssets = FinancialAssets(capitalist, lag.FinancialAssets, m.AssetInflation, s.AssetPurchases, s.WealthTaxFromAssets)

	// 6. 逃税与存量
	threshold := env.Policy.WealthTaxThreshold
	liable := wealthTax && lag.NetWealth > threshold
	s.HideFraction, s.UndeclaredAssets = 0, 0
	if liable && capitalist && lag.FinancialAssets > 0 {
		s.HideFraction = HideFraction(h.params.PropensityToEvade, env.Fiscal.AuditProbability, env.Policy.PenaltyRate)
		s.UndeclaredAssets = math.Min(lag.FinancialAssets*s.HideFraction, s.FinancialAssets)
	}
	s.DeclaredAssets = s.FinancialAssets - s.UndeclaredAssets
	s.Audited = wealthTax && h.auditDraw < env.Fiscal.AuditProbability
	s.Penalty = Penalty(s.Audited, s.UndeclaredAssets, env.Policy.PenaltyRate, env.Policy.WealthTaxRate)

	s.Deposits = Deposits(lag.Deposits, DepositsFlows{
		Savings:                s.Savings,
		EffectiveLoans:         s.EffectiveLoans,
		AssetPurchases:         s.AssetPurchases,
		WealthTaxFromDeposits:  s.WealthTaxFromDeposits,
		WealthTaxFromBorrowing: s.WealthTaxFromBorrowing,
		Penalty:                s.Penalty,
	})
	s.Loans = h.loans.Outstanding()
	s.NetWealth = s.Deposits + s.FinancialAssets - s.Loans
	s.DebtRate = DebtRate(s.Loans, s.Deposits, s.AvgNominalIncome)

	s.Flight, s.FlightAmount = FlightDecision(
		liable, lag.DomesticDeposits, h.params.PropensityToEvade, env.Policy.WealthTaxRate, m.BaseRate, m.ExternalRate,
	)
	s.OffshoreInterest = lag.OffshoreDeposits * m.ExternalRate
	s.Repatriation = Repatriation(RepatriationInputs{
		LagOffshore:     lag.OffshoreDeposits,
		LagDomestic:     lag.DomesticDeposits,
		DesiredExpenses: s.DesiredExpenses,
		Obligations:     s.Obligations,
		WealthTaxOwed:   s.WealthTaxOwed,
		Penalty:         s.Penalty,
		Propensity:      h.params.PropensityToEvade,
		Rate:            env.Policy.WealthTaxRate,
		DomesticRate:    m.BaseRate,
		OffshoreRate:    m.ExternalRate,
	})
	s.OffshoreDeposits, s.DomesticDeposits, s.FlightAmount = SplitDeposits(
		s.Deposits, lag.OffshoreDeposits, s.FlightAmount, s.OffshoreInterest, s.Repatriation,
	)
}
