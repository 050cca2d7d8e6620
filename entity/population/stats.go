package population

import (
	"context"

	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/inequality"
	"golang.org/x/sync/errgroup"
)

// Totals 一组家庭的流量与存量合计
type Totals struct {
	Households int32 `json:"households" bson:"households"`
	Employed   int32 `json:"employed" bson:"employed"`
	Unemployed int32 `json:"unemployed" bson:"unemployed"`

	Wages                   float64 `json:"wages" bson:"wages"`
	Profits                 float64 `json:"profits" bson:"profits"`
	Benefits                float64 `json:"benefits" bson:"benefits"`
	Transfers               float64 `json:"transfers" bson:"transfers"`
	GrossIncome             float64 `json:"gross_income" bson:"gross_income"`
	IncomeTax               float64 `json:"income_tax" bson:"income_tax"`
	DisposableIncome        float64 `json:"disposable_income" bson:"disposable_income"`
	RealDisposableIncome    float64 `json:"real_disposable_income" bson:"real_disposable_income"`
	Expenses                float64 `json:"expenses" bson:"expenses"`
	RealDomesticConsumption float64 `json:"real_domestic_consumption" bson:"real_domestic_consumption"`
	RealImportedConsumption float64 `json:"real_imported_consumption" bson:"real_imported_consumption"`
	Savings                 float64 `json:"savings" bson:"savings"`
	Deposits                float64 `json:"deposits" bson:"deposits"`
	DomesticDeposits        float64 `json:"domestic_deposits" bson:"domestic_deposits"`
	OffshoreDeposits        float64 `json:"offshore_deposits" bson:"offshore_deposits"`
	Loans                   float64 `json:"loans" bson:"loans"`
	FinancialAssets         float64 `json:"financial_assets" bson:"financial_assets"`
	DeclaredAssets          float64 `json:"declared_assets" bson:"declared_assets"`
	UndeclaredAssets        float64 `json:"undeclared_assets" bson:"undeclared_assets"`
	NetWealth               float64 `json:"net_wealth" bson:"net_wealth"`
	InterestPayment         float64 `json:"interest_payment" bson:"interest_payment"`
	DebtPayment             float64 `json:"debt_payment" bson:"debt_payment"`
	LoanDemand              float64 `json:"loan_demand" bson:"loan_demand"`
	EffectiveLoans          float64 `json:"effective_loans" bson:"effective_loans"`
	DepositsReturn          float64 `json:"deposits_return" bson:"deposits_return"`
	WealthTaxPayment        float64 `json:"wealth_tax_payment" bson:"wealth_tax_payment"`
	Penalty                 float64 `json:"penalty" bson:"penalty"`

	propensity  float64 // 消费倾向之和
	savingsRate float64 // 储蓄率之和
	debtRate    float64 // 负债率之和
	weightedDR  float64 // 以可支配收入加权的负债率之和
}

// add 累加一个家庭的当期状态
func (t *Totals) add(s household.State) {
	t.Households++
	switch s.EmploymentStatus {
	case entity.Employed:
		t.Employed++
	case entity.Unemployed:
		t.Unemployed++
	}
	t.Wages += s.Wage
	t.Profits += s.ProfitIncome
	t.Benefits += s.Benefits
	t.Transfers += s.Transfer
	t.GrossIncome += s.GrossIncome
	t.IncomeTax += s.IncomeTax
	t.DisposableIncome += s.DisposableIncome
	t.RealDisposableIncome += s.RealDisposableIncome
	t.Expenses += s.EffectiveExpenses
	t.RealDomesticConsumption += s.EffectiveDomestic
	t.RealImportedConsumption += s.EffectiveImported
	t.Savings += s.Savings
	t.Deposits += s.Deposits
	t.DomesticDeposits += s.DomesticDeposits
	t.OffshoreDeposits += s.OffshoreDeposits
	t.Loans += s.Loans
	t.FinancialAssets += s.FinancialAssets
	t.DeclaredAssets += s.DeclaredAssets
	t.UndeclaredAssets += s.UndeclaredAssets
	t.NetWealth += s.NetWealth
	t.InterestPayment += s.InterestPayment
	t.DebtPayment += s.DebtPayment
	t.LoanDemand += s.LoanDemand
	t.EffectiveLoans += s.EffectiveLoans
	t.DepositsReturn += s.DepositsReturn
	t.WealthTaxPayment += s.WealthTaxPayment
	t.Penalty += s.Penalty
	t.propensity += s.Propensity
	t.savingsRate += s.SavingsRate
	t.debtRate += s.DebtRate
	t.weightedDR += s.DebtRate * s.DisposableIncome
}

// ClassStats 阶层统计
type ClassStats struct {
	Type   string `json:"type" bson:"type"`
	Totals `bson:",inline"`

	AvgDisposableIncome float64 `json:"avg_disposable_income" bson:"avg_disposable_income"`
	AvgNetWealth        float64 `json:"avg_net_wealth" bson:"avg_net_wealth"`
	AvgPropensity       float64 `json:"avg_propensity" bson:"avg_propensity"`
	AvgSavingsRate      float64 `json:"avg_savings_rate" bson:"avg_savings_rate"`
	AvgDebtRate         float64 `json:"avg_debt_rate" bson:"avg_debt_rate"`

	IncomeShare      float64 `json:"income_share" bson:"income_share"`           // 可支配收入占全国比例
	WealthShare      float64 `json:"wealth_share" bson:"wealth_share"`           // 净财富占全国比例
	ConsumptionShare float64 `json:"consumption_share" bson:"consumption_share"` // 支出占全国比例
}

// Stats 一期的人口统计
type Stats struct {
	Period int32 `json:"period" bson:"period"`
	Totals `bson:",inline"`

	LaborForce       int32   `json:"labor_force" bson:"labor_force"`
	UnemploymentRate float64 `json:"unemployment_rate" bson:"unemployment_rate"`

	CapitalistWealthShare float64 `json:"capitalist_wealth_share" bson:"capitalist_wealth_share"`
	DebtRate              float64 `json:"debt_rate" bson:"debt_rate"`                       // 以收入加权的负债率
	AvgPropensity         float64 `json:"avg_propensity" bson:"avg_propensity"`             // P·ΣC_dom/ΣY
	WealthCapitalRatio    float64 `json:"wealth_capital_ratio" bson:"wealth_capital_ratio"` // 净财富/资本存量
	WealthGDPRatio        float64 `json:"wealth_gdp_ratio" bson:"wealth_gdp_ratio"`         // 净财富/上期名义产出

	WealthTaxRevenue       float64 `json:"wealth_tax_revenue" bson:"wealth_tax_revenue"`
	WealthTaxpayers        int32   `json:"wealth_taxpayers" bson:"wealth_taxpayers"`
	WealthTaxFromDeposits  float64 `json:"wealth_tax_from_deposits" bson:"wealth_tax_from_deposits"`
	WealthTaxFromAssets    float64 `json:"wealth_tax_from_assets" bson:"wealth_tax_from_assets"`
	WealthTaxFromBorrowing float64 `json:"wealth_tax_from_borrowing" bson:"wealth_tax_from_borrowing"`
	TransferEligible       int32   `json:"transfer_eligible" bson:"transfer_eligible"`
	TransferThreshold      float64 `json:"transfer_threshold" bson:"transfer_threshold"`

	CapitalFlightRate float64 `json:"capital_flight_rate" bson:"capital_flight_rate"` // 离岸存款/存款
	AssetEvasionRate  float64 `json:"asset_evasion_rate" bson:"asset_evasion_rate"`   // 隐匿资产/金融资产
	Flights           int32   `json:"flights" bson:"flights"`                         // 当期外逃家庭数
	Evaders           int32   `json:"evaders" bson:"evaders"`                         // 持有离岸存款或隐匿资产的家庭数
	Audits            int32   `json:"audits" bson:"audits"`
	PenaltyRevenue    float64 `json:"penalty_revenue" bson:"penalty_revenue"`
	TaxGap            float64 `json:"tax_gap" bson:"tax_gap"` // (离岸存款+隐匿资产)·财富税率

	Income       inequality.Summary `json:"income" bson:"income"`               // 可支配收入分布
	PreTaxIncome inequality.Summary `json:"pre_tax_income" bson:"pre_tax_income"` // 税前收入分布
	DepositDist  inequality.Summary `json:"deposits_dist" bson:"deposits_dist"`   // 存款分布
	Wealth       inequality.Summary `json:"wealth" bson:"wealth"`               // 净财富分布

	Classes []ClassStats `json:"classes" bson:"classes"`
}

// Class 指定阶层的统计
func (s *Stats) Class(typ entity.HouseholdType) *ClassStats {
	for i := range s.Classes {
		if s.Classes[i].Type == typ.String() {
			return &s.Classes[i]
		}
	}
	return nil
}

// Collect 汇总当期统计
// 功能：一次遍历得到全国与阶层合计，再并发计算四组分布统计
// 参数：ctx-上下文，macro-当期宏观变量
// 返回：当期统计，同时作为Latest保存
// 算法说明：
// 1. 遍历家庭累加全国与阶层合计，收集收入、税前收入、存款与净财富样本
// 2. 计算比例、平均值与逃税指标，分母为0时取0
// 3. 用errgroup并发计算四组样本的Gini、Theil、份额与Palma
func (a *Aggregator) Collect(ctx context.Context, macro entity.Macro) (*Stats, error) {
	hs := a.hm.Data()
	st := &Stats{
		Period:     macro.Period,
		LaborForce: a.country.LaborForce,
	}
	classes := make([]Totals, len(entity.HouseholdTypes))
	income := make([]float64, len(hs))
	preTax := make([]float64, len(hs))
	deposits := make([]float64, len(hs))
	wealth := make([]float64, len(hs))
	for i, h := range hs {
		s := h.State()
		st.Totals.add(s)
		classes[h.Type()].add(s)
		income[i] = s.DisposableIncome
		preTax[i] = s.GrossIncome
		deposits[i] = s.Deposits
		wealth[i] = s.NetWealth
		if s.Flight {
			st.Flights++
		}
		if s.OffshoreDeposits > minEvadedBalance || s.UndeclaredAssets > minEvadedBalance {
			st.Evaders++
		}
		if s.Audited {
			st.Audits++
		}
	}

	c := a.country
	st.UnemploymentRate = ratio(float64(st.Unemployed), float64(c.LaborForce))
	st.CapitalistWealthShare = ratio(classes[entity.Capitalist].NetWealth, st.NetWealth)
	st.DebtRate = ratio(st.weightedDR, st.DisposableIncome)
	st.AvgPropensity = ratio(macro.LaggedDomesticPrice*st.RealDomesticConsumption, st.DisposableIncome)
	st.WealthCapitalRatio = ratio(st.NetWealth, macro.CapitalStock)
	st.WealthGDPRatio = ratio(st.NetWealth, macro.LaggedNominalOutput)

	st.WealthTaxRevenue = c.WealthTaxRevenue
	st.WealthTaxpayers = c.WealthTaxpayers
	st.WealthTaxFromDeposits = c.WealthTaxFromDeposits
	st.WealthTaxFromAssets = c.WealthTaxFromAssets
	st.WealthTaxFromBorrowing = c.WealthTaxFromBorrowing
	st.TransferEligible = c.TransferEligible
	st.TransferThreshold = c.TransferThreshold

	st.CapitalFlightRate = ratio(st.OffshoreDeposits, st.Deposits)
	st.AssetEvasionRate = ratio(st.UndeclaredAssets, st.FinancialAssets)
	st.PenaltyRevenue = st.Penalty
	if a.rc.WealthTaxEnabled() {
		st.TaxGap = (st.OffshoreDeposits + st.UndeclaredAssets) * a.rc.All.Policy.WealthTaxRate
	}

	st.Classes = make([]ClassStats, 0, len(classes))
	for _, typ := range entity.HouseholdTypes {
		t := classes[typ]
		n := float64(t.Households)
		st.Classes = append(st.Classes, ClassStats{
			Type:                typ.String(),
			Totals:              t,
			AvgDisposableIncome: ratio(t.DisposableIncome, n),
			AvgNetWealth:        ratio(t.NetWealth, n),
			AvgPropensity:       ratio(t.propensity, n),
			AvgSavingsRate:      ratio(t.savingsRate, n),
			AvgDebtRate:         ratio(t.debtRate, n),
			IncomeShare:         ratio(t.DisposableIncome, st.DisposableIncome),
			WealthShare:         ratio(t.NetWealth, st.NetWealth),
			ConsumptionShare:    ratio(t.Expenses, st.Expenses),
		})
	}

	g, _ := errgroup.WithContext(ctx)
	for _, job := range []struct {
		dst    *inequality.Summary
		values []float64
	}{
		{&st.Income, income},
		{&st.PreTaxIncome, preTax},
		{&st.DepositDist, deposits},
		{&st.Wealth, wealth},
	} {
		job := job
		g.Go(func() error {
			*job.dst = inequality.Summarize(job.values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.latest = st
	return st, nil
}
