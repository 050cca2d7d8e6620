package household

import (
	"fmt"

	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/loan"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/container"
)

// Params 家庭个体参数，初始化时抽取一次，之后不变
type Params struct {
	Skill                float64 `json:"skill"`                 // 技能
	ProfitShare          float64 `json:"profit_share"`          // 利润分配份额（资本家）
	AutonomousAdjustment float64 `json:"autonomous_adjustment"` // 自主消费调整系数
	ImportPropensity     float64 `json:"import_propensity"`     // 进口倾向
	LiquidityPreference  float64 `json:"liquidity_preference"`  // 流动性偏好
	HabitPersistence     float64 `json:"habit_persistence"`     // 习惯持续性β
	HabitInflation       float64 `json:"habit_inflation"`       // 向上调整速度λ⁺
	HabitDeflation       float64 `json:"habit_deflation"`       // 向下调整速度λ⁻
	PropensityToEvade    float64 `json:"propensity_to_evade"`   // 逃税倾向
}

// State 家庭一期的全部状态
// 说明：流量每期重新计算；自主消费与最大负债率只在特定期调整，其余期沿用上期值
type State struct {
	Period           int32                   `json:"period"`
	EmploymentStatus entity.EmploymentStatus `json:"employment_status"`

	// 收入
	Wage                 float64 `json:"wage"`
	ProfitIncome         float64 `json:"profit_income"`
	Benefits             float64 `json:"benefits"`
	Transfer             float64 `json:"transfer"`
	GrossIncome          float64 `json:"gross_income"`
	IncomeTax            float64 `json:"income_tax"`
	DisposableIncome     float64 `json:"disposable_income"`
	RealDisposableIncome float64 `json:"real_disposable_income"`
	AvgRealIncome        float64 `json:"avg_real_income"`
	AvgNominalIncome     float64 `json:"avg_nominal_income"`

	// 消费
	ReferenceIncome       float64 `json:"reference_income"`
	IncomePercentile      float64 `json:"income_percentile"`
	Propensity            float64 `json:"propensity"`
	AutonomousConsumption float64 `json:"autonomous_consumption"`
	ImportsShare          float64 `json:"imports_share"`
	DesiredDomestic       float64 `json:"desired_domestic"`
	DesiredImported       float64 `json:"desired_imported"`
	DesiredExpenses       float64 `json:"desired_expenses"`
	DomesticDemand        float64 `json:"domestic_demand"`
	ImportedDemand        float64 `json:"imported_demand"`
	EffectiveDomestic     float64 `json:"effective_domestic"`
	EffectiveImported     float64 `json:"effective_imported"`
	EffectiveExpenses     float64 `json:"effective_expenses"`

	// 预算与借贷
	RetainedDeposits  float64 `json:"retained_deposits"`
	InternalFunds     float64 `json:"internal_funds"`
	Funds             float64 `json:"funds"`
	MaxExpenses       float64 `json:"max_expenses"`
	AvailableDeposits float64 `json:"available_deposits"`
	DepositsReturn    float64 `json:"deposits_return"`
	InterestRate      float64 `json:"interest_rate"`
	AvgDebtRate       float64 `json:"avg_debt_rate"`
	MaxDebtRate       float64 `json:"max_debt_rate"`
	MaxLoans          float64 `json:"max_loans"`
	LoanDemand        float64 `json:"loan_demand"`
	ConsumptionLoans  float64 `json:"consumption_loans"`
	TaxLoans          float64 `json:"tax_loans"`
	EffectiveLoans    float64 `json:"effective_loans"`
	InterestPayment   float64 `json:"interest_payment"`
	DebtPayment       float64 `json:"debt_payment"`
	Obligations       float64 `json:"obligations"`
	Savings           float64 `json:"savings"`
	SavingsRate       float64 `json:"savings_rate"`
	AssetPurchases    float64 `json:"asset_purchases"`

	// 存量
	Deposits        float64 `json:"deposits"`
	FinancialAssets float64 `json:"financial_assets"`
	Loans           float64 `json:"loans"`
	NetWealth       float64 `json:"net_wealth"`
	DebtRate        float64 `json:"debt_rate"`

	// 财富税与转移支付
	WealthTaxOwed          float64 `json:"wealth_tax_owed"`
	WealthTaxPayment       float64 `json:"wealth_tax_payment"`
	WealthTaxFromDeposits  float64 `json:"wealth_tax_from_deposits"`
	WealthTaxFromAssets    float64 `json:"wealth_tax_from_assets"`
	WealthTaxFromBorrowing float64 `json:"wealth_tax_from_borrowing"`
	TransferEligible       bool    `json:"transfer_eligible"`

	// 逃税与资本外逃
	Flight           bool    `json:"flight"`
	FlightAmount     float64 `json:"flight_amount"`
	OffshoreInterest float64 `json:"offshore_interest"`
	Repatriation     float64 `json:"repatriation"`
	OffshoreDeposits float64 `json:"offshore_deposits"`
	DomesticDeposits float64 `json:"domestic_deposits"`
	HideFraction     float64 `json:"hide_fraction"`
	UndeclaredAssets float64 `json:"undeclared_assets"`
	DeclaredAssets   float64 `json:"declared_assets"`
	Audited          bool    `json:"audited"`
	Penalty          float64 `json:"penalty"`
}

// Household 家庭
// 功能：保存家庭的阶层、个体参数、当期状态、滞后历史与贷款账本
// 说明：更新阶段中每个家庭只写自己的当期状态，只读自己的历史与国家层面变量
type Household struct {
	id     int32
	typ    entity.HouseholdType
	params Params

	cur     State
	history *container.Ring[State]
	loans   *loan.Book

	// 准备阶段预先抽取的随机数
	employmentDraw float64
	auditDraw      float64
}

// newHousehold 创建家庭
// 参数：id-家庭ID，typ-阶层，params-个体参数，depth-历史深度
func newHousehold(id int32, typ entity.HouseholdType, params Params, depth int) *Household {
	h := &Household{
		id:      id,
		typ:     typ,
		params:  params,
		history: container.NewRing[State](depth),
		loans:   loan.NewBook(),
	}
	if typ == entity.Capitalist {
		h.cur.EmploymentStatus = entity.NotInLaborForce
	} else {
		h.cur.EmploymentStatus = entity.Employed
	}
	return h
}

func (h *Household) ID() int32 {
	return h.id
}

func (h *Household) Type() entity.HouseholdType {
	return h.typ
}

func (h *Household) Params() Params {
	return h.params
}

// State 当期状态
func (h *Household) State() State {
	return h.cur
}

// Lag 滞后k期的状态，不存在时返回零值
func (h *Household) Lag(k int) State {
	s, _ := h.history.Lag(k)
	return s
}

// Loans 贷款账本记录副本
func (h *Household) Loans() []loan.Record {
	return h.loans.Records()
}

// SetTransferEligible 写入当期转移支付资格
// 说明：由人口预扫描在顺序阶段调用
func (h *Household) SetTransferEligible(eligible bool) {
	h.cur.TransferEligible = eligible
}

// open 开启新的一期：复制上期状态作为起点
func (h *Household) open(t int32) {
	h.cur.Period = t
}

// commit 将当期状态写入历史
func (h *Household) commit() {
	h.history.Push(h.cur)
}

func (h *Household) String() string {
	return fmt.Sprintf("Household{id=%d, type=%v, status=%d, Yd=%.3f, NW=%.3f}",
		h.id, h.typ, h.cur.EmploymentStatus, h.cur.DisposableIncome, h.cur.NetWealth)
}
