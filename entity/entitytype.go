package entity

// HouseholdType 家庭阶层
type HouseholdType int32

const (
	Worker     HouseholdType = 0 // 工人家庭
	Capitalist HouseholdType = 1 // 资本家家庭
)

// HouseholdTypes 全部阶层，按分组顺序排列
var HouseholdTypes = [...]HouseholdType{Worker, Capitalist}

func (t HouseholdType) String() string {
	switch t {
	case Worker:
		return "worker"
	case Capitalist:
		return "capitalist"
	default:
		return "unknown"
	}
}

// ParseHouseholdType 由名称解析阶层
func ParseHouseholdType(s string) (HouseholdType, bool) {
	switch s {
	case "worker", "0":
		return Worker, true
	case "capitalist", "1":
		return Capitalist, true
	default:
		return Worker, false
	}
}

// EmploymentStatus 就业状态
type EmploymentStatus int32

const (
	NotInLaborForce EmploymentStatus = -1 // 资本家家庭不参与劳动力市场
	Unemployed      EmploymentStatus = 0
	Employed        EmploymentStatus = 1
)

// Macro 当期由外部部门给出的宏观变量
// 说明：家庭只读这些值，由ecosim在每期准备阶段计算
type Macro struct {
	Period int32 `json:"period" bson:"period"`

	CPI                 float64 `json:"cpi" bson:"cpi"`                                     // 消费价格指数
	DomesticPrice       float64 `json:"domestic_price" bson:"domestic_price"`               // 国内消费品价格
	LaggedDomesticPrice float64 `json:"lagged_domestic_price" bson:"lagged_domestic_price"` // 上期国内消费品价格
	ForeignPrice        float64 `json:"foreign_price" bson:"foreign_price"`                 // 外国价格
	ExchangeRate        float64 `json:"exchange_rate" bson:"exchange_rate"`                 // 汇率

	CapacityUtilization float64 `json:"capacity_utilization" bson:"capacity_utilization"` // 产能利用率
	RealDemand          float64 `json:"real_demand" bson:"real_demand"`                   // 实际总需求
	Capacity            float64 `json:"capacity" bson:"capacity"`                         // 产能
	NominalOutput       float64 `json:"nominal_output" bson:"nominal_output"`             // 名义产出
	LaggedNominalOutput float64 `json:"lagged_nominal_output" bson:"lagged_nominal_output"`
	TotalWages          float64 `json:"total_wages" bson:"total_wages"`     // 工资总额
	TotalProfits        float64 `json:"total_profits" bson:"total_profits"` // 分配给家庭的利润总额
	CapitalStock        float64 `json:"capital_stock" bson:"capital_stock"` // 名义资本存量

	QualityGrowth      float64 `json:"quality_growth" bson:"quality_growth"`               // 年度质量增长率
	AssetInflation     float64 `json:"asset_inflation" bson:"asset_inflation"`             // 资产价格涨幅
	DemandMet          float64 `json:"demand_met" bson:"demand_met"`                       // 当期需求满足率
	LaggedDemandMet    float64 `json:"lagged_demand_met" bson:"lagged_demand_met"`         // 上期需求满足率
	DemandMetByImports float64 `json:"demand_met_by_imports" bson:"demand_met_by_imports"` // 未满足需求由进口满足的比例

	BaseRate      float64 `json:"base_rate" bson:"base_rate"`             // 央行基准利率
	DepositRate   float64 `json:"deposit_rate" bson:"deposit_rate"`       // 存款利率
	ShortTermRate float64 `json:"short_term_rate" bson:"short_term_rate"` // 短期贷款利率
	ExternalRate  float64 `json:"external_rate" bson:"external_rate"`     // 离岸利率
}

// Fiscal 当期政府侧变量
type Fiscal struct {
	DesiredBenefits    float64 `json:"desired_benefits" bson:"desired_benefits"`
	EffectiveBenefits  float64 `json:"effective_benefits" bson:"effective_benefits"` // 失业救济总额
	DesiredTransfers   float64 `json:"desired_transfers" bson:"desired_transfers"`
	EffectiveTransfers float64 `json:"effective_transfers" bson:"effective_transfers"` // 转移支付总额
	AuditProbability   float64 `json:"audit_probability" bson:"audit_probability"`     // 动态审计概率
	WealthTaxRevenue   float64 `json:"wealth_tax_revenue" bson:"wealth_tax_revenue"`   // 当期财富税收入，财富税阶段之后记录

	// 以下为上期收入记录
	IncomeTaxRevenue   float64 `json:"income_tax_revenue" bson:"income_tax_revenue"`
	PenaltyRevenue     float64 `json:"penalty_revenue" bson:"penalty_revenue"`
	TaxGap             float64 `json:"tax_gap" bson:"tax_gap"`
	PotentialWealthTax float64 `json:"potential_wealth_tax" bson:"potential_wealth_tax"` // 无逃税时的财富税收入
}

// Country 由家庭截面得到的国家层面变量
// 说明：预扫描字段基于上期状态；就业与财富税字段在对应阶段之后填写
type Country struct {
	Households           int32   `json:"households" bson:"households"`
	LaborForce           int32   `json:"labor_force" bson:"labor_force"`                     // 劳动力（工人家庭数，至少为1）
	UnemployedHouseholds int32   `json:"unemployed_households" bson:"unemployed_households"` // 上期失业家庭数
	EmployedHouseholds   int32   `json:"employed_households" bson:"employed_households"`     // 上期就业家庭数
	MedianIncome         float64 `json:"median_income" bson:"median_income"`                 // 上期平均实际收入的中位数
	TransferThreshold    float64 `json:"transfer_threshold" bson:"transfer_threshold"`       // 转移支付资格线
	TransferEligible     int32   `json:"transfer_eligible" bson:"transfer_eligible"`         // 有资格的家庭数

	TotalEmployment    int32   `json:"total_employment" bson:"total_employment"`         // 当期就业人数
	TotalEmployedSkill float64 `json:"total_employed_skill" bson:"total_employed_skill"` // 当期就业者技能总和

	WealthTaxRevenue       float64 `json:"wealth_tax_revenue" bson:"wealth_tax_revenue"` // 当期财富税收入
	WealthTaxpayers        int32   `json:"wealth_taxpayers" bson:"wealth_taxpayers"`
	WealthTaxFromDeposits  float64 `json:"wealth_tax_from_deposits" bson:"wealth_tax_from_deposits"`
	WealthTaxFromAssets    float64 `json:"wealth_tax_from_assets" bson:"wealth_tax_from_assets"`
	WealthTaxFromBorrowing float64 `json:"wealth_tax_from_borrowing" bson:"wealth_tax_from_borrowing"`
}

// Feedback 上期家庭部门汇总，供外部部门形成当期宏观变量
type Feedback struct {
	Valid                   bool    // 是否已有一期统计
	RealDomesticConsumption float64 // 实际国内消费
	Wages                   float64 // 工资总额
	Employed                int32   // 就业人数
	Unemployed              int32   // 失业人数
	IncomeTax               float64 // 所得税
	WealthTaxRevenue        float64 // 财富税
	PenaltyRevenue          float64 // 罚款
	TaxGap                  float64 // 税收缺口
	EvasionRate             float64 // 逃税率（离岸+隐匿）/（存款+资产）
}

// ScenarioPoint 情景输入中某一期的宏观变量
// 说明：字段为nil时不覆盖内部计算值
type ScenarioPoint struct {
	Period              int32    `yaml:"period" bson:"period" json:"period"`
	CPI                 *float64 `yaml:"cpi,omitempty" bson:"cpi,omitempty" json:"cpi,omitempty"`
	DomesticPrice       *float64 `yaml:"domestic_price,omitempty" bson:"domestic_price,omitempty" json:"domestic_price,omitempty"`
	CapacityUtilization *float64 `yaml:"capacity_utilization,omitempty" bson:"capacity_utilization,omitempty" json:"capacity_utilization,omitempty"`
	TotalWages          *float64 `yaml:"total_wages,omitempty" bson:"total_wages,omitempty" json:"total_wages,omitempty"`
	TotalProfits        *float64 `yaml:"total_profits,omitempty" bson:"total_profits,omitempty" json:"total_profits,omitempty"`
	CapitalStock        *float64 `yaml:"capital_stock,omitempty" bson:"capital_stock,omitempty" json:"capital_stock,omitempty"`
	DemandMet           *float64 `yaml:"demand_met,omitempty" bson:"demand_met,omitempty" json:"demand_met,omitempty"`
	BaseRate            *float64 `yaml:"base_rate,omitempty" bson:"base_rate,omitempty" json:"base_rate,omitempty"`
	ExternalRate        *float64 `yaml:"external_rate,omitempty" bson:"external_rate,omitempty" json:"external_rate,omitempty"`
	ForeignPrice        *float64 `yaml:"foreign_price,omitempty" bson:"foreign_price,omitempty" json:"foreign_price,omitempty"`
	ExchangeRate        *float64 `yaml:"exchange_rate,omitempty" bson:"exchange_rate,omitempty" json:"exchange_rate,omitempty"`
	AssetInflation      *float64 `yaml:"asset_inflation,omitempty" bson:"asset_inflation,omitempty" json:"asset_inflation,omitempty"`
	QualityGrowth       *float64 `yaml:"quality_growth,omitempty" bson:"quality_growth,omitempty" json:"quality_growth,omitempty"`
}
