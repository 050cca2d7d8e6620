package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：文件路径优先级高于MongoDB，两者都为空时视为未配置
type InputPath struct {
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// Empty 是否未配置任何数据源
func (p InputPath) Empty() bool {
	return p.File == "" && (p.DB == "" || p.Col == "")
}

// Input 指定模拟器所有输入数据的配置项
// 功能：定义仿真系统的可选外部输入
// 说明：宏观情景序列覆盖内部计算值，种子家庭作为初始化模板
type Input struct {
	URI        string     `yaml:"uri,omitempty"`        // MongoDB连接字符串
	Scenario   *InputPath `yaml:"scenario,omitempty"`   // 宏观情景序列
	Households *InputPath `yaml:"households,omitempty"` // 种子家庭模板
	Snapshot   string     `yaml:"snapshot,omitempty"`   // 家庭快照文件，设置时跳过构建直接恢复
}

// ControlStep 指定模拟时间范围的配置项
type ControlStep struct {
	Start int32 `yaml:"start"` // 开始期数
	Total int32 `yaml:"total"` // 总期数
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
// 说明：包含时间范围、年频率、随机种子与心跳日志间隔
type Control struct {
	Step              ControlStep `yaml:"step"`
	AnnualFrequency   int32       `yaml:"annual_frequency"`             // 每年的期数
	Seed              uint64      `yaml:"seed"`                         // 随机种子
	SeedOffset        uint64      `yaml:"seed_offset,omitempty"`        // 种子偏移量
	HeartbeatInterval int32       `yaml:"heartbeat_interval,omitempty"` // 心跳日志间隔期数
	Heterogeneous     bool        `yaml:"heterogeneous"`                // 家庭参数是否异质
}

// Population 人口规模配置
type Population struct {
	Total           int32   `yaml:"total"`            // 家庭总数
	CapitalistShare float64 `yaml:"capitalist_share"` // 资本家比例
}

// Habit 消费习惯（棘轮）参数
type Habit struct {
	Mode           int32   `yaml:"mode"`            // 0=无习惯，1=非对称调整，2=完全向下刚性
	InflationAlpha float64 `yaml:"inflation_alpha"` // 向上调整Beta分布参数α
	InflationBeta  float64 `yaml:"inflation_beta"`  // 向上调整Beta分布参数β
	DeflationAlpha float64 `yaml:"deflation_alpha"` // 向下调整Beta分布参数α
	DeflationBeta  float64 `yaml:"deflation_beta"`  // 向下调整Beta分布参数β
}

// Propensity 消费倾向广义logistic曲线参数
type Propensity struct {
	Steepness float64 `yaml:"steepness"` // k
	Slope     float64 `yaml:"slope"`     // a
	Shift     float64 `yaml:"shift"`     // b
	Asymmetry float64 `yaml:"asymmetry"` // ν
}

// Profit 利润分配q指数分布参数
type Profit struct {
	Q      float64 `yaml:"q"`
	Lambda float64 `yaml:"lambda"`
}

// Household 家庭行为参数
type Household struct {
	SkillStdDev            float64    `yaml:"skill_stddev"`             // 技能对数正态分布标准差
	AutonomousAdjustment   float64    `yaml:"autonomous_adjustment"`    // 自主消费调整系数均值
	ImportPropensity       float64    `yaml:"import_propensity"`        // 进口倾向
	LiquidityPreference    float64    `yaml:"liquidity_preference"`     // 流动性偏好均值
	PropensityToEvade      float64    `yaml:"propensity_to_evade"`      // 逃税倾向均值
	EvasionConcentration   float64    `yaml:"evasion_concentration"`    // 逃税倾向Beta分布集中度κ
	Habit                  Habit      `yaml:"habit"`                    // 消费习惯
	Propensity             Propensity `yaml:"propensity"`               // 消费倾向曲线
	Profit                 Profit     `yaml:"profit"`                   // 利润分配
	InitialMaxDebtRate     float64    `yaml:"initial_max_debt_rate"`    // 初始最大负债率
	DebtRateAdjustment     float64    `yaml:"debt_rate_adjustment"`     // 最大负债率年度调整幅度
	RiskPremium            float64    `yaml:"risk_premium"`             // 风险溢价
	FloatingInterest       bool       `yaml:"floating_interest"`        // 贷款利息按当期利率计算
	CapitalistDepositShare float64    `yaml:"capitalist_deposit_share"` // 初始资本家存款与收入占比
	InitialValuationRatio  float64    `yaml:"initial_valuation_ratio"`  // 初始金融资产估值比
}

// Employment 就业转换参数
type Employment struct {
	TargetUtilization float64 `yaml:"target_utilization"` // 目标产能利用率
	BaseHireRate      float64 `yaml:"base_hire_rate"`     // 基础雇佣率
	BaseFireRate      float64 `yaml:"base_fire_rate"`     // 基础解雇率
	HiringSpeed       float64 `yaml:"hiring_speed"`       // 雇佣速度
	FiringSpeed       float64 `yaml:"firing_speed"`       // 解雇速度
}

// Policy 政府政策开关与参数
type Policy struct {
	TaxStructure             int32   `yaml:"tax_structure"`              // 税基开关，>=5启用财富税模块
	IncomeTaxRate            float64 `yaml:"income_tax_rate"`            // 所得税率
	WealthTaxRate            float64 `yaml:"wealth_tax_rate"`            // 财富税率
	WealthTaxThreshold       float64 `yaml:"wealth_tax_threshold"`       // 财富税起征点
	TransferTargetPercentile float64 `yaml:"transfer_target_percentile"` // 转移支付目标分位数
	TransferBudgetShare      float64 `yaml:"transfer_budget_share"`      // 财富税收入用于转移支付的比例
	BenefitRate              float64 `yaml:"benefit_rate"`               // 失业救济替代率
	BenefitBudgetShare       float64 `yaml:"benefit_budget_share"`       // 失业救济实际拨付比例
	AuditProbability         float64 `yaml:"audit_probability"`          // 基础审计概率
	PenaltyRate              float64 `yaml:"penalty_rate"`               // 罚款倍数
	EnforcementSensitivity   float64 `yaml:"enforcement_sensitivity"`    // 审计概率对逃税率的敏感度η
	EnforcementDecay         float64 `yaml:"enforcement_decay"`          // 审计概率回归速度δ
}

// EconomyInitial 宏观初始值
type EconomyInitial struct {
	PriceIndex          float64 `yaml:"price_index"`          // 初始价格指数
	RealDemand          float64 `yaml:"real_demand"`          // 初始实际需求
	CapacityUtilization float64 `yaml:"capacity_utilization"` // 初始产能利用率
	CapitalStock        float64 `yaml:"capital_stock"`        // 初始资本存量（名义）
	Deposits            float64 `yaml:"deposits"`             // 家庭初始存款总额
	AutonomousDemand    float64 `yaml:"autonomous_demand"`    // 初始非家庭需求（投资+政府）
	DisposableIncome    float64 `yaml:"disposable_income"`    // 家庭初始可支配收入总额
	RealAutonomous      float64 `yaml:"real_autonomous"`      // 人均初始实际自主消费
}

// Economy 外部宏观环境参数
type Economy struct {
	Initial              EconomyInitial `yaml:"initial"`
	CapacityGrowth       float64        `yaml:"capacity_growth"`        // 每期产能增长率
	AutonomousGrowth     float64        `yaml:"autonomous_growth"`      // 每期非家庭需求增长率
	Inflation            float64        `yaml:"inflation"`              // 每期国内通胀率
	WageShare            float64        `yaml:"wage_share"`             // 工资份额
	ProfitDistribution   float64        `yaml:"profit_distribution"`    // 利润分配比例
	BaseInterestRate     float64        `yaml:"base_interest_rate"`     // 央行基准利率
	DepositSpread        float64        `yaml:"deposit_spread"`         // 存款利率 = 基准利率*存款系数
	LoanSpread           float64        `yaml:"loan_spread"`            // 短期贷款利率 = 基准利率*(1+贷款加成)
	ExternalInterestRate float64        `yaml:"external_interest_rate"` // 离岸利率
	ForeignPrice         float64        `yaml:"foreign_price"`          // 外国价格
	ForeignInflation     float64        `yaml:"foreign_inflation"`      // 外国通胀率
	ExchangeRate         float64        `yaml:"exchange_rate"`          // 汇率
	QualityGrowth        float64        `yaml:"quality_growth"`         // 年度质量增长率
	AssetInflation       float64        `yaml:"asset_inflation"`        // 每期资产价格涨幅
	DemandMetByImports   float64        `yaml:"demand_met_by_imports"`  // 未满足需求由进口满足的比例
}

// SQLite SQLite输出配置
type SQLite struct {
	Path string `yaml:"path"` // 数据库文件路径，为空则不输出
}

// Mongo MongoDB输出配置
type Mongo struct {
	URI string `yaml:"uri"` // 为空则不输出
	DB  string `yaml:"db"`
	Col string `yaml:"col"`
}

// Output 输出配置
type Output struct {
	SQLite     SQLite `yaml:"sqlite,omitempty"`
	Mongo      Mongo  `yaml:"mongo,omitempty"`
	Snapshot   string `yaml:"snapshot,omitempty"`    // 结束时保存的家庭快照路径
	Households bool   `yaml:"households,omitempty"` // 结束时写出家庭截面
}

// Server RPC服务配置
type Server struct {
	Listen string `yaml:"listen"` // 监听地址
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含输入、控制、人口、行为参数、政策、宏观环境、输出等所有配置项
type Config struct {
	Input      Input      `yaml:"input,omitempty"` // 输入
	Control    Control    `yaml:"control"`         // 模拟过程控制
	Population Population `yaml:"population"`      // 人口
	Household  Household  `yaml:"household"`       // 家庭行为
	Employment Employment `yaml:"employment"`      // 就业
	Policy     Policy     `yaml:"policy"`          // 政策
	Economy    Economy    `yaml:"economy"`         // 宏观环境
	Output     Output     `yaml:"output,omitempty"`
	Server     Server     `yaml:"server,omitempty"`
}
