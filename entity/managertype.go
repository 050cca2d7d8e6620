package entity

// Manager依赖倒置

// ecosim/economy.go的依赖倒置
type IEconomy interface {
	Prepare(t int32, fb Feedback) // 准备阶段：形成当期宏观变量与政府预算
	SetWealthTaxRevenue(v float64) // 财富税收入汇总后确定转移支付预算

	Macro() Macro   // 当期宏观变量
	Fiscal() Fiscal // 当期政府侧变量
}

// entity/population/aggregator.go的依赖倒置
type IPopulation interface {
	Country() Country // 当期国家层面变量
}

// entity/household/manager.go的依赖倒置
type IHouseholdManager interface {
	Len() int // 家庭数

	Prepare()          // 准备阶段：随机抽取并开启当期记录
	UpdateEmployment() // 更新阶段1：就业转换
	UpdateTaxes()      // 更新阶段2：财富税、逃税与审计
	UpdateBudget()     // 更新阶段3：收入、消费、借贷与存量
	Commit()           // 提交当期记录
}
