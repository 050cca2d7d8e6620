package config

import (
	"fmt"
)

// WealthTaxStructure 税基开关达到该值后启用财富税、转移支付与逃税模块
const WealthTaxStructure = 5

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，补全默认值并完成校验
// 说明：配置在运行期间只读，所有管理器共享同一份实例
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，补全默认值并进行范围校验
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针，配置不合法时返回错误
// 算法说明：
// 1. 对未设置的控制参数填充默认值（年频率4，心跳50期）
// 2. 校验人口规模、比例与分位数的取值范围
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if config.Control.AnnualFrequency <= 0 {
		config.Control.AnnualFrequency = 4
	}
	if config.Control.HeartbeatInterval <= 0 {
		config.Control.HeartbeatInterval = 50
	}
	if config.Household.EvasionConcentration <= 0 {
		config.Household.EvasionConcentration = 4
	}
	if err := validate(config); err != nil {
		return nil, err
	}
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control

	return rc, nil
}

func validate(c Config) error {
	if c.Population.Total <= 0 {
		return fmt.Errorf("population.total must be positive, got %d", c.Population.Total)
	}
	if c.Population.CapitalistShare < 0 || c.Population.CapitalistShare > 1 {
		return fmt.Errorf("population.capitalist_share must be in [0,1], got %v", c.Population.CapitalistShare)
	}
	if c.Control.Step.Total < 0 {
		return fmt.Errorf("control.step.total must not be negative, got %d", c.Control.Step.Total)
	}
	for name, v := range map[string]float64{
		"household.liquidity_preference":     c.Household.LiquidityPreference,
		"household.propensity_to_evade":      c.Household.PropensityToEvade,
		"household.capitalist_deposit_share": c.Household.CapitalistDepositShare,
		"policy.audit_probability":           c.Policy.AuditProbability,
		"policy.enforcement_decay":           c.Policy.EnforcementDecay,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}
	if c.Policy.IncomeTaxRate < 0 || c.Policy.WealthTaxRate < 0 {
		return fmt.Errorf("tax rates must not be negative")
	}
	return nil
}

// Annual 每年的期数
func (rc *RuntimeConfig) Annual() int32 {
	return rc.C.AnnualFrequency
}

// WealthTaxEnabled 是否启用财富税模块
func (rc *RuntimeConfig) WealthTaxEnabled() bool {
	return rc.All.Policy.TaxStructure >= WealthTaxStructure
}

// TransferTargetPercentile 转移支付目标分位数，超出(0,1]时取中位数
func (rc *RuntimeConfig) TransferTargetPercentile() float64 {
	p := rc.All.Policy.TransferTargetPercentile
	if p <= 0 || p > 1 {
		return 0.5
	}
	return p
}
