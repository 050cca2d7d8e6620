package config

// Default 默认配置
// 功能：返回一套可直接运行的季度频率参数
// 说明：命令行未提供配置时使用，测试也以此为基础修改
func Default() Config {
	return Config{
		Control: Control{
			Step:              ControlStep{Start: 0, Total: 200},
			AnnualFrequency:   4,
			Seed:              1,
			HeartbeatInterval: 50,
			Heterogeneous:     true,
		},
		Population: Population{
			Total:           1000,
			CapitalistShare: 0.05,
		},
		Household: Household{
			SkillStdDev:          0.4,
			AutonomousAdjustment: 0.5,
			ImportPropensity:     0.18,
			LiquidityPreference:  0.3,
			PropensityToEvade:    0.3,
			EvasionConcentration: 4,
			Habit: Habit{
				Mode:           1,
				InflationAlpha: 5,
				InflationBeta:  1,
				DeflationAlpha: 2,
				DeflationBeta:  5,
			},
			Propensity: Propensity{
				Steepness: 5,
				Slope:     1,
				Shift:     0.5,
				Asymmetry: 1,
			},
			Profit: Profit{
				Q:      1.5,
				Lambda: 1,
			},
			InitialMaxDebtRate:     0.5,
			DebtRateAdjustment:     0.05,
			RiskPremium:            1,
			CapitalistDepositShare: 0.6,
			InitialValuationRatio:  1,
		},
		Employment: Employment{
			TargetUtilization: 0.85,
			BaseHireRate:      0.02,
			BaseFireRate:      0.01,
			HiringSpeed:       0.5,
			FiringSpeed:       0.2,
		},
		Policy: Policy{
			TaxStructure:             5,
			IncomeTaxRate:            0.2,
			WealthTaxRate:            0.02,
			WealthTaxThreshold:       100,
			TransferTargetPercentile: 0.4,
			TransferBudgetShare:      1,
			BenefitRate:              0.4,
			BenefitBudgetShare:       1,
			AuditProbability:         0.05,
			PenaltyRate:              2,
			EnforcementSensitivity:   0.5,
			EnforcementDecay:         0.1,
		},
		Economy: Economy{
			Initial: EconomyInitial{
				PriceIndex:          1,
				RealDemand:          1000,
				CapacityUtilization: 0.85,
				CapitalStock:        4000,
				Deposits:            2000,
				AutonomousDemand:    300,
				DisposableIncome:    700,
				RealAutonomous:      0.2,
			},
			CapacityGrowth:       0.005,
			AutonomousGrowth:     0.005,
			Inflation:            0.005,
			WageShare:            0.65,
			ProfitDistribution:   0.8,
			BaseInterestRate:     0.005,
			DepositSpread:        0.5,
			LoanSpread:           0.5,
			ExternalInterestRate: 0.006,
			ForeignPrice:         1,
			ForeignInflation:     0.005,
			ExchangeRate:         1,
			QualityGrowth:        0.01,
			AssetInflation:       0.005,
			DemandMetByImports:   1,
		},
		Server: Server{Listen: ":51102"},
	}
}
