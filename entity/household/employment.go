package household

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
)

const (
	maxHireProbability = 0.5
	maxFireProbability = 0.2
)

// employmentDefaults 非正参数取默认值
func employmentDefaults(c config.Employment) config.Employment {
	if c.TargetUtilization <= 0 {
		c.TargetUtilization = 0.85
	}
	if c.BaseHireRate <= 0 {
		c.BaseHireRate = 0.02
	}
	if c.BaseFireRate <= 0 {
		c.BaseFireRate = 0.01
	}
	if c.HiringSpeed <= 0 {
		c.HiringSpeed = 0.5
	}
	if c.FiringSpeed <= 0 {
		c.FiringSpeed = 0.2
	}
	return c
}

// HireProbability 失业工人被雇佣的概率
// 功能：P = clamp(base·(1 + hs·max(0, gap))·min(2, skill), 0, 0.5)
// 参数：c-就业参数，skill-技能，gap-产能利用率缺口（CU - 目标）
func HireProbability(c config.Employment, skill, gap float64) float64 {
	c = employmentDefaults(c)
	p := c.BaseHireRate * (1 + c.HiringSpeed*math.Max(0, gap)) * math.Min(2, skill)
	return lo.Clamp(p, 0, maxHireProbability)
}

// FireProbability 就业工人被解雇的概率
// 功能：P = clamp(base·(1 + fs·max(0, -gap))/max(0.5, skill), 0, 0.2)
func FireProbability(c config.Employment, skill, gap float64) float64 {
	c = employmentDefaults(c)
	p := c.BaseFireRate * (1 + c.FiringSpeed*math.Max(0, -gap)) / math.Max(0.5, skill)
	return lo.Clamp(p, 0, maxFireProbability)
}

// NextEmploymentStatus 就业状态转换
// 功能：根据上期状态、产能利用率缺口与预抽随机数决定当期状态
// 参数：typ-阶层，prev-上期状态，c-就业参数，skill-技能，cu-产能利用率，draw-[0,1)均匀随机数
// 算法说明：
// 1. 资本家返回NotInLaborForce
// 2. 工人上期状态为负时视为就业
// 3. 失业者在draw < P_hire时被雇佣；就业者在draw < P_fire时被解雇
func NextEmploymentStatus(typ entity.HouseholdType, prev entity.EmploymentStatus, c config.Employment, skill, cu, draw float64) entity.EmploymentStatus {
	if typ == entity.Capitalist {
		return entity.NotInLaborForce
	}
	gap := cu - employmentDefaults(c).TargetUtilization
	if prev < 0 {
		prev = entity.Employed
	}
	if prev == entity.Unemployed {
		if draw < HireProbability(c, skill, gap) {
			return entity.Employed
		}
		return entity.Unemployed
	}
	if draw < FireProbability(c, skill, gap) {
		return entity.Unemployed
	}
	return entity.Employed
}
