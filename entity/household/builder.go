package household

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/container"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/randengine"
)

const (
	defaultHabitPersistence = 0.5
	defaultHabitInflation   = 0.83
	defaultHabitDeflation   = 0.29
)

// Template 种子家庭模板
// 功能：同一阶层的家庭由模板复制后再抽取个体参数
// 说明：数值字段为0时使用配置中的均值
type Template struct {
	Type                 string  `yaml:"type" bson:"type" json:"type"`
	AutonomousAdjustment float64 `yaml:"autonomous_adjustment,omitempty" bson:"autonomous_adjustment,omitempty" json:"autonomous_adjustment,omitempty"`
	ImportPropensity     float64 `yaml:"import_propensity,omitempty" bson:"import_propensity,omitempty" json:"import_propensity,omitempty"`
	LiquidityPreference  float64 `yaml:"liquidity_preference,omitempty" bson:"liquidity_preference,omitempty" json:"liquidity_preference,omitempty"`
	PropensityToEvade    float64 `yaml:"propensity_to_evade,omitempty" bson:"propensity_to_evade,omitempty" json:"propensity_to_evade,omitempty"`
	MaxDebtRate          float64 `yaml:"max_debt_rate,omitempty" bson:"max_debt_rate,omitempty" json:"max_debt_rate,omitempty"`
}

// DefaultTemplate 由配置生成的阶层模板
func DefaultTemplate(c config.Household, typ entity.HouseholdType) *Template {
	return &Template{
		Type:                 typ.String(),
		AutonomousAdjustment: c.AutonomousAdjustment,
		ImportPropensity:     c.ImportPropensity,
		LiquidityPreference:  c.LiquidityPreference,
		PropensityToEvade:    c.PropensityToEvade,
		MaxDebtRate:          c.InitialMaxDebtRate,
	}
}

// GroupTemplates 按阶层整理种子模板，同一阶层有多个模板时取第一个
func GroupTemplates(templates []*Template) (map[entity.HouseholdType]*Template, error) {
	res := make(map[entity.HouseholdType]*Template)
	for i, t := range templates {
		typ, ok := entity.ParseHouseholdType(t.Type)
		if !ok {
			return nil, fmt.Errorf("template #%d: unknown household type %q", i, t.Type)
		}
		if _, ok := res[typ]; !ok {
			res[typ] = t
		}
	}
	return res, nil
}

// Builder 家庭构建器
// 功能：确定人口规模、抽取个体参数并分配一致的初始存量
type Builder struct {
	rc        *config.RuntimeConfig
	rng       *randengine.Engine
	templates map[entity.HouseholdType]*Template
}

// NewBuilder 创建构建器
// 参数：rc-运行时配置，rng-全局随机数引擎，templates-各阶层模板（可缺失，Build时检查）
func NewBuilder(rc *config.RuntimeConfig, rng *randengine.Engine, templates map[entity.HouseholdType]*Template) *Builder {
	if templates == nil {
		templates = make(map[entity.HouseholdType]*Template)
	}
	return &Builder{rc: rc, rng: rng, templates: templates}
}

// HistoryDepth 家庭滞后历史的深度：一年的期数加2
func HistoryDepth(annual int32) int {
	return int(annual) + 2
}

// member 构建期间的家庭占位，记录来源模板
type member struct {
	container.IncrementalItemBase
	tpl *Template
}

// ClassSizes 阶层规模：资本家 = round(总数·资本家比例)，其余为工人
func ClassSizes(total int32, capitalistShare float64) (workers, capitalists int32) {
	capitalists = int32(math.Round(float64(total) * lo.Clamp(capitalistShare, 0, 1)))
	workers = total - capitalists
	return
}

// resize 用增量数组将模板复制到n个成员
func resize(tpl *Template, n int) []*member {
	arr := container.NewIncrementalArray(&member{tpl: tpl})
	arr.Resize(n, func(int) *member { return &member{tpl: tpl} })
	arr.Prepare()
	return arr.Data()
}

// Build 构建全部家庭
// 功能：按规模复制模板，依插入顺序抽取参数，分配初始存量，并把初始状态提交为第0期记录
// 返回：工人在前、资本家在后的家庭列表，ID从1开始；需要成员的阶层没有模板时返回错误
// 算法说明：
// 1. 两个阶层各自用增量数组调整到目标规模
// 2. 按插入顺序抽取技能、自主消费调整、流动性偏好、习惯参数、利润份额、逃税倾向
// 3. 利润份额归一化
// 4. 初始收入与存款按资本家占比在阶层间分配，阶层内按技能或利润份额分配
func (b *Builder) Build() ([]*Household, error) {
	all := b.rc.All
	workers, capitalists := ClassSizes(all.Population.Total, all.Population.CapitalistShare)
	sizes := map[entity.HouseholdType]int32{entity.Worker: workers, entity.Capitalist: capitalists}

	depth := HistoryDepth(b.rc.Annual())
	households := make([]*Household, 0, workers+capitalists)
	id := int32(1)
	for _, typ := range entity.HouseholdTypes {
		n := sizes[typ]
		if n == 0 {
			continue
		}
		tpl, ok := b.templates[typ]
		if !ok || tpl == nil {
			return nil, fmt.Errorf("no template for %d %v households", n, typ)
		}
		for _, mb := range resize(tpl, int(n)) {
			households = append(households, newHousehold(id, typ, b.drawParams(typ, mb.tpl), depth))
			id++
		}
	}
	normalizeProfitShares(households)
	b.seedStocks(households)
	for _, h := range households {
		h.commit()
	}
	b.logSummary(households)
	return households, nil
}

// drawParams 抽取单个家庭的个体参数
// 说明：同质模式下全部取均值，不消耗随机数
func (b *Builder) drawParams(typ entity.HouseholdType, tpl *Template) Params {
	c := b.rc.All.Household
	het := b.rc.C.Heterogeneous
	p := Params{
		Skill:                1,
		ProfitShare:          1,
		AutonomousAdjustment: lo.Ternary(tpl.AutonomousAdjustment > 0, tpl.AutonomousAdjustment, c.AutonomousAdjustment),
		ImportPropensity:     lo.Ternary(tpl.ImportPropensity > 0, tpl.ImportPropensity, c.ImportPropensity),
		LiquidityPreference:  lo.Ternary(tpl.LiquidityPreference > 0, tpl.LiquidityPreference, c.LiquidityPreference),
		HabitPersistence:     defaultHabitPersistence,
		HabitInflation:       defaultHabitInflation,
		HabitDeflation:       defaultHabitDeflation,
		PropensityToEvade:    lo.Ternary(tpl.PropensityToEvade > 0, tpl.PropensityToEvade, c.PropensityToEvade),
	}
	if het {
		if sigma := c.SkillStdDev; sigma > 0 {
			p.Skill = b.rng.LogNormal(-sigma*sigma/2, sigma)
		}
		p.AutonomousAdjustment = lo.Clamp(p.AutonomousAdjustment*b.rng.Normal(1, 0.2), 0, 1)
		p.LiquidityPreference = lo.Clamp(p.LiquidityPreference*b.rng.Normal(1, 0.3), 0.05, 0.95)
		p.HabitPersistence = b.rng.Uniform(0, 1)
		p.HabitInflation = b.rng.Beta(c.Habit.InflationAlpha, c.Habit.InflationBeta)
		if c.Habit.Mode != 2 {
			p.HabitDeflation = b.rng.Beta(c.Habit.DeflationAlpha, c.Habit.DeflationBeta)
		}
		if typ == entity.Capitalist {
			p.ProfitShare = b.rng.QExponential(c.Profit.Q, c.Profit.Lambda)
		}
		if mu := p.PropensityToEvade; mu > 0 && mu < 1 {
			k := c.EvasionConcentration
			p.PropensityToEvade = b.rng.Beta(mu*k, (1-mu)*k)
		}
	}
	if c.Habit.Mode == 2 {
		p.HabitDeflation = 0
	}
	return p
}

// normalizeProfitShares 资本家利润份额归一化，总和为0时平分
func normalizeProfitShares(households []*Household) {
	caps := lo.Filter(households, func(h *Household, _ int) bool { return h.typ == entity.Capitalist })
	if len(caps) == 0 {
		return
	}
	total := lo.SumBy(caps, func(h *Household) float64 { return h.params.ProfitShare })
	for _, h := range caps {
		if total > 0 {
			h.params.ProfitShare /= total
		} else {
			h.params.ProfitShare = 1 / float64(len(caps))
		}
	}
	for _, h := range households {
		if h.typ != entity.Capitalist {
			h.params.ProfitShare = 0
		}
	}
}

// seedStocks 分配初始存量
// 算法说明：
// 1. 资本家阶层获得capitalist_deposit_share比例的初始收入与存款，另一阶层为空时全部归于存在的阶层
// 2. 工人阶层内按技能占比、资本家阶层内按利润份额分配
// 3. 初始可支配收入 = 参考收入·CPI，金融资产 = 资本存量·估值比·利润份额
func (b *Builder) seedStocks(households []*Household) {
	all := b.rc.All
	init := all.Economy.Initial
	cpi := lo.Ternary(init.PriceIndex > 0, init.PriceIndex, 1.)
	groups := lo.GroupBy(households, func(h *Household) entity.HouseholdType { return h.typ })
	workers, capitalists := groups[entity.Worker], groups[entity.Capitalist]

	capShare := lo.Clamp(all.Household.CapitalistDepositShare, 0, 1)
	switch {
	case len(capitalists) == 0:
		capShare = 0
	case len(workers) == 0:
		capShare = 1
	}
	skillTotal := lo.SumBy(workers, func(h *Household) float64 { return h.params.Skill })

	for _, h := range households {
		weight := 0.
		if h.typ == entity.Capitalist {
			weight = capShare * h.params.ProfitShare
		} else if skillTotal > 0 {
			weight = (1 - capShare) * h.params.Skill / skillTotal
		}
		s := &h.cur
		s.Period = b.rc.C.Step.Start
		nominal := weight * init.DisposableIncome
		s.ReferenceIncome = math.Max(minReferenceIncome, nominal/cpi)
		s.DisposableIncome = s.ReferenceIncome * cpi
		s.RealDisposableIncome = s.ReferenceIncome
		s.AvgRealIncome = s.ReferenceIncome
		s.AvgNominalIncome = s.DisposableIncome
		s.AutonomousConsumption = init.RealAutonomous * h.params.AutonomousAdjustment
		s.Deposits = weight * init.Deposits
		s.DomesticDeposits = s.Deposits
		if h.typ == entity.Capitalist {
			s.FinancialAssets = init.CapitalStock * all.Household.InitialValuationRatio * h.params.ProfitShare
		}
		s.DeclaredAssets = s.FinancialAssets
		s.MaxDebtRate = lo.Clamp(all.Household.InitialMaxDebtRate, minMaxDebtRate, maxMaxDebtRate)
		s.NetWealth = s.Deposits + s.FinancialAssets
	}
}

func (b *Builder) logSummary(households []*Household) {
	groups := lo.GroupBy(households, func(h *Household) entity.HouseholdType { return h.typ })
	for _, typ := range entity.HouseholdTypes {
		g := groups[typ]
		if len(g) == 0 {
			continue
		}
		n := float64(len(g))
		log.Infof("built %s %v households: skill=%.3f liq=%.3f evade=%.3f deposits=%s",
			humanize.Comma(int64(len(g))), typ,
			lo.SumBy(g, func(h *Household) float64 { return h.params.Skill })/n,
			lo.SumBy(g, func(h *Household) float64 { return h.params.LiquidityPreference })/n,
			lo.SumBy(g, func(h *Household) float64 { return h.params.PropensityToEvade })/n,
			humanize.CommafWithDigits(lo.SumBy(g, func(h *Household) float64 { return h.cur.Deposits }), 2),
		)
	}
	if top := lo.MaxBy(groups[entity.Capitalist], func(a, b *Household) bool {
		return a.params.ProfitShare > b.params.ProfitShare
	}); top != nil {
		log.Infof("top profit share %.4f (household %d)", top.params.ProfitShare, top.id)
	}
}
