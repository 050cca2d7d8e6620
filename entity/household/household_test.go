package household_test

import (
	"context"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-household/clock"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/randengine"
)

// fakeEconomy 固定宏观环境
type fakeEconomy struct {
	macro  entity.Macro
	fiscal entity.Fiscal
}

func (e *fakeEconomy) Prepare(t int32, fb entity.Feedback) { e.macro.Period = t }
func (e *fakeEconomy) SetWealthTaxRevenue(v float64)       {}
func (e *fakeEconomy) Macro() entity.Macro                 { return e.macro }
func (e *fakeEconomy) Fiscal() entity.Fiscal               { return e.fiscal }

type fakePopulation struct {
	country entity.Country
}

func (p *fakePopulation) Country() entity.Country { return p.country }

type fakeContext struct {
	clock *clock.Clock
	rc    *config.RuntimeConfig
	rng   *randengine.Engine
	econ  *fakeEconomy
	pop   *fakePopulation
	hm    *household.HouseholdManager
}

func (c *fakeContext) Clock() *clock.Clock                        { return c.clock }
func (c *fakeContext) RuntimeConfig() *config.RuntimeConfig       { return c.rc }
func (c *fakeContext) Rand() *randengine.Engine                   { return c.rng }
func (c *fakeContext) Economy() entity.IEconomy                   { return c.econ }
func (c *fakeContext) Population() entity.IPopulation             { return c.pop }
func (c *fakeContext) HouseholdManager() entity.IHouseholdManager { return c.hm }

func testMacro() entity.Macro {
	return entity.Macro{
		CPI:                 1,
		DomesticPrice:       1,
		LaggedDomesticPrice: 1,
		ForeignPrice:        1,
		ExchangeRate:        1,
		CapacityUtilization: 0.85,
		TotalWages:          400,
		TotalProfits:        150,
		DemandMet:           1,
		LaggedDemandMet:     1,
		DemandMetByImports:  1,
		BaseRate:            0.005,
		DepositRate:         0.0025,
		ShortTermRate:       0.0075,
		ExternalRate:        0.006,
		AssetInflation:      0.005,
		QualityGrowth:       0.01,
	}
}

func newTestContext(t *testing.T, mutate func(c *config.Config)) *fakeContext {
	cfg := config.Default()
	cfg.Population.Total = 40
	cfg.Population.CapitalistShare = 0.25
	if mutate != nil {
		mutate(&cfg)
	}
	rc, err := config.NewRuntimeConfig(cfg)
	require.NoError(t, err)
	ctx := &fakeContext{
		clock: clock.New(cfg.Control.Step, rc.Annual()),
		rc:    rc,
		rng:   randengine.New(cfg.Control.Seed, cfg.Control.SeedOffset),
		econ:  &fakeEconomy{macro: testMacro(), fiscal: entity.Fiscal{AuditProbability: 0.05}},
		pop:   &fakePopulation{},
	}
	ctx.hm = household.NewManager(ctx)
	return ctx
}

func build(t *testing.T, ctx *fakeContext) []*household.Household {
	rc := ctx.rc
	templates := map[entity.HouseholdType]*household.Template{
		entity.Worker:     household.DefaultTemplate(rc.All.Household, entity.Worker),
		entity.Capitalist: household.DefaultTemplate(rc.All.Household, entity.Capitalist),
	}
	hs, err := household.NewBuilder(rc, ctx.rng, templates).Build()
	require.NoError(t, err)
	return hs
}

// step 推进一期：国家层面变量由测试根据家庭当期状态直接给出
func step(ctx *fakeContext) {
	ctx.clock.Advance()
	m := ctx.hm
	m.Prepare()
	m.UpdateEmployment()
	c := entity.Country{Households: int32(m.Len()), MedianIncome: 1}
	for _, h := range m.Data() {
		if h.State().EmploymentStatus == entity.Employed {
			c.TotalEmployment++
			c.TotalEmployedSkill += h.Params().Skill
		}
	}
	ctx.pop.country = c
	m.UpdateTaxes()
	m.UpdateBudget()
	m.Commit()
}

func TestClassSizes(t *testing.T) {
	w, c := household.ClassSizes(1000, 0.05)
	assert.Equal(t, int32(950), w)
	assert.Equal(t, int32(50), c)
	w, c = household.ClassSizes(3, 1.5)
	assert.Equal(t, int32(0), w)
	assert.Equal(t, int32(3), c)
}

func TestBuildProfitSharesSumToOne(t *testing.T) {
	ctx := newTestContext(t, nil)
	hs := build(t, ctx)
	require.Len(t, hs, 40)
	caps := lo.Filter(hs, func(h *household.Household, _ int) bool { return h.Type() == entity.Capitalist })
	require.Len(t, caps, 10)
	sum := lo.SumBy(caps, func(h *household.Household) float64 { return h.Params().ProfitShare })
	assert.InDelta(t, 1.0, sum, 1e-9)
	// 工人在前，ID连续
	for i, h := range hs {
		assert.Equal(t, int32(i+1), h.ID())
		if i < 30 {
			assert.Equal(t, entity.Worker, h.Type())
			assert.Equal(t, entity.Employed, h.State().EmploymentStatus)
		} else {
			assert.Equal(t, entity.NotInLaborForce, h.State().EmploymentStatus)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a := build(t, newTestContext(t, nil))
	b := build(t, newTestContext(t, nil))
	for i := range a {
		assert.Equal(t, a[i].Params(), b[i].Params())
	}
}

func TestBuildMissingTemplate(t *testing.T) {
	ctx := newTestContext(t, nil)
	templates := map[entity.HouseholdType]*household.Template{
		entity.Worker: household.DefaultTemplate(ctx.rc.All.Household, entity.Worker),
	}
	_, err := household.NewBuilder(ctx.rc, ctx.rng, templates).Build()
	assert.Error(t, err)
}

func TestBuildInitialStocks(t *testing.T) {
	ctx := newTestContext(t, nil)
	hs := build(t, ctx)
	init := ctx.rc.All.Economy.Initial
	deposits := lo.SumBy(hs, func(h *household.Household) float64 { return h.State().Deposits })
	assert.InDelta(t, init.Deposits, deposits, 1e-6)
	for _, h := range hs {
		s := h.State()
		assert.InDelta(t, s.ReferenceIncome*init.PriceIndex, s.DisposableIncome, 1e-12)
		assert.InDelta(t, s.Deposits+s.FinancialAssets-s.Loans, s.NetWealth, 1e-9)
		assert.Equal(t, 1, len(h.Loans()))
	}
}

func TestWageIdentity(t *testing.T) {
	for _, het := range []bool{false, true} {
		ctx := newTestContext(t, func(c *config.Config) { c.Control.Heterogeneous = het })
		ctx.hm.Init(build(t, ctx))
		step(ctx)
		wages := lo.SumBy(ctx.hm.Data(), func(h *household.Household) float64 { return h.State().Wage })
		assert.InDelta(t, ctx.econ.macro.TotalWages, wages, 1e-6, "heterogeneous=%v", het)
		profits := lo.SumBy(ctx.hm.Data(), func(h *household.Household) float64 { return h.State().ProfitIncome })
		assert.InDelta(t, ctx.econ.macro.TotalProfits, profits, 1e-6)
	}
}

func TestIdentitiesOverManyPeriods(t *testing.T) {
	ctx := newTestContext(t, func(c *config.Config) { c.Policy.WealthTaxThreshold = 10 })
	ctx.hm.Init(build(t, ctx))
	for i := 0; i < 12; i++ {
		step(ctx)
		for _, h := range ctx.hm.Data() {
			s := h.State()
			assert.InDelta(t, s.Deposits+s.FinancialAssets-s.Loans, s.NetWealth, 1e-9)
			assert.InDelta(t, s.FinancialAssets, s.DeclaredAssets+s.UndeclaredAssets, 1e-9)
			assert.InDelta(t, s.WealthTaxPayment, s.WealthTaxFromDeposits+s.WealthTaxFromAssets+s.WealthTaxFromBorrowing, 1e-9)
			assert.GreaterOrEqual(t, s.Deposits, 0.0)
			assert.GreaterOrEqual(t, len(h.Loans()), 1)
			assert.GreaterOrEqual(t, s.MaxDebtRate, 0.05)
			assert.LessOrEqual(t, s.MaxDebtRate, 1.0)
			assert.GreaterOrEqual(t, s.ImportsShare, 0.0)
			assert.LessOrEqual(t, s.ImportsShare, 0.95)
			assert.Equal(t, h.Lag(1), s)
		}
	}
}

func TestHireFireProbabilityBounds(t *testing.T) {
	c := config.Employment{}
	for _, skill := range []float64{0, 0.1, 1, 5, 100} {
		for _, gap := range []float64{-10, -0.5, 0, 0.5, 10} {
			h := household.HireProbability(c, skill, gap)
			f := household.FireProbability(c, skill, gap)
			assert.True(t, h >= 0 && h <= 0.5)
			assert.True(t, f >= 0 && f <= 0.2)
		}
	}
	assert.InDelta(t, 0.02, household.HireProbability(c, 1, 0), 1e-12)
	assert.InDelta(t, 0.01, household.FireProbability(c, 1, 0), 1e-12)
}

func TestNextEmploymentStatus(t *testing.T) {
	c := config.Employment{}
	assert.Equal(t, entity.NotInLaborForce, household.NextEmploymentStatus(entity.Capitalist, entity.Employed, c, 1, 0.85, 0))
	assert.Equal(t, entity.Employed, household.NextEmploymentStatus(entity.Worker, entity.Unemployed, c, 1, 0.85, 0.01))
	assert.Equal(t, entity.Unemployed, household.NextEmploymentStatus(entity.Worker, entity.Unemployed, c, 1, 0.85, 0.5))
	assert.Equal(t, entity.Unemployed, household.NextEmploymentStatus(entity.Worker, entity.Employed, c, 1, 0.85, 0.001))
	// 工人的负状态视为就业
	assert.Equal(t, entity.Employed, household.NextEmploymentStatus(entity.Worker, entity.NotInLaborForce, c, 1, 0.85, 0.9))
}

func TestWealthTaxScenario(t *testing.T) {
	// 起征点1000，税率0.02，上期净财富500与2000
	a := household.WealthTaxOwed(300, 0, 200, 0, 1000, 0.02)
	b := household.WealthTaxOwed(1200, 0, 800, 0, 1000, 0.02)
	assert.Equal(t, 0.0, a)
	assert.InDelta(t, 20.0, b, 1e-12)

	src := household.PayWealthTax(b, 10, 0.3, 0.5, 0.25, 800)
	assert.InDelta(t, 7.0, src.FromDeposits, 1e-12)
	assert.InDelta(t, 20.0, src.Total(), 1e-12)
	// 负债空间0.5：余额一半出售资产，一半借款
	assert.InDelta(t, 6.5, src.FromAssets, 1e-12)
	assert.InDelta(t, 6.5, src.FromBorrowing, 1e-12)

	// 资产不足时其余全部借款
	src = household.PayWealthTax(b, 0, 0.3, 0.5, 0.5, 3)
	assert.InDelta(t, 3.0, src.FromAssets, 1e-12)
	assert.InDelta(t, 17.0, src.FromBorrowing, 1e-12)

	// 存款支付后余额不大于0.001时不再出售资产或借款，存款部分不超过可动用存款
	src = household.PayWealthTax(10.0005, 20, 0.5, 0.5, 0, 800)
	assert.Equal(t, 10.0, src.FromDeposits)
	assert.Equal(t, 0.0, src.FromAssets)
	assert.Equal(t, 0.0, src.FromBorrowing)

	// 离岸存款与隐匿资产不计入税基
	assert.InDelta(t, 10.0, household.WealthTaxOwed(1200, 200, 800, 300, 1000, 0.02), 1e-12)
}

func TestFlightDecisionScenario(t *testing.T) {
	// 0.5·0.02 = 0.01 < 0.04 - 0.01
	flight, amount := household.FlightDecision(true, 500, 0.5, 0.02, 0.04, 0.01)
	assert.False(t, flight)
	assert.Equal(t, 0.0, amount)

	flight, amount = household.FlightDecision(true, 500, 0.9, 0.05, 0.01, 0.005)
	assert.True(t, flight)
	assert.Equal(t, 500.0, amount)

	flight, _ = household.FlightDecision(false, 500, 0.9, 0.05, 0.01, 0.005)
	assert.False(t, flight)
}

func TestRepatriationBounded(t *testing.T) {
	r := household.Repatriation(household.RepatriationInputs{
		LagOffshore:     100,
		LagDomestic:     0,
		DesiredExpenses: 500,
		Propensity:      0.5,
		Rate:            0.02,
		DomesticRate:    0.04,
		OffshoreRate:    0.01,
	})
	assert.Equal(t, 100.0, r)
	assert.Equal(t, 0.0, household.Repatriation(household.RepatriationInputs{DesiredExpenses: 10}))
}

func TestSplitDeposits(t *testing.T) {
	// 外逃额超过当期总存款时只转移总存款
	off, dom, moved := household.SplitDeposits(380.671, 0, 399.351, 0, 0)
	assert.InDelta(t, 380.671, off, 1e-12)
	assert.Equal(t, 0.0, dom)
	assert.InDelta(t, 380.671, moved, 1e-12)

	// 上期离岸存量加利息已超过总存款
	off, dom, moved = household.SplitDeposits(100, 120, 50, 1.2, 0)
	assert.Equal(t, 100.0, off)
	assert.Equal(t, 0.0, dom)
	assert.Equal(t, 0.0, moved)

	off, dom, moved = household.SplitDeposits(500, 100, 0, 1, 30)
	assert.InDelta(t, 71.0, off, 1e-12)
	assert.InDelta(t, 429.0, dom, 1e-12)
	assert.Equal(t, 0.0, moved)

	off, dom, _ = household.SplitDeposits(50, 0, 0, 0.5, 100)
	assert.Equal(t, 0.0, off)
	assert.Equal(t, 50.0, dom)

	for _, c := range [][5]float64{{380, 0, 400, 0, 0}, {10, 50, 0, 0.3, 0}, {0, 20, 5, 0.1, 0}, {300, 40, 120, 0.2, 10}} {
		off, dom, _ := household.SplitDeposits(c[0], c[1], c[2], c[3], c[4])
		assert.GreaterOrEqual(t, off, 0.0)
		assert.GreaterOrEqual(t, dom, 0.0)
		assert.InDelta(t, c[0], off+dom, 1e-9)
	}
}

func TestEvasion(t *testing.T) {
	assert.Equal(t, 0.0, household.HideFraction(0.5, 0.5, 2))
	assert.InDelta(t, 0.45, household.HideFraction(0.5, 0.05, 2), 1e-12)
	assert.Equal(t, 0.0, household.Penalty(false, 100, 2, 0.02))
	assert.Equal(t, 0.0, household.Penalty(true, 0.001, 2, 0.02))
	assert.InDelta(t, 4.0, household.Penalty(true, 100, 2, 0.02), 1e-12)
}

func TestConsumptionRules(t *testing.T) {
	assert.InDelta(t, 0.5, household.IncomePercentile(1, 0), 1e-12)
	assert.InDelta(t, 2.0/3, household.IncomePercentile(2, 1), 1e-12)
	// 模式0时参考收入等于当期收入，模式2下λ⁻=0时不下降
	assert.Equal(t, 3.0, household.ReferenceIncome(0, 3, 10, 0.5, 0.5))
	assert.Equal(t, 10.0, household.ReferenceIncome(2, 3, 10, 0.5, 0))
	assert.Equal(t, 0.01, household.ReferenceIncome(0, -1, 10, 0.5, 0.5))

	p := config.Propensity{Steepness: 5, Slope: 1, Shift: 0.5, Asymmetry: 1}
	base := household.Propensity(p, 0.5, 0, 0.5, 1, 2)
	assert.InDelta(t, 0.5, base, 1e-12)
	boosted := household.Propensity(p, 0.5, 1, 0.5, 1, 2)
	assert.InDelta(t, 0.75, boosted, 1e-12)

	dom, imp := household.Allocate(10, 8, 5, 1, 1)
	assert.Equal(t, 8.0, dom)
	assert.Equal(t, 2.0, imp)
	dom, imp = household.Allocate(5, 8, 5, 0, 1)
	assert.Equal(t, 8.0, dom)
	assert.InDelta(t, 4.92, imp, 1e-12)

	assert.InDelta(t, 0.95, household.ImportsShare(10, 1, 1, 1, 1, 0), 1e-12)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.hm.Init(build(t, ctx))
	step(ctx)
	step(ctx)
	path := filepath.Join(t.TempDir(), "households.pb")
	require.NoError(t, ctx.hm.SaveSnapshot(path))

	restored, err := household.LoadSnapshot(path, 6)
	require.NoError(t, err)
	require.Len(t, restored, ctx.hm.Len())
	for i, h := range restored {
		orig := ctx.hm.Data()[i]
		assert.Equal(t, orig.ID(), h.ID())
		assert.Equal(t, orig.Type(), h.Type())
		assert.InDelta(t, orig.State().NetWealth, h.Lag(1).NetWealth, 1e-9)
		assert.Equal(t, orig.Loans(), h.Loans())
	}
}

func TestGetOrError(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.hm.Init(build(t, ctx))
	h, err := ctx.hm.GetOrError(1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.ID())
	_, err = ctx.hm.GetOrError(1000)
	assert.Error(t, err)

	res, err := ctx.hm.GetHouseholds(context.Background(), connect.NewRequest(&household.GetHouseholdsRequest{IDs: []int32{2, 1000, 1}}))
	require.NoError(t, err)
	assert.Equal(t, []int32{1000}, res.Msg.FailedIDs)
	require.Len(t, res.Msg.Households, 2)
	assert.Equal(t, int32(2), res.Msg.Households[0].ID)
	assert.Equal(t, int32(1), res.Msg.Households[1].ID)

	res, err = ctx.hm.GetHouseholds(context.Background(), connect.NewRequest(&household.GetHouseholdsRequest{}))
	require.NoError(t, err)
	assert.Len(t, res.Msg.Households, ctx.hm.Len())
	assert.Empty(t, res.Msg.FailedIDs)
}
