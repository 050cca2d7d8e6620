package population_test

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-household/clock"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/population"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/randengine"
)

type fixedEconomy struct {
	macro  entity.Macro
	fiscal entity.Fiscal
}

func (e *fixedEconomy) Prepare(t int32, fb entity.Feedback) { e.macro.Period = t }
func (e *fixedEconomy) SetWealthTaxRevenue(v float64) {
	e.fiscal.WealthTaxRevenue = v
	e.fiscal.DesiredTransfers = v
	e.fiscal.EffectiveTransfers = v
}
func (e *fixedEconomy) Macro() entity.Macro   { return e.macro }
func (e *fixedEconomy) Fiscal() entity.Fiscal { return e.fiscal }

type testContext struct {
	clock *clock.Clock
	rc    *config.RuntimeConfig
	rng   *randengine.Engine
	econ  *fixedEconomy
	hm    *household.HouseholdManager
	agg   *population.Aggregator
}

func (c *testContext) Clock() *clock.Clock                        { return c.clock }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig       { return c.rc }
func (c *testContext) Rand() *randengine.Engine                   { return c.rng }
func (c *testContext) Economy() entity.IEconomy                   { return c.econ }
func (c *testContext) Population() entity.IPopulation             { return c.agg }
func (c *testContext) HouseholdManager() entity.IHouseholdManager { return c.hm }

func newTestContext(t *testing.T, total int32, mutate func(c *config.Config)) *testContext {
	cfg := config.Default()
	cfg.Population.Total = total
	cfg.Population.CapitalistShare = 0.2
	cfg.Policy.WealthTaxThreshold = 5
	if mutate != nil {
		mutate(&cfg)
	}
	rc, err := config.NewRuntimeConfig(cfg)
	require.NoError(t, err)
	ctx := &testContext{
		clock: clock.New(cfg.Control.Step, rc.Annual()),
		rc:    rc,
		rng:   randengine.New(cfg.Control.Seed, 0),
		econ: &fixedEconomy{
			macro: entity.Macro{
				CPI: 1, DomesticPrice: 1, LaggedDomesticPrice: 1, ForeignPrice: 1, ExchangeRate: 1,
				CapacityUtilization: 0.8, TotalWages: 300, TotalProfits: 100, CapitalStock: 4000,
				LaggedNominalOutput: 600, DemandMet: 1, LaggedDemandMet: 1, DemandMetByImports: 1,
				BaseRate: 0.005, DepositRate: 0.0025, ShortTermRate: 0.0075, ExternalRate: 0.006,
			},
			fiscal: entity.Fiscal{EffectiveBenefits: 20, AuditProbability: 0.1},
		},
	}
	ctx.hm = household.NewManager(ctx)
	ctx.agg = population.NewAggregator(rc, ctx.hm)
	if total > 0 {
		templates := map[entity.HouseholdType]*household.Template{
			entity.Worker:     household.DefaultTemplate(rc.All.Household, entity.Worker),
			entity.Capitalist: household.DefaultTemplate(rc.All.Household, entity.Capitalist),
		}
		hs, err := household.NewBuilder(rc, ctx.rng, templates).Build()
		require.NoError(t, err)
		ctx.hm.Init(hs)
	} else {
		ctx.hm.Init(nil)
	}
	return ctx
}

// step 运行一期，诊断在提交当期记录之前执行
func (c *testContext) step(t *testing.T) (*population.Stats, []population.Diagnostic) {
	c.clock.Advance()
	c.econ.Prepare(c.clock.T, c.agg.Feedback())
	c.hm.Prepare()
	c.agg.PreScan()
	c.hm.UpdateEmployment()
	c.agg.EmploymentScan()
	c.hm.UpdateTaxes()
	c.agg.TaxScan()
	c.econ.SetWealthTaxRevenue(c.agg.Country().WealthTaxRevenue)
	c.hm.UpdateBudget()
	st, err := c.agg.Collect(context.Background(), c.econ.Macro())
	require.NoError(t, err)
	diags := population.Check(st, c.hm.Data(), c.econ.Macro(), c.econ.Fiscal(), c.rc.All.Policy.WealthTaxThreshold)
	c.hm.Commit()
	return st, diags
}

func TestPreScan(t *testing.T) {
	ctx := newTestContext(t, 50, nil)
	ctx.clock.Advance()
	ctx.hm.Prepare()
	ctx.agg.PreScan()
	c := ctx.agg.Country()
	assert.Equal(t, int32(50), c.Households)
	assert.Equal(t, int32(40), c.LaborForce)
	assert.Equal(t, int32(40), c.EmployedHouseholds)
	assert.Equal(t, int32(0), c.UnemployedHouseholds)
	assert.GreaterOrEqual(t, c.MedianIncome, 0.01)

	// 资格标记与资格线使用同一分位数定义
	eligible := lo.CountBy(ctx.hm.Data(), func(h *household.Household) bool {
		return h.State().TransferEligible
	})
	assert.Equal(t, int(c.TransferEligible), eligible)
	for _, h := range ctx.hm.Data() {
		assert.Equal(t, h.Lag(1).AvgRealIncome <= c.TransferThreshold, h.State().TransferEligible)
	}
}

func TestPreScanWithoutWealthTax(t *testing.T) {
	ctx := newTestContext(t, 50, func(c *config.Config) { c.Policy.TaxStructure = 3 })
	ctx.clock.Advance()
	ctx.hm.Prepare()
	ctx.agg.PreScan()
	assert.Equal(t, int32(0), ctx.agg.Country().TransferEligible)
	for _, h := range ctx.hm.Data() {
		assert.False(t, h.State().TransferEligible)
	}
}

func TestCollectIdentities(t *testing.T) {
	for _, het := range []bool{false, true} {
		ctx := newTestContext(t, 60, func(c *config.Config) { c.Control.Heterogeneous = het })
		for i := 0; i < 10; i++ {
			st, diags := ctx.step(t)
			assert.InDelta(t, ctx.econ.macro.TotalWages, st.Wages, 1e-6)
			assert.InDelta(t, ctx.econ.macro.TotalProfits, st.Profits, 1e-6)
			assert.InDelta(t, st.Deposits+st.FinancialAssets-st.Loans, st.NetWealth, 1e-6)
			assert.InDelta(t, st.WealthTaxRevenue, st.WealthTaxFromDeposits+st.WealthTaxFromAssets+st.WealthTaxFromBorrowing, 1e-9)
			assert.Equal(t, int32(60), st.Households)
			assert.Equal(t, st.Households, lo.SumBy(st.Classes, func(c population.ClassStats) int32 { return c.Households }))
			assert.True(t, st.UnemploymentRate >= 0 && st.UnemploymentRate <= 1)
			assert.True(t, st.Income.Gini >= 0 && st.Income.Gini <= 1)
			assert.InDelta(t, st.WealthTaxRevenue, ctx.econ.fiscal.WealthTaxRevenue, 1e-9)

			names := lo.Map(diags, func(d population.Diagnostic, _ int) string { return d.Name })
			assert.Contains(t, names, "evasion_consistency")
			assert.Contains(t, names, "wealth_tax_consistency")
			for _, d := range diags {
				assert.True(t, d.OK, "t=%d %s: %v", st.Period, d.Name, d.Value)
			}
			for _, h := range ctx.hm.Data() {
				s := h.State()
				assert.GreaterOrEqual(t, s.OffshoreDeposits, 0.0)
				assert.GreaterOrEqual(t, s.DomesticDeposits, 0.0)
				assert.InDelta(t, s.Deposits, s.DomesticDeposits+s.OffshoreDeposits, 1e-9, "household %d", h.ID())
			}
		}
	}
}

func TestTransfersExhaustBudget(t *testing.T) {
	ctx := newTestContext(t, 60, func(c *config.Config) { c.Policy.WealthTaxThreshold = 0.5 })
	for i := 0; i < 4; i++ {
		st, _ := ctx.step(t)
		if st.TransferEligible > 0 {
			assert.InDelta(t, ctx.econ.fiscal.EffectiveTransfers, st.Transfers, 1e-6)
		}
	}
}

func TestEmptyPopulation(t *testing.T) {
	ctx := newTestContext(t, 0, func(c *config.Config) { c.Population.Total = 1 })
	ctx.agg.PreScan()
	c := ctx.agg.Country()
	assert.Equal(t, int32(1), c.LaborForce)
	assert.Equal(t, 0.01, c.MedianIncome)
	st, err := ctx.agg.Collect(context.Background(), ctx.econ.macro)
	require.NoError(t, err)
	assert.Equal(t, int32(0), st.Households)
	assert.Equal(t, 0.0, st.UnemploymentRate)
	assert.Equal(t, 0.0, st.Income.Gini)
	assert.NotNil(t, st.Class(entity.Worker))
}

func TestFeedbackBeforeCollect(t *testing.T) {
	ctx := newTestContext(t, 10, nil)
	assert.False(t, ctx.agg.Feedback().Valid)
	ctx.step(t)
	fb := ctx.agg.Feedback()
	assert.True(t, fb.Valid)
	assert.InDelta(t, ctx.econ.macro.TotalWages, fb.Wages, 1e-6)
}
