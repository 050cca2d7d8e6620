package ecosim_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-household/ecosim"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/rpcutil"
)

func newRuntimeConfig(t *testing.T, mutate func(c *config.Config)) *config.RuntimeConfig {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	rc, err := config.NewRuntimeConfig(cfg)
	require.NoError(t, err)
	return rc
}

func TestTaxBase(t *testing.T) {
	cases := []struct {
		structure int32
		want      float64
	}{
		{0, 0}, {1, 10}, {2, 5}, {3, 15}, {4, 17}, {5, 15}, {6, 15},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ecosim.TaxBase(c.structure, 10, 5, 2), "structure %d", c.structure)
	}
	assert.Equal(t, 3., ecosim.IncomeTax(3, 0.2, 10, 5, 2))
	assert.Equal(t, 0., ecosim.IncomeTax(3, 0, 10, 5, 2))
	assert.Equal(t, 0., ecosim.IncomeTax(4, 0.2, 0, 0, -10))
}

func TestInitialMacro(t *testing.T) {
	rc := newRuntimeConfig(t, nil)
	e := ecosim.NewEconomy(rc, nil)
	m := e.Macro()
	c := rc.All.Economy
	assert.Equal(t, 1., m.CPI)
	assert.InDelta(t, c.Initial.RealDemand/c.Initial.CapacityUtilization, m.Capacity, 1e-9)
	assert.InDelta(t, c.WageShare*m.NominalOutput, m.TotalWages, 1e-9)
	assert.InDelta(t, c.BaseInterestRate*c.DepositSpread, m.DepositRate, 1e-12)
	assert.InDelta(t, c.BaseInterestRate*(1+c.LoanSpread), m.ShortTermRate, 1e-12)
}

func TestPrepareDemandClosure(t *testing.T) {
	rc := newRuntimeConfig(t, nil)
	c := rc.All.Economy
	e := ecosim.NewEconomy(rc, nil)
	m0 := e.Macro()

	e.Prepare(1, entity.Feedback{})
	m1 := e.Macro()
	assert.Equal(t, int32(1), m1.Period)
	assert.InDelta(t, m0.DomesticPrice*(1+c.Inflation), m1.DomesticPrice, 1e-12)
	assert.Equal(t, m1.DomesticPrice, m1.CPI)
	assert.Equal(t, m0.DomesticPrice, m1.LaggedDomesticPrice)
	assert.Equal(t, m0.NominalOutput, m1.LaggedNominalOutput)
	// 尚无家庭汇总时，家庭需求沿用初始值，自主需求增长
	want := (c.Initial.RealDemand - c.Initial.AutonomousDemand) + c.Initial.AutonomousDemand*(1+c.AutonomousGrowth)
	assert.InDelta(t, want, m1.RealDemand, 1e-9)

	e.Prepare(2, entity.Feedback{Valid: true, RealDomesticConsumption: 500})
	m2 := e.Macro()
	auto := c.Initial.AutonomousDemand * (1 + c.AutonomousGrowth) * (1 + c.AutonomousGrowth)
	assert.InDelta(t, 500+auto, m2.RealDemand, 1e-9)
	assert.InDelta(t, lo.Clamp(m2.RealDemand/m2.Capacity, 0, 1), m2.CapacityUtilization, 1e-12)
	assert.InDelta(t, m2.DomesticPrice*m2.RealDemand, m2.NominalOutput, 1e-9)
	assert.InDelta(t, (m2.NominalOutput-m2.TotalWages)*c.ProfitDistribution, m2.TotalProfits, 1e-9)
	assert.LessOrEqual(t, m2.DemandMet, 1.)
}

func TestExcessDemand(t *testing.T) {
	rc := newRuntimeConfig(t, nil)
	e := ecosim.NewEconomy(rc, nil)
	e.Prepare(1, entity.Feedback{Valid: true, RealDomesticConsumption: 1e5})
	m := e.Macro()
	assert.Equal(t, 1., m.CapacityUtilization)
	assert.InDelta(t, m.Capacity/m.RealDemand, m.DemandMet, 1e-12)
	assert.Less(t, m.DemandMet, 1.)
}

func TestScenarioOverride(t *testing.T) {
	rc := newRuntimeConfig(t, nil)
	wages, base, cu := 123., 0.01, 1.5
	e := ecosim.NewEconomy(rc, []entity.ScenarioPoint{
		{Period: 2, TotalWages: &wages, BaseRate: &base, CapacityUtilization: &cu},
	})
	e.Prepare(1, entity.Feedback{})
	assert.NotEqual(t, wages, e.Macro().TotalWages)
	e.Prepare(2, entity.Feedback{})
	m := e.Macro()
	assert.Equal(t, wages, m.TotalWages)
	assert.Equal(t, base, m.BaseRate)
	assert.InDelta(t, base*rc.All.Economy.DepositSpread, m.DepositRate, 1e-12)
	assert.Equal(t, 1., m.CapacityUtilization)
}

func TestGovernmentBenefits(t *testing.T) {
	rc := newRuntimeConfig(t, func(c *config.Config) {
		c.Policy.BenefitRate = 0.5
		c.Policy.BenefitBudgetShare = 0.8
	})
	e := ecosim.NewEconomy(rc, nil)
	e.Prepare(1, entity.Feedback{})
	assert.Equal(t, 0., e.Fiscal().DesiredBenefits)

	e.Prepare(2, entity.Feedback{Valid: true, Wages: 900, Employed: 90, Unemployed: 10})
	f := e.Fiscal()
	assert.InDelta(t, 10*0.5*10, f.DesiredBenefits, 1e-9)
	assert.InDelta(t, 40, f.EffectiveBenefits, 1e-9)
}

func TestDynamicAuditProbability(t *testing.T) {
	rc := newRuntimeConfig(t, func(c *config.Config) {
		c.Policy.AuditProbability = 0.1
		c.Policy.EnforcementSensitivity = 0.5
		c.Policy.EnforcementDecay = 0.2
	})
	e := ecosim.NewEconomy(rc, nil)
	e.Prepare(1, entity.Feedback{Valid: true, EvasionRate: 0.4})
	assert.Equal(t, 0.1, e.Fiscal().AuditProbability)

	e.Prepare(2, entity.Feedback{Valid: true, EvasionRate: 0.4})
	assert.InDelta(t, 0.1+0.8*0+0.5*0.4, e.Fiscal().AuditProbability, 1e-12)

	e.Prepare(3, entity.Feedback{Valid: true, EvasionRate: 0})
	assert.InDelta(t, 0.1+0.8*0.2, e.Fiscal().AuditProbability, 1e-12)

	e.Prepare(4, entity.Feedback{Valid: true, EvasionRate: 10})
	assert.Equal(t, 1., e.Fiscal().AuditProbability)
}

func TestStaticAuditProbability(t *testing.T) {
	rc := newRuntimeConfig(t, func(c *config.Config) {
		c.Policy.AuditProbability = 0.07
		c.Policy.EnforcementSensitivity = 0
	})
	e := ecosim.NewEconomy(rc, nil)
	for i := int32(1); i <= 3; i++ {
		e.Prepare(i, entity.Feedback{Valid: true, EvasionRate: 0.5})
		assert.Equal(t, 0.07, e.Fiscal().AuditProbability)
	}
}

func TestTransfers(t *testing.T) {
	rc := newRuntimeConfig(t, func(c *config.Config) { c.Policy.TransferBudgetShare = 0.5 })
	e := ecosim.NewEconomy(rc, nil)
	e.Prepare(1, entity.Feedback{Valid: true, WealthTaxRevenue: 3, TaxGap: 2})
	f := e.Fiscal()
	assert.Equal(t, 0., f.WealthTaxRevenue)
	assert.Equal(t, 5., f.PotentialWealthTax)
	assert.Equal(t, 0., f.EffectiveTransfers)
	e.SetWealthTaxRevenue(40)
	assert.Equal(t, 40., e.Fiscal().WealthTaxRevenue)
	assert.Equal(t, 40., e.Fiscal().DesiredTransfers)
	assert.Equal(t, 20., e.Fiscal().EffectiveTransfers)

	rc = newRuntimeConfig(t, func(c *config.Config) { c.Policy.TaxStructure = 3 })
	e = ecosim.NewEconomy(rc, nil)
	e.Prepare(1, entity.Feedback{})
	e.SetWealthTaxRevenue(40)
	assert.Equal(t, 0., e.Fiscal().EffectiveTransfers)
}

func TestEconomyService(t *testing.T) {
	rc := newRuntimeConfig(t, nil)
	e := ecosim.NewEconomy(rc, nil)
	e.Prepare(1, entity.Feedback{})
	mux := http.NewServeMux()
	e.Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	macro := rpcutil.NewClient[ecosim.GetMacroRequest, ecosim.GetMacroResponse](srv.Client(), srv.URL, ecosim.GetMacroProcedure)
	res, err := macro.CallUnary(context.Background(), connect.NewRequest(&ecosim.GetMacroRequest{}))
	require.NoError(t, err)
	assert.Equal(t, e.Macro(), res.Msg.Macro)

	gov := rpcutil.NewClient[ecosim.GetGovernmentRequest, ecosim.GetGovernmentResponse](srv.Client(), srv.URL, ecosim.GetGovernmentProcedure)
	gres, err := gov.CallUnary(context.Background(), connect.NewRequest(&ecosim.GetGovernmentRequest{}))
	require.NoError(t, err)
	assert.Equal(t, e.Fiscal().AuditProbability, gres.Msg.Fiscal.AuditProbability)
}
