package output_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/population"
	"github.com/tsinghua-fib-lab/agentsociety-household/output"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/randengine"
)

func testPeriods() []output.Period {
	res := make([]output.Period, 0, 3)
	for t := int32(1); t <= 3; t++ {
		st := &population.Stats{Period: t, UnemploymentRate: 0.05}
		st.Households = 10
		st.Employed = 8
		st.Wages = 100 * float64(t)
		st.Wealth.Gini = 0.4
		st.Classes = []population.ClassStats{
			{Type: entity.Worker.String(), IncomeShare: 0.7},
			{Type: entity.Capitalist.String(), IncomeShare: 0.3},
		}
		res = append(res, output.Period{
			Stats:  st,
			Macro:  entity.Macro{Period: t, CPI: 1},
			Fiscal: entity.Fiscal{AuditProbability: 0.05},
			Diagnostics: []population.Diagnostic{
				{Name: "wage_identity", OK: true},
				{Name: "evasion_consistency", Value: 1, Tolerance: 0.1, OK: t != 2},
			},
		})
	}
	return res
}

func testHouseholds(t *testing.T) []*household.Household {
	cfg := config.Default()
	cfg.Population.Total = 20
	rc, err := config.NewRuntimeConfig(cfg)
	require.NoError(t, err)
	hs, err := household.NewBuilder(rc, randengine.New(1, 0), map[entity.HouseholdType]*household.Template{
		entity.Worker:     household.DefaultTemplate(cfg.Household, entity.Worker),
		entity.Capitalist: household.DefaultTemplate(cfg.Household, entity.Capitalist),
	}).Build()
	require.NoError(t, err)
	return hs
}

func record(t *testing.T, r output.Recorder, runID string, households []*household.Household) {
	ctx := context.Background()
	require.NoError(t, r.Begin(ctx, output.Run{ID: runID, Started: time.Now(), Seed: 1, Households: 20, Periods: 3}))
	for _, p := range testPeriods() {
		require.NoError(t, r.RecordPeriod(ctx, p))
	}
	require.NoError(t, r.Finish(ctx, households))
}

func TestSQLiteRecorder(t *testing.T) {
	ctx := context.Background()
	r, err := output.OpenSQLite(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	defer r.Close()

	runID := uuid.NewString()
	record(t, r, runID, testHouseholds(t))

	rows, err := r.PeriodStats(ctx, runID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int32(1), rows[0].Period)
	assert.Equal(t, 300., rows[2].Wages)
	assert.Equal(t, 0.4, rows[1].WealthGini)
	assert.Contains(t, rows[0].StatsJSON, `"wages":100`)

	classes, err := r.ClassStats(ctx, runID, 2)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "capitalist", classes[0].Type)

	failed, err := r.FailedDiagnostics(ctx, runID)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, int32(2), failed[0].Period)
	assert.Equal(t, "evasion_consistency", failed[0].Name)

	// 另一次运行写入同一数据库互不干扰
	other := uuid.NewString()
	record(t, r, other, nil)
	rows, err = r.PeriodStats(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestMultiRecorder(t *testing.T) {
	dir := t.TempDir()
	a, err := output.OpenSQLite(filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	b, err := output.OpenSQLite(filepath.Join(dir, "b.db"))
	require.NoError(t, err)
	m := output.Multi{a, b}
	record(t, m, "run", nil)
	for _, r := range []*output.SQLite{a, b} {
		rows, err := r.PeriodStats(context.Background(), "run")
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	}
	assert.NoError(t, m.Close())
}

func TestMongoRecorder(t *testing.T) {
	uri := os.Getenv("HHSIM_MONGO_URI")
	if uri == "" {
		t.Skip("HHSIM_MONGO_URI not set")
	}
	ctx := context.Background()
	r, err := output.OpenMongo(ctx, config.Mongo{URI: uri, DB: "household_test", Col: "stats"})
	require.NoError(t, err)
	defer r.Close()

	runID := uuid.NewString()
	record(t, r, runID, testHouseholds(t))
	n, err := r.CountPeriods(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
