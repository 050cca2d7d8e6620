package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started TIMESTAMP NOT NULL,
	seed INTEGER NOT NULL,
	households INTEGER NOT NULL,
	periods INTEGER NOT NULL,
	config TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS period_stats (
	run_id TEXT NOT NULL,
	period INTEGER NOT NULL,
	households INTEGER NOT NULL,
	employed INTEGER NOT NULL,
	unemployment_rate REAL NOT NULL,
	cpi REAL NOT NULL,
	capacity_utilization REAL NOT NULL,
	wages REAL NOT NULL,
	profits REAL NOT NULL,
	disposable_income REAL NOT NULL,
	expenses REAL NOT NULL,
	deposits REAL NOT NULL,
	offshore_deposits REAL NOT NULL,
	loans REAL NOT NULL,
	financial_assets REAL NOT NULL,
	net_wealth REAL NOT NULL,
	income_gini REAL NOT NULL,
	wealth_gini REAL NOT NULL,
	wealth_top10_share REAL NOT NULL,
	wealth_tax_revenue REAL NOT NULL,
	transfers REAL NOT NULL,
	benefits REAL NOT NULL,
	audit_probability REAL NOT NULL,
	tax_gap REAL NOT NULL,
	stats_json TEXT NOT NULL,
	PRIMARY KEY (run_id, period)
);

CREATE TABLE IF NOT EXISTS class_stats (
	run_id TEXT NOT NULL,
	period INTEGER NOT NULL,
	type TEXT NOT NULL,
	households INTEGER NOT NULL,
	disposable_income REAL NOT NULL,
	net_wealth REAL NOT NULL,
	income_share REAL NOT NULL,
	wealth_share REAL NOT NULL,
	consumption_share REAL NOT NULL,
	avg_propensity REAL NOT NULL,
	avg_debt_rate REAL NOT NULL,
	PRIMARY KEY (run_id, period, type)
);

CREATE TABLE IF NOT EXISTS diagnostics (
	run_id TEXT NOT NULL,
	period INTEGER NOT NULL,
	name TEXT NOT NULL,
	value REAL NOT NULL,
	tolerance REAL NOT NULL,
	ok INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS households (
	run_id TEXT NOT NULL,
	id INTEGER NOT NULL,
	type TEXT NOT NULL,
	skill REAL NOT NULL,
	profit_share REAL NOT NULL,
	propensity_to_evade REAL NOT NULL,
	employment_status INTEGER NOT NULL,
	disposable_income REAL NOT NULL,
	deposits REAL NOT NULL,
	offshore_deposits REAL NOT NULL,
	financial_assets REAL NOT NULL,
	undeclared_assets REAL NOT NULL,
	loans REAL NOT NULL,
	net_wealth REAL NOT NULL,
	PRIMARY KEY (run_id, id)
);

CREATE INDEX IF NOT EXISTS idx_diagnostics_run ON diagnostics(run_id, period);
`

// PeriodRow period_stats表的一行
type PeriodRow struct {
	RunID               string  `db:"run_id"`
	Period              int32   `db:"period"`
	Households          int32   `db:"households"`
	Employed            int32   `db:"employed"`
	UnemploymentRate    float64 `db:"unemployment_rate"`
	CPI                 float64 `db:"cpi"`
	CapacityUtilization float64 `db:"capacity_utilization"`
	Wages               float64 `db:"wages"`
	Profits             float64 `db:"profits"`
	DisposableIncome    float64 `db:"disposable_income"`
	Expenses            float64 `db:"expenses"`
	Deposits            float64 `db:"deposits"`
	OffshoreDeposits    float64 `db:"offshore_deposits"`
	Loans               float64 `db:"loans"`
	FinancialAssets     float64 `db:"financial_assets"`
	NetWealth           float64 `db:"net_wealth"`
	IncomeGini          float64 `db:"income_gini"`
	WealthGini          float64 `db:"wealth_gini"`
	WealthTop10Share    float64 `db:"wealth_top10_share"`
	WealthTaxRevenue    float64 `db:"wealth_tax_revenue"`
	Transfers           float64 `db:"transfers"`
	Benefits            float64 `db:"benefits"`
	AuditProbability    float64 `db:"audit_probability"`
	TaxGap              float64 `db:"tax_gap"`
	StatsJSON           string  `db:"stats_json"`
}

// ClassRow class_stats表的一行
type ClassRow struct {
	RunID            string  `db:"run_id"`
	Period           int32   `db:"period"`
	Type             string  `db:"type"`
	Households       int32   `db:"households"`
	DisposableIncome float64 `db:"disposable_income"`
	NetWealth        float64 `db:"net_wealth"`
	IncomeShare      float64 `db:"income_share"`
	WealthShare      float64 `db:"wealth_share"`
	ConsumptionShare float64 `db:"consumption_share"`
	AvgPropensity    float64 `db:"avg_propensity"`
	AvgDebtRate      float64 `db:"avg_debt_rate"`
}

// DiagnosticRow diagnostics表的一行
type DiagnosticRow struct {
	RunID     string  `db:"run_id"`
	Period    int32   `db:"period"`
	Name      string  `db:"name"`
	Value     float64 `db:"value"`
	Tolerance float64 `db:"tolerance"`
	OK        bool    `db:"ok"`
}

// SQLite 基于SQLite的统计输出
type SQLite struct {
	db    *sqlx.DB
	runID string
}

// OpenSQLite 打开或创建SQLite数据库并建表
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (r *SQLite) Begin(ctx context.Context, run Run) error {
	r.runID = run.ID
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO runs (id, started, seed, households, periods, config)
		VALUES (:id, :started, :seed, :households, :periods, :config)`, run)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// RecordPeriod 在一个事务中写入全国、阶层统计与诊断
func (r *SQLite) RecordPeriod(ctx context.Context, p Period) error {
	st := p.Stats
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := PeriodRow{
		RunID:               r.runID,
		Period:              st.Period,
		Households:          st.Households,
		Employed:            st.Employed,
		UnemploymentRate:    st.UnemploymentRate,
		CPI:                 p.Macro.CPI,
		CapacityUtilization: p.Macro.CapacityUtilization,
		Wages:               st.Wages,
		Profits:             st.Profits,
		DisposableIncome:    st.DisposableIncome,
		Expenses:            st.Expenses,
		Deposits:            st.Deposits,
		OffshoreDeposits:    st.OffshoreDeposits,
		Loans:               st.Loans,
		FinancialAssets:     st.FinancialAssets,
		NetWealth:           st.NetWealth,
		IncomeGini:          st.Income.Gini,
		WealthGini:          st.Wealth.Gini,
		WealthTop10Share:    st.Wealth.Top10Share,
		WealthTaxRevenue:    st.WealthTaxRevenue,
		Transfers:           st.Transfers,
		Benefits:            st.Benefits,
		AuditProbability:    p.Fiscal.AuditProbability,
		TaxGap:              st.TaxGap,
		StatsJSON:           string(raw),
	}
	if _, err := tx.NamedExecContext(ctx, `INSERT INTO period_stats (
		run_id, period, households, employed, unemployment_rate, cpi, capacity_utilization,
		wages, profits, disposable_income, expenses, deposits, offshore_deposits, loans,
		financial_assets, net_wealth, income_gini, wealth_gini, wealth_top10_share,
		wealth_tax_revenue, transfers, benefits, audit_probability, tax_gap, stats_json
	) VALUES (
		:run_id, :period, :households, :employed, :unemployment_rate, :cpi, :capacity_utilization,
		:wages, :profits, :disposable_income, :expenses, :deposits, :offshore_deposits, :loans,
		:financial_assets, :net_wealth, :income_gini, :wealth_gini, :wealth_top10_share,
		:wealth_tax_revenue, :transfers, :benefits, :audit_probability, :tax_gap, :stats_json
	)`, row); err != nil {
		return fmt.Errorf("insert period %d: %w", st.Period, err)
	}

	for _, c := range st.Classes {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO class_stats (
			run_id, period, type, households, disposable_income, net_wealth,
			income_share, wealth_share, consumption_share, avg_propensity, avg_debt_rate
		) VALUES (
			:run_id, :period, :type, :households, :disposable_income, :net_wealth,
			:income_share, :wealth_share, :consumption_share, :avg_propensity, :avg_debt_rate
		)`, ClassRow{
			RunID:            r.runID,
			Period:           st.Period,
			Type:             c.Type,
			Households:       c.Households,
			DisposableIncome: c.DisposableIncome,
			NetWealth:        c.NetWealth,
			IncomeShare:      c.IncomeShare,
			WealthShare:      c.WealthShare,
			ConsumptionShare: c.ConsumptionShare,
			AvgPropensity:    c.AvgPropensity,
			AvgDebtRate:      c.AvgDebtRate,
		}); err != nil {
			return fmt.Errorf("insert class %s of period %d: %w", c.Type, st.Period, err)
		}
	}

	for _, d := range p.Diagnostics {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO diagnostics (run_id, period, name, value, tolerance, ok)
			VALUES (:run_id, :period, :name, :value, :tolerance, :ok)`, DiagnosticRow{
			RunID:     r.runID,
			Period:    st.Period,
			Name:      d.Name,
			Value:     d.Value,
			Tolerance: d.Tolerance,
			OK:        d.OK,
		}); err != nil {
			return fmt.Errorf("insert diagnostic %s: %w", d.Name, err)
		}
	}
	return tx.Commit()
}

// Finish 写出最终家庭截面
func (r *SQLite) Finish(ctx context.Context, households []*household.Household) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `INSERT INTO households (
		run_id, id, type, skill, profit_share, propensity_to_evade, employment_status,
		disposable_income, deposits, offshore_deposits, financial_assets, undeclared_assets, loans, net_wealth
	) VALUES (
		:run_id, :id, :type, :skill, :profit_share, :propensity_to_evade, :employment_status,
		:disposable_income, :deposits, :offshore_deposits, :financial_assets, :undeclared_assets, :loans, :net_wealth
	)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range householdRows(r.runID, households) {
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("insert household %d: %w", row.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Infof("wrote %d households of run %s", len(households), r.runID)
	return nil
}

func (r *SQLite) Close() error {
	return r.db.Close()
}

// PeriodStats 读取一次运行的全部期统计，按期排序
func (r *SQLite) PeriodStats(ctx context.Context, runID string) ([]PeriodRow, error) {
	var rows []PeriodRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM period_stats WHERE run_id = ? ORDER BY period`, runID)
	return rows, err
}

// ClassStats 读取一次运行某期的阶层统计
func (r *SQLite) ClassStats(ctx context.Context, runID string, period int32) ([]ClassRow, error) {
	var rows []ClassRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM class_stats WHERE run_id = ? AND period = ? ORDER BY type`, runID, period)
	return rows, err
}

// FailedDiagnostics 读取一次运行中未通过的诊断
func (r *SQLite) FailedDiagnostics(ctx context.Context, runID string) ([]DiagnosticRow, error) {
	var rows []DiagnosticRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM diagnostics WHERE run_id = ? AND ok = 0 ORDER BY period, name`, runID)
	return rows, err
}
