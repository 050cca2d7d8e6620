package output

import (
	"context"
	"errors"
	"time"

	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/population"
)

// Run 一次运行的元信息
type Run struct {
	ID         string    `db:"id" bson:"_id"`
	Started    time.Time `db:"started" bson:"started"`
	Seed       uint64    `db:"seed" bson:"seed"`
	Households int32     `db:"households" bson:"households"`
	Periods    int32     `db:"periods" bson:"periods"`
	Config     string    `db:"config" bson:"config"` // YAML格式的完整配置
}

// Period 一期的输出内容
type Period struct {
	Stats       *population.Stats
	Macro       entity.Macro
	Fiscal      entity.Fiscal
	Diagnostics []population.Diagnostic
}

// Recorder 统计输出
// 功能：运行开始时登记，每期写入统计，结束时写出家庭截面
type Recorder interface {
	Begin(ctx context.Context, run Run) error
	RecordPeriod(ctx context.Context, p Period) error
	Finish(ctx context.Context, households []*household.Household) error
	Close() error
}

// HouseholdRow 家庭截面的一行
type HouseholdRow struct {
	RunID            string  `db:"run_id" bson:"run_id"`
	ID               int32   `db:"id" bson:"id"`
	Type             string  `db:"type" bson:"type"`
	Skill            float64 `db:"skill" bson:"skill"`
	ProfitShare      float64 `db:"profit_share" bson:"profit_share"`
	PropensityEvade  float64 `db:"propensity_to_evade" bson:"propensity_to_evade"`
	EmploymentStatus int32   `db:"employment_status" bson:"employment_status"`
	DisposableIncome float64 `db:"disposable_income" bson:"disposable_income"`
	Deposits         float64 `db:"deposits" bson:"deposits"`
	OffshoreDeposits float64 `db:"offshore_deposits" bson:"offshore_deposits"`
	FinancialAssets  float64 `db:"financial_assets" bson:"financial_assets"`
	UndeclaredAssets float64 `db:"undeclared_assets" bson:"undeclared_assets"`
	Loans            float64 `db:"loans" bson:"loans"`
	NetWealth        float64 `db:"net_wealth" bson:"net_wealth"`
}

func householdRows(runID string, households []*household.Household) []HouseholdRow {
	rows := make([]HouseholdRow, 0, len(households))
	for _, h := range households {
		p, s := h.Params(), h.State()
		rows = append(rows, HouseholdRow{
			RunID:            runID,
			ID:               h.ID(),
			Type:             h.Type().String(),
			Skill:            p.Skill,
			ProfitShare:      p.ProfitShare,
			PropensityEvade:  p.PropensityToEvade,
			EmploymentStatus: int32(s.EmploymentStatus),
			DisposableIncome: s.DisposableIncome,
			Deposits:         s.Deposits,
			OffshoreDeposits: s.OffshoreDeposits,
			FinancialAssets:  s.FinancialAssets,
			UndeclaredAssets: s.UndeclaredAssets,
			Loans:            s.Loans,
			NetWealth:        s.NetWealth,
		})
	}
	return rows
}

// Multi 将调用依次转发给多个Recorder，错误合并返回
type Multi []Recorder

func (m Multi) Begin(ctx context.Context, run Run) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Begin(ctx, run))
	}
	return errors.Join(errs...)
}

func (m Multi) RecordPeriod(ctx context.Context, p Period) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordPeriod(ctx, p))
	}
	return errors.Join(errs...)
}

func (m Multi) Finish(ctx context.Context, households []*household.Household) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Finish(ctx, households))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
