package task

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/population"
	"github.com/tsinghua-fib-lab/agentsociety-household/output"
)

// prepare 准备阶段，每期执行一次
// 功能：推进时钟，形成当期宏观变量与政府预算，抽取随机数并完成预扫描
// 算法说明：
// 1. 更新时钟
// 2. 心跳日志：定期输出系统状态信息
// 3. 宏观环境根据上期家庭部门汇总形成当期变量
// 4. 家庭管理器按ID顺序抽取随机数并开启当期记录
// 5. 人口汇总基于上期状态计算劳动力、中位数收入与转移支付资格
func (ctx *Context) prepare() {
	t := ctx.clock.Advance()
	if interval := ctx.runtimeConfig.C.HeartbeatInterval; interval > 0 && t%interval == 0 && ctx.latest != nil {
		log.Infof("STEP: %v unemployment=%.2f%% income gini=%.3f net wealth=%s",
			ctx.clock,
			ctx.latest.UnemploymentRate*100,
			ctx.latest.Income.Gini,
			humanize.CommafWithDigits(ctx.latest.NetWealth, 2),
		)
	}
	ctx.economy.Prepare(t, ctx.population.Feedback())
	ctx.householdManager.Prepare()
	ctx.population.PreScan()
}

// update 更新阶段，每期执行一次
// 功能：依次执行三个家庭阶段，每个阶段之后刷新国家层面变量
// 说明：家庭阶段内部并行，阶段之间为屏障
func (ctx *Context) update() {
	ctx.householdManager.UpdateEmployment()
	ctx.population.EmploymentScan()
	ctx.householdManager.UpdateTaxes()
	ctx.population.TaxScan()
	ctx.economy.SetWealthTaxRevenue(ctx.population.Country().WealthTaxRevenue)
	ctx.householdManager.UpdateBudget()
}

// Step 运行一期
// 功能：准备、更新、汇总、诊断、输出并提交当期记录
// 返回：当期统计
func (ctx *Context) Step(c context.Context) (*population.Stats, error) {
	ctx.stepMu.Lock()
	defer ctx.stepMu.Unlock()
	if ctx.clock.Done() {
		return nil, fmt.Errorf("simulation finished at %v", ctx.clock)
	}
	ctx.prepare()
	ctx.update()

	macro := ctx.economy.Macro()
	stats, err := ctx.population.Collect(c, macro)
	if err != nil {
		return nil, fmt.Errorf("collect %v: %w", ctx.clock, err)
	}
	fiscal := ctx.economy.Fiscal()
	diags := population.Check(stats, ctx.householdManager.Data(), macro, fiscal, ctx.runtimeConfig.All.Policy.WealthTaxThreshold)
	if err := ctx.recorder.RecordPeriod(c, output.Period{
		Stats:       stats,
		Macro:       macro,
		Fiscal:      fiscal,
		Diagnostics: diags,
	}); err != nil {
		return nil, fmt.Errorf("record %v: %w", ctx.clock, err)
	}
	ctx.householdManager.Commit()
	ctx.latest, ctx.diagnostics = stats, diags
	log.Debugf("%v complete", ctx.clock)
	return stats, nil
}

// Done 是否已运行到结束期
func (ctx *Context) Done() bool {
	ctx.stepMu.Lock()
	defer ctx.stepMu.Unlock()
	return ctx.clock.Done()
}

// Run 运行
// 功能：初始化后逐期运行到结束期，然后写出结果
// 返回：上下文取消或运行失败时的错误
func (ctx *Context) Run(c context.Context) error {
	// 初始化
	ctx.Init()
	defer ctx.Close()
	for !ctx.Done() {
		if err := c.Err(); err != nil {
			log.Warnf("stopped at %v: %v", ctx.clock, err)
			return err
		}
		if _, err := ctx.Step(c); err != nil {
			return err
		}
	}
	log.Infof("engine complete")
	return ctx.Finish(c)
}

// Finish 结束处理
// 功能：写出家庭截面与快照，并打印最后一期的汇总表
func (ctx *Context) Finish(c context.Context) error {
	out := ctx.runtimeConfig.All.Output
	if out.Households {
		if err := ctx.recorder.Finish(c, ctx.householdManager.Data()); err != nil {
			return fmt.Errorf("write households: %w", err)
		}
	}
	if out.Snapshot != "" {
		if err := ctx.householdManager.SaveSnapshot(out.Snapshot); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}
	if stats, diags := ctx.Latest(); stats != nil {
		fmt.Println(Report(stats, ctx.economy.Macro(), ctx.economy.Fiscal(), diags))
	}
	return nil
}
