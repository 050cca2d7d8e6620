package task

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tsinghua-fib-lab/agentsociety-household/clock"
	"github.com/tsinghua-fib-lab/agentsociety-household/ecosim"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/population"
	"github.com/tsinghua-fib-lab/agentsociety-household/output"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/input"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/randengine"
	"gopkg.in/yaml.v2"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：管理时钟、随机数、宏观环境、家庭管理器、人口汇总与输出，所有管理器通过它互相访问
type Context struct {
	// 任务名
	job string
	// 运行ID
	runID string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 全局随机数引擎
	rng *randengine.Engine

	// 宏观环境与政府
	economy *ecosim.Economy
	// 家庭管理器
	householdManager *household.HouseholdManager
	// 人口汇总
	population *population.Aggregator

	// 统计输出
	recorder output.Recorder
	// 最近一期统计与诊断
	latest      *population.Stats
	diagnostics []population.Diagnostic

	// 用于初始化的输入
	initRes *input.Input

	// 串行化Step调用
	stepMu sync.Mutex
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真系统的所有组件和配置
// 参数：
//   - job: 任务名称
//   - cacheDir: 输入缓存目录
//   - c: 配置对象
//
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 校验配置并创建运行时配置、时钟与随机数引擎
// 2. 加载可选输入（情景序列、种子模板）
// 3. 创建宏观环境、家庭管理器与人口汇总
// 4. 打开统计输出
// 说明：任一步骤失败都会使后续结构不一致，直接panic
func NewContext(job string, cacheDir string, c config.Config) *Context {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Panicf("invalid config: %v", err)
	}
	ctx := &Context{
		job:           job,
		runID:         uuid.NewString(),
		runtimeConfig: rc,
		clock:         clock.New(c.Control.Step, rc.Annual()),
		rng:           randengine.New(c.Control.Seed, c.Control.SeedOffset),
	}

	// 下载所有模拟器启动所需的数据
	if ctx.initRes, err = input.Init(context.Background(), c, cacheDir); err != nil {
		log.Panicf("failed to load input: %v", err)
	}

	// 新建各类模拟对象
	ctx.economy = ecosim.NewEconomy(rc, ctx.initRes.Scenario)
	ctx.householdManager = household.NewManager(ctx)
	ctx.population = population.NewAggregator(rc, ctx.householdManager)

	if ctx.recorder, err = openRecorders(c.Output); err != nil {
		log.Panicf("failed to open output: %v", err)
	}
	return ctx
}

// openRecorders 根据输出配置打开SQLite与MongoDB输出
func openRecorders(c config.Output) (output.Recorder, error) {
	var rs output.Multi
	if c.SQLite.Path != "" {
		r, err := output.OpenSQLite(c.SQLite.Path)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	if c.Mongo.URI != "" {
		r, err := output.OpenMongo(context.Background(), c.Mongo)
		if err != nil {
			rs.Close()
			return nil, err
		}
		rs = append(rs, r)
	}
	return rs, nil
}

func (ctx *Context) Job() string {
	return ctx.job
}

func (ctx *Context) RunID() string {
	return ctx.runID
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Rand() *randengine.Engine {
	return ctx.rng
}

func (ctx *Context) Economy() entity.IEconomy {
	return ctx.economy
}

func (ctx *Context) Population() entity.IPopulation {
	return ctx.population
}

func (ctx *Context) HouseholdManager() entity.IHouseholdManager {
	return ctx.householdManager
}

// Households 家庭管理器的具体类型，供RPC与输出使用
func (ctx *Context) Households() *household.HouseholdManager {
	return ctx.householdManager
}

// Latest 最近一期统计，尚未运行时为nil
func (ctx *Context) Latest() (*population.Stats, []population.Diagnostic) {
	ctx.stepMu.Lock()
	defer ctx.stepMu.Unlock()
	return ctx.latest, ctx.diagnostics
}

// Init 初始化
// 功能：构建或恢复家庭，并登记本次运行
// 算法说明：
// 1. 配置了快照时直接恢复家庭，否则按模板构建
// 2. 缺失的阶层模板由配置生成
// 3. 向统计输出登记运行信息
func (ctx *Context) Init() {
	ctx.clock.Init()
	rc := ctx.runtimeConfig
	c := rc.All

	var hs []*household.Household
	var err error
	if c.Input.Snapshot != "" {
		if hs, err = household.LoadSnapshot(c.Input.Snapshot, household.HistoryDepth(rc.Annual())); err != nil {
			log.Panicf("failed to restore households: %v", err)
		}
	} else {
		templates, err := household.GroupTemplates(ctx.initRes.Templates)
		if err != nil {
			log.Panicf("bad household templates: %v", err)
		}
		for _, typ := range entity.HouseholdTypes {
			if _, ok := templates[typ]; !ok {
				templates[typ] = household.DefaultTemplate(c.Household, typ)
			}
		}
		if hs, err = household.NewBuilder(rc, ctx.rng, templates).Build(); err != nil {
			log.Panicf("failed to build households: %v", err)
		}
	}
	ctx.householdManager.Init(hs)

	raw, err := yaml.Marshal(c)
	if err != nil {
		log.Panicf("failed to encode config: %v", err)
	}
	if err := ctx.recorder.Begin(context.Background(), output.Run{
		ID:         ctx.runID,
		Started:    time.Now(),
		Seed:       c.Control.Seed,
		Households: int32(len(hs)),
		Periods:    c.Control.Step.Total,
		Config:     string(raw),
	}); err != nil {
		log.Panicf("failed to register run: %v", err)
	}
	log.Infof("job %s run %s: %d households, %d periods", ctx.job, ctx.runID, len(hs), c.Control.Step.Total)
}

// Close 关闭统计输出，可重复调用
func (ctx *Context) Close() {
	if ctx.closed.Swap(true) {
		return
	}
	if err := ctx.recorder.Close(); err != nil {
		log.Errorf("failed to close output: %v", err)
	}
}
