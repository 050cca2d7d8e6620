package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
)

// Clock 仿真时钟
// 功能：管理离散期数的推进，并按年频率判断年初与年度调整期
// 说明：第0期为初始化期，模拟区间为(START_STEP, END_STEP]
type Clock struct {
	ANNUAL     int32 // 每年的期数
	START_STEP int32 // 起始期
	END_STEP   int32 // 结束期

	T int32 // 当前期
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置，annual-每年的期数（不大于0时取1）
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep, annual int32) *Clock {
	if annual <= 0 {
		annual = 1
	}
	c := &Clock{
		ANNUAL:     annual,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 将时钟重置到起始期
func (c *Clock) Init() {
	c.T = c.START_STEP
}

// Advance 推进一期并返回新的当前期
func (c *Clock) Advance() int32 {
	c.T++
	return c.T
}

// Done 是否已到达结束期
func (c *Clock) Done() bool {
	return c.T >= c.END_STEP
}

// IsYearStart 是否为年初期（t mod annual == 0），自主消费在该期按质量增长调整
func (c *Clock) IsYearStart() bool {
	return c.T%c.ANNUAL == 0
}

// IsAdjustPeriod 是否为年度调整期（t mod annual == 1），最大负债率在该期调整
func (c *Clock) IsAdjustPeriod() bool {
	return c.T%c.ANNUAL == 1%c.ANNUAL
}

// YearAndSub 当前期所在的年份与年内序号（均从0开始）
func (c *Clock) YearAndSub() (int32, int32) {
	return c.T / c.ANNUAL, c.T % c.ANNUAL
}

// String 时钟的字符串表示，如"t=13 (Y3.1)"
func (c *Clock) String() string {
	y, s := c.YearAndSub()
	return fmt.Sprintf("t=%d (Y%d.%d)", c.T, y, s)
}
