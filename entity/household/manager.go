package household

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/parallel"
)

// HouseholdManager 家庭管理器
// 功能：持有全部家庭，按阶段驱动更新，提供查找与快照功能
// 说明：家庭集合在Init之后冻结，更新顺序固定为插入顺序（工人在前，资本家在后）
type HouseholdManager struct {
	ctx entity.ITaskContext

	households []*Household
	data       map[int32]*Household

	env *Env // 当前阶段的只读输入

	mtx sync.RWMutex // 阶段写入与RPC读取互斥
}

// NewManager 创建家庭管理器
func NewManager(ctx entity.ITaskContext) *HouseholdManager {
	return &HouseholdManager{
		ctx:  ctx,
		data: make(map[int32]*Household),
	}
}

// Init 载入构建好的家庭
// 参数：households-Builder的输出，按插入顺序排列
func (m *HouseholdManager) Init(households []*Household) {
	m.households = households
	m.data = lo.SliceToMap(households, func(h *Household) (int32, *Household) {
		return h.id, h
	})
	log.Infof("household manager: %d households", len(households))
}

// Len 家庭数
func (m *HouseholdManager) Len() int {
	return len(m.households)
}

// Data 按插入顺序排列的全部家庭
func (m *HouseholdManager) Data() []*Household {
	return m.households
}

// GetOrError 根据ID获取家庭，不存在时返回错误
func (m *HouseholdManager) GetOrError(id int32) (*Household, error) {
	if h, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in household data", id)
	} else {
		return h, nil
	}
}

// Prepare 准备阶段
// 功能：按插入顺序为每个家庭开启当期记录并抽取随机数
// 算法说明：
// 1. 工人先抽取一个就业随机数
// 2. 每个家庭再抽取一个审计随机数
// 说明：必须顺序执行，保证同一种子下结果可复现
func (m *HouseholdManager) Prepare() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	t := m.ctx.Clock().T
	rng := m.ctx.Rand()
	for _, h := range m.households {
		h.open(t)
		h.employmentDraw = 0
		if h.typ == entity.Worker {
			h.employmentDraw = rng.Float64()
		}
		h.auditDraw = rng.Float64()
	}
	log.Debugf("household manager: prepare t=%d done", t)
}

// UpdateEmployment 就业阶段（并行）
func (m *HouseholdManager) UpdateEmployment() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.env = envFromContext(m.ctx)
	env := m.env
	parallel.GoFor(m.households, func(h *Household) { h.updateEmployment(env) })
}

// UpdateTaxes 财富税阶段（并行）
func (m *HouseholdManager) UpdateTaxes() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.env = envFromContext(m.ctx)
	env := m.env
	parallel.GoFor(m.households, func(h *Household) { h.updateTaxes(env) })
}

// UpdateBudget 收支阶段（并行）
// 说明：Env在阶段开始时重新组装，包含就业扫描与政府转移支付预算的结果
func (m *HouseholdManager) UpdateBudget() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.env = envFromContext(m.ctx)
	env := m.env
	parallel.GoFor(m.households, func(h *Household) { h.updateBudget(env) })
}

// Commit 提交当期记录
func (m *HouseholdManager) Commit() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	parallel.GoFor(m.households, func(h *Household) { h.commit() })
}
