package household

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/loan"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/parallel"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/rpcutil"
)

const (
	ServiceName                = "household.v1.HouseholdService"
	GetHouseholdsProcedure     = "/" + ServiceName + "/GetHouseholds"
	ListHouseholdsProcedure    = "/" + ServiceName + "/ListHouseholds"
	defaultListHouseholdsLimit = 100
)

// View 家庭的对外视图，状态为最近一次提交的记录
type View struct {
	ID     int32         `json:"id"`
	Type   string        `json:"type"`
	Params Params        `json:"params"`
	State  State         `json:"state"`
	Loans  []loan.Record `json:"loans"`
}

type GetHouseholdsRequest struct {
	IDs []int32 `json:"ids"`
}

type GetHouseholdsResponse struct {
	Households []View  `json:"households"`
	FailedIDs  []int32 `json:"failed_ids,omitempty"`
}

type ListHouseholdsRequest struct {
	Type   string `json:"type,omitempty"` // worker / capitalist，为空时不筛选
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type ListHouseholdsResponse struct {
	Households []View `json:"households"`
	Total      int    `json:"total"` // 筛选后的总数
}

// Register 将HouseholdService注册到mux
func (m *HouseholdManager) Register(mux *http.ServeMux) {
	rpcutil.Register(mux, GetHouseholdsProcedure, m.GetHouseholds)
	rpcutil.Register(mux, ListHouseholdsProcedure, m.ListHouseholds)
}

// view 生成家庭视图，没有已提交记录时使用当前记录
func (h *Household) view() View {
	s, ok := h.history.Latest()
	if !ok {
		s = h.cur
	}
	return View{
		ID:     h.id,
		Type:   h.typ.String(),
		Params: h.params,
		State:  s,
		Loans:  h.loans.Records(),
	}
}

// GetHouseholds 批量获取家庭信息
// 功能：ids为空时返回全部家庭，不存在的ID记录在FailedIDs中
func (m *HouseholdManager) GetHouseholds(ctx context.Context, in *connect.Request[GetHouseholdsRequest]) (*connect.Response[GetHouseholdsResponse], error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	hs, failed := m.households, []int32(nil)
	if len(in.Msg.IDs) > 0 {
		hs = make([]*Household, 0, len(in.Msg.IDs))
		for _, id := range in.Msg.IDs {
			if h, err := m.GetOrError(id); err != nil {
				failed = append(failed, id)
			} else {
				hs = append(hs, h)
			}
		}
	}
	return connect.NewResponse(&GetHouseholdsResponse{
		Households: parallel.GoMap(hs, (*Household).view),
		FailedIDs:  failed,
	}), nil
}

// ListHouseholds 分页列出家庭
// 功能：可按阶层筛选，limit不大于0时取100
func (m *HouseholdManager) ListHouseholds(ctx context.Context, in *connect.Request[ListHouseholdsRequest]) (*connect.Response[ListHouseholdsResponse], error) {
	req := in.Msg
	if req.Offset < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("negative offset %d", req.Offset))
	}
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	hs := m.households
	if req.Type != "" {
		typ, ok := entity.ParseHouseholdType(req.Type)
		if !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown household type %q", req.Type))
		}
		hs = lo.Filter(hs, func(h *Household, _ int) bool { return h.typ == typ })
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListHouseholdsLimit
	}
	page := lo.Subset(hs, req.Offset, uint(limit))
	return connect.NewResponse(&ListHouseholdsResponse{
		Households: parallel.GoMap(page, (*Household).view),
		Total:      len(hs),
	}), nil
}
