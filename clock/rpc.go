package clock

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/rpcutil"
)

const (
	ServiceName  = "clock.v1.ClockService"
	NowProcedure = "/" + ServiceName + "/Now"
)

// NowRequest 查询当前时间请求
type NowRequest struct{}

// NowResponse 当前时间
type NowResponse struct {
	T      int32 `json:"t"`      // 当前期
	Year   int32 `json:"year"`   // 年份
	Sub    int32 `json:"sub"`    // 年内序号
	Annual int32 `json:"annual"` // 每年的期数
	End    int32 `json:"end"`    // 结束期
}

// Register 将ClockService注册到mux
func (c *Clock) Register(mux *http.ServeMux) {
	rpcutil.Register(mux, NowProcedure, c.Now)
}

// Now 获取当前仿真期
// 功能：RPC接口，返回当前期、年份与年内序号
func (c *Clock) Now(ctx context.Context, in *connect.Request[NowRequest]) (*connect.Response[NowResponse], error) {
	y, s := c.YearAndSub()
	return connect.NewResponse(&NowResponse{
		T:      c.T,
		Year:   y,
		Sub:    s,
		Annual: c.ANNUAL,
		End:    c.END_STEP,
	}), nil
}
