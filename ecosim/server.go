package ecosim

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/rpcutil"
)

const (
	ServiceName            = "economy.v1.EconomyService"
	GetMacroProcedure      = "/" + ServiceName + "/GetMacro"
	GetGovernmentProcedure = "/" + ServiceName + "/GetGovernment"
)

type GetMacroRequest struct{}

type GetMacroResponse struct {
	Macro entity.Macro `json:"macro"`
}

type GetGovernmentRequest struct{}

type GetGovernmentResponse struct {
	Fiscal entity.Fiscal `json:"fiscal"`
}

// Register 将EconomyService注册到mux
func (e *Economy) Register(mux *http.ServeMux) {
	rpcutil.Register(mux, GetMacroProcedure, e.GetMacro)
	rpcutil.Register(mux, GetGovernmentProcedure, e.GetGovernment)
}

// GetMacro 获取当期宏观变量
func (e *Economy) GetMacro(ctx context.Context, in *connect.Request[GetMacroRequest]) (*connect.Response[GetMacroResponse], error) {
	return connect.NewResponse(&GetMacroResponse{Macro: e.Macro()}), nil
}

// GetGovernment 获取当期政府预算、审计概率与上期税收
func (e *Economy) GetGovernment(ctx context.Context, in *connect.Request[GetGovernmentRequest]) (*connect.Response[GetGovernmentResponse], error) {
	return connect.NewResponse(&GetGovernmentResponse{Fiscal: e.Fiscal()}), nil
}
