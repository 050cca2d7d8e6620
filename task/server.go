package task

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/population"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/rpcutil"
)

const (
	ServiceName           = "simulation.v1.SimulationService"
	StepProcedure         = "/" + ServiceName + "/Step"
	GetStatsProcedure     = "/" + ServiceName + "/GetStats"
	SaveSnapshotProcedure = "/" + ServiceName + "/SaveSnapshot"
)

type StepRequest struct {
	Periods int32 `json:"periods"` // 运行的期数，不大于0时为1
}

type StepResponse struct {
	T     int32             `json:"t"`
	Done  bool              `json:"done"`
	Stats *population.Stats `json:"stats"`
}

type GetStatsRequest struct{}

type GetStatsResponse struct {
	Stats       *population.Stats       `json:"stats"`
	Diagnostics []population.Diagnostic `json:"diagnostics"`
}

type SaveSnapshotRequest struct {
	Path string `json:"path"`
}

type SaveSnapshotResponse struct {
	Households int32 `json:"households"`
}

// Handler 全部RPC服务共享的路由
func (ctx *Context) Handler() http.Handler {
	mux := http.NewServeMux()
	ctx.clock.Register(mux)
	ctx.economy.Register(mux)
	ctx.householdManager.Register(mux)
	rpcutil.Register(mux, StepProcedure, ctx.StepRPC)
	rpcutil.Register(mux, GetStatsProcedure, ctx.GetStats)
	rpcutil.Register(mux, SaveSnapshotProcedure, ctx.SaveSnapshot)
	return mux
}

// StepRPC 运行若干期
// 功能：RPC接口，到达结束期后停止并返回最后一期统计
func (ctx *Context) StepRPC(c context.Context, in *connect.Request[StepRequest]) (*connect.Response[StepResponse], error) {
	n := max(in.Msg.Periods, 1)
	var stats *population.Stats
	for i := int32(0); i < n && !ctx.Done(); i++ {
		var err error
		if stats, err = ctx.Step(c); err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}
	if stats == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("simulation already finished"))
	}
	return connect.NewResponse(&StepResponse{T: stats.Period, Done: ctx.Done(), Stats: stats}), nil
}

// GetStats 获取最近一期统计与诊断
func (ctx *Context) GetStats(c context.Context, in *connect.Request[GetStatsRequest]) (*connect.Response[GetStatsResponse], error) {
	stats, diags := ctx.Latest()
	if stats == nil {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("no period has been simulated"))
	}
	return connect.NewResponse(&GetStatsResponse{Stats: stats, Diagnostics: diags}), nil
}

// SaveSnapshot 将家庭快照写入指定路径
func (ctx *Context) SaveSnapshot(c context.Context, in *connect.Request[SaveSnapshotRequest]) (*connect.Response[SaveSnapshotResponse], error) {
	if in.Msg.Path == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("path is required"))
	}
	if err := ctx.householdManager.SaveSnapshot(in.Msg.Path); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&SaveSnapshotResponse{Households: int32(ctx.householdManager.Len())}), nil
}

// Serve 初始化并提供RPC服务，由Step调用驱动
// 功能：监听地址直到上下文取消，然后写出结果并关闭
func (ctx *Context) Serve(c context.Context, addr string) error {
	ctx.Init()
	defer ctx.Close()

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: ctx.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()
	log.Infof("serving %s on %s", ServiceName, lis.Addr())

	select {
	case err := <-errCh:
		return err
	case <-c.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown: %v", err)
	}
	return ctx.Finish(context.Background())
}
