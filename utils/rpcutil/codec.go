// connect服务的JSON编解码与注册工具，服务消息为普通Go结构体
package rpcutil

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
)

// Codec 基于encoding/json的connect编解码器
// 说明：名称为json，替换connect默认的protojson编解码器，消息类型无需实现proto.Message
type Codec struct{}

func (Codec) Name() string {
	return "json"
}

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Register 将一元调用注册到mux
// 参数：mux-HTTP路由，procedure-完整过程名（/包名.服务名/方法名），h-处理函数
func Register[Req, Res any](mux *http.ServeMux, procedure string, h func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error)) {
	mux.Handle(procedure, connect.NewUnaryHandler[Req, Res](procedure, h, connect.WithCodec(Codec{})))
}

// NewClient 创建一元调用客户端
// 参数：httpClient-HTTP客户端，baseURL-服务地址，procedure-完整过程名
func NewClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, connect.WithCodec(Codec{}))
}
