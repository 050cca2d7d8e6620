package household

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/loan"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/parallel"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// SaveSnapshot 保存家庭快照
// 功能：将全部家庭的参数、最近提交的状态与贷款账本序列化为protobuf文件
// 算法说明：
// 1. 并行生成家庭视图，再逐个经JSON转换为structpb.Value
// 2. 全部家庭组成structpb.ListValue后用proto.Marshal写入文件
func (m *HouseholdManager) SaveSnapshot(filePath string) error {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	views := parallel.GoMap(m.households, (*Household).view)
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(views))}
	for _, view := range views {
		v, err := toValue(view)
		if err != nil {
			return fmt.Errorf("failed to convert household %d: %w", view.ID, err)
		}
		list.Values = append(list.Values, v)
	}
	data, err := proto.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal households: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	log.Infof("saved %d households to %s", len(m.households), filePath)
	return nil
}

// LoadSnapshot 读取家庭快照并恢复家庭
// 参数：filePath-快照文件，depth-历史深度
// 返回：按快照顺序排列的家庭，恢复的状态作为滞后1期记录
func LoadSnapshot(filePath string, depth int) ([]*Household, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	list := &structpb.ListValue{}
	if err := proto.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal households: %w", err)
	}
	res := make([]*Household, 0, len(list.Values))
	for i, v := range list.Values {
		var view View
		if err := fromValue(v, &view); err != nil {
			return nil, fmt.Errorf("bad household #%d: %w", i, err)
		}
		h, err := Restore(view, depth)
		if err != nil {
			return nil, fmt.Errorf("bad household #%d: %w", i, err)
		}
		res = append(res, h)
	}
	return res, nil
}

// Restore 由家庭视图恢复家庭，视图中的状态与贷款账本作为滞后1期记录提交
func Restore(view View, depth int) (*Household, error) {
	typ, ok := entity.ParseHouseholdType(view.Type)
	if !ok {
		return nil, fmt.Errorf("unknown household type %q", view.Type)
	}
	h := newHousehold(view.ID, typ, view.Params, depth)
	h.cur = view.State
	h.loans = loan.FromRecords(view.Loans)
	h.commit()
	return h, nil
}

func toValue(x any) (*structpb.Value, error) {
	b, err := json.Marshal(x)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewValue(m)
}

func fromValue(v *structpb.Value, x any) error {
	b, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, x)
}
