package input

import (
	"context"
	"fmt"
	"sort"

	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Input 输入数据
// 功能：存储仿真所需的可选外部输入
// 说明：情景序列按期数排序；种子模板为空时由配置生成
type Input struct {
	Scenario  []entity.ScenarioPoint
	Templates []*household.Template
}

// Init 加载输入数据
// 功能：根据配置从文件或MongoDB加载宏观情景序列与种子家庭模板
// 参数：ctx-上下文，cfg-配置对象，cacheDir-缓存目录（为空则不缓存）
// 返回：加载完成的输入数据，失败时返回错误
// 算法说明：
// 1. 缓存检查：验证缓存目录的有效性
// 2. 数据库连接：任一输入来自MongoDB时建立连接
// 3. 逐项加载：文件优先，其次缓存，最后MongoDB
// 4. 数据验证：情景期数不得重复，模板阶层必须合法
func Init(ctx context.Context, cfg config.Config, cacheDir string) (*Input, error) {
	if !preCheckCache(cacheDir) {
		cacheDir = ""
	}
	in := cfg.Input
	res := &Input{}

	var client *mongo.Client
	if needMongo(in.Scenario) || needMongo(in.Households) {
		if in.URI == "" {
			return nil, fmt.Errorf("input.uri is required to load from MongoDB")
		}
		var err error
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(in.URI))
		if err != nil {
			return nil, fmt.Errorf("connect to %s: %w", in.URI, err)
		}
		defer client.Disconnect(context.Background())
	}

	var err error
	if in.Scenario != nil && !in.Scenario.Empty() {
		if res.Scenario, err = load[entity.ScenarioPoint](ctx, client, *in.Scenario, cacheDir); err != nil {
			return nil, fmt.Errorf("load scenario: %w", err)
		}
		sort.Slice(res.Scenario, func(i, j int) bool { return res.Scenario[i].Period < res.Scenario[j].Period })
		for i := 1; i < len(res.Scenario); i++ {
			if res.Scenario[i].Period == res.Scenario[i-1].Period {
				return nil, fmt.Errorf("scenario has duplicated period %d", res.Scenario[i].Period)
			}
		}
		log.Infof("loaded %d scenario periods", len(res.Scenario))
	}
	if in.Households != nil && !in.Households.Empty() {
		var ts []household.Template
		if ts, err = load[household.Template](ctx, client, *in.Households, cacheDir); err != nil {
			return nil, fmt.Errorf("load household templates: %w", err)
		}
		for i := range ts {
			res.Templates = append(res.Templates, &ts[i])
		}
		if _, err := household.GroupTemplates(res.Templates); err != nil {
			return nil, err
		}
		log.Infof("loaded %d household templates", len(res.Templates))
	}
	return res, nil
}

func needMongo(p *config.InputPath) bool {
	return p != nil && p.File == "" && !p.Empty()
}

// load 加载一项输入（泛型函数）
// 功能：从YAML文件、缓存或MongoDB集合加载记录列表
// 参数：client-MongoDB客户端，path-输入路径配置，cacheDir-缓存目录
// 返回：记录列表
// 说明：从MongoDB下载的数据在缓存目录可用时写入缓存，下次直接读取
func load[T any](ctx context.Context, client *mongo.Client, path config.InputPath, cacheDir string) ([]T, error) {
	if path.File != "" {
		return loadFile[T](path.File)
	}
	if cached, ok := loadCache[T](cacheDir, path); ok {
		return cached, nil
	}
	log.Infof("start fetching from %s.%s", path.DB, path.Col)
	cur, err := client.Database(path.DB).Collection(path.Col).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find %s.%s: %w", path.DB, path.Col, err)
	}
	var res []T
	if err := cur.All(ctx, &res); err != nil {
		return nil, fmt.Errorf("decode %s.%s: %w", path.DB, path.Col, err)
	}
	log.Infof("finish fetching %d records from %s.%s", len(res), path.DB, path.Col)
	saveCache(cacheDir, path, res)
	return res, nil
}
