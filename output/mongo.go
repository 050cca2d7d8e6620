package output

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/household"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/population"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// periodDoc MongoDB中一期的文档
type periodDoc struct {
	RunID       string                  `bson:"run_id"`
	Period      int32                   `bson:"period"`
	Stats       *population.Stats       `bson:"stats"`
	Macro       entity.Macro            `bson:"macro"`
	Fiscal      entity.Fiscal           `bson:"fiscal"`
	Diagnostics []population.Diagnostic `bson:"diagnostics"`
}

// Mongo 基于MongoDB的统计输出
// 说明：每期一个文档写入配置的集合，运行信息写入<col>_runs，家庭截面写入<col>_households
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	col    string
	runID  string
}

// OpenMongo 连接MongoDB
func OpenMongo(ctx context.Context, c config.Mongo) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{
		client: client,
		db:     client.Database(lo.Ternary(c.DB != "", c.DB, "household")),
		col:    lo.Ternary(c.Col != "", c.Col, "stats"),
	}, nil
}

func (r *Mongo) Begin(ctx context.Context, run Run) error {
	r.runID = run.ID
	_, err := r.db.Collection(r.col+"_runs").InsertOne(ctx, run)
	return err
}

func (r *Mongo) RecordPeriod(ctx context.Context, p Period) error {
	_, err := r.db.Collection(r.col).InsertOne(ctx, periodDoc{
		RunID:       r.runID,
		Period:      p.Stats.Period,
		Stats:       p.Stats,
		Macro:       p.Macro,
		Fiscal:      p.Fiscal,
		Diagnostics: p.Diagnostics,
	})
	if err != nil {
		return fmt.Errorf("insert period %d: %w", p.Stats.Period, err)
	}
	return nil
}

func (r *Mongo) Finish(ctx context.Context, households []*household.Household) error {
	rows := householdRows(r.runID, households)
	if len(rows) == 0 {
		return nil
	}
	docs := lo.Map(rows, func(row HouseholdRow, _ int) any { return row })
	if _, err := r.db.Collection(r.col+"_households").InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert households: %w", err)
	}
	return nil
}

func (r *Mongo) Close() error {
	return r.client.Disconnect(context.Background())
}

// CountPeriods 一次运行已写入的期数
func (r *Mongo) CountPeriods(ctx context.Context, runID string) (int64, error) {
	return r.db.Collection(r.col).CountDocuments(ctx, bson.M{"run_id": runID})
}
