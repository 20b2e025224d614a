package prodrec

import (
	"context"
	"fmt"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/core"
	"github.com/rushteam/prodrec/eval"
	"github.com/rushteam/prodrec/model"
	"github.com/rushteam/prodrec/recall"
)

// 四种对外暴露的策略名。
const (
	StrategyContent       = "content"
	StrategyPopularity    = "popularity"
	StrategyCollaborative = "collaborative"
	StrategyHybrid        = "hybrid"
)

// EngineConfig 是各策略的默认参数，Rank 调用时可按次覆盖。
type EngineConfig struct {
	Content       recall.ContentConfig
	Popularity    recall.PopularityConfig
	Collaborative recall.CollaborativeConfig

	// TargetCount hybrid 兜底链的目标条数
	TargetCount int

	// PopularityKey 热度榜缓存的有序集合 key（Store 非空时生效）
	PopularityKey string
}

// DefaultTrainOptions 返回在线服务的默认训练参数：下采样一半换构建速度。
// 离线评估应改用 SampleFraction=1.0 全量训练（见 RunEvaluation 注释）。
func DefaultTrainOptions(seed int64) model.TrainOptions {
	return model.TrainOptions{SampleFraction: 0.5, Rank: 10, Seed: seed}
}

// DefaultEngineConfig 返回在线服务的默认参数。
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Content:       recall.ContentConfig{MinRating: 2, Limit: 5},
		Popularity:    recall.PopularityConfig{MinReviewCount: 25, MinRating: 3, MinSentiment: 0.6, Limit: 10},
		Collaborative: recall.CollaborativeConfig{CorrelationThreshold: 0.5, TopN: 10},
		TargetCount:   5,
	}
}

// Engine 是推荐集成的 facade：持有全部不可变工件，对外暴露
// 按策略的 Rank 与离线评估 RunEvaluation。
//
// 工件构建完成后 Engine 的所有方法可并发调用。
type Engine struct {
	Catalog *catalog.Catalog
	Index   *model.SimilarityIndex
	Model   *model.LatentModel

	// Store 热度榜缓存（可选）
	Store core.KeyValueStore

	Config EngineConfig
}

// Build 从目录与交互数据构建全部工件并组装 Engine。
//
// 注意采样比例是训练参数：在线服务常用较小比例换速度，离线评估应以
// SampleFraction=1.0 重新 Build 一个全量引擎再跑 RunEvaluation。
func Build(
	c *catalog.Catalog,
	interactions []core.InteractionRecord,
	train model.TrainOptions,
) (*Engine, error) {
	if c == nil || c.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidFeed, "engine: empty catalog")
	}

	index := model.BuildSimilarityIndex(c.Documents())

	latent, err := model.TrainLatentModel(interactions, train)
	if err != nil {
		return nil, err
	}

	return &Engine{
		Catalog: c,
		Index:   index,
		Model:   latent,
		Config:  DefaultEngineConfig(),
	}, nil
}

// RankParams 是单次 Rank 调用的参数覆盖；nil 字段使用 Engine 默认值。
type RankParams struct {
	Content       *recall.ContentConfig
	Popularity    *recall.PopularityConfig
	Collaborative *recall.CollaborativeConfig

	// TargetCount hybrid 的目标条数覆盖（0 使用默认）
	TargetCount int
}

// Rank 按策略生成推荐列表。
// 返回有序、去重、不含参考商品的 ID 列表；空列表是合法结果（软失败），
// 只有未知策略名才报错。
func (e *Engine) Rank(ctx context.Context, strategy, referenceID string, params *RankParams) ([]string, error) {
	src, err := e.source(strategy, params)
	if err != nil {
		return nil, err
	}
	items, err := src.Recall(ctx, &core.RecommendContext{ProductID: referenceID})
	if err != nil {
		return nil, err
	}
	return core.ItemIDs(items), nil
}

// source 按策略名组装召回源。
func (e *Engine) source(strategy string, params *RankParams) (recall.Source, error) {
	contentCfg := e.Config.Content
	popularityCfg := e.Config.Popularity
	collaborativeCfg := e.Config.Collaborative
	target := e.Config.TargetCount
	if params != nil {
		if params.Content != nil {
			contentCfg = *params.Content
		}
		if params.Popularity != nil {
			popularityCfg = *params.Popularity
		}
		if params.Collaborative != nil {
			collaborativeCfg = *params.Collaborative
		}
		if params.TargetCount > 0 {
			target = params.TargetCount
		}
	}

	content := &recall.ContentRecall{Index: e.Index, Catalog: e.Catalog, Config: contentCfg}
	popularity := &recall.PopularityRecall{
		Catalog: e.Catalog,
		Config:  popularityCfg,
		Store:   e.Store,
		Key:     e.Config.PopularityKey,
	}
	collaborative := &recall.CollaborativeRecall{Model: e.Model, Catalog: e.Catalog, Config: collaborativeCfg}

	switch strategy {
	case StrategyContent:
		return content, nil
	case StrategyPopularity:
		return popularity, nil
	case StrategyCollaborative:
		return collaborative, nil
	case StrategyHybrid:
		return &recall.Fallback{
			Sources: []recall.Source{collaborative, content, popularity},
			Target:  target,
		}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", strategy)
	}
}

// evalCollaborativeConfig 是离线评估用的协同参数：阈值放宽到 0.3，
// 与在线服务的 0.5 区分，便于观察策略召回能力而非线上保守策略。
func evalCollaborativeConfig() *recall.CollaborativeConfig {
	return &recall.CollaborativeConfig{CorrelationThreshold: 0.3, TopN: 10}
}

// RunEvaluation 对四种策略跑离线评估，每个策略一行。
// sampleSize/k 为 0 时使用评估器默认值。
func (e *Engine) RunEvaluation(ctx context.Context, sampleSize, k int) (*eval.Report, error) {
	strategyFn := func(name string, params *RankParams) eval.Strategy {
		return eval.Strategy{
			Name: name,
			Recommend: func(ctx context.Context, referenceID string) ([]string, error) {
				return e.Rank(ctx, name, referenceID, params)
			},
		}
	}

	evaluator := &eval.Evaluator{
		Index: e.Index,
		Strategies: []eval.Strategy{
			strategyFn(StrategyContent, nil),
			strategyFn(StrategyPopularity, nil),
			strategyFn(StrategyCollaborative, &RankParams{Collaborative: evalCollaborativeConfig()}),
			strategyFn(StrategyHybrid, nil),
		},
		SampleSize: sampleSize,
		K:          k,
	}
	return evaluator.Run(ctx)
}
