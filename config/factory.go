// Package config 把 YAML/JSON 的 pipeline 配置落成可执行的 Node 链。
//
// 使用方式：
//
//	rt := &config.Runtime{Catalog: c, Index: idx, Model: m}
//	cfg, _ := pipeline.LoadFromYAML("pipeline.yaml")
//	p, _ := cfg.BuildPipeline(config.DefaultFactory(rt))
package config

import (
	"context"
	"fmt"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/core"
	"github.com/rushteam/prodrec/filter"
	"github.com/rushteam/prodrec/model"
	"github.com/rushteam/prodrec/pipeline"
	"github.com/rushteam/prodrec/pkg/conv"
	"github.com/rushteam/prodrec/recall"
	"github.com/rushteam/prodrec/rerank"
)

// Runtime 承载构建 Node 所需的不可变工件。
// 配置只描述策略参数；目录/索引/模型这类运行期对象由宿主注入。
type Runtime struct {
	Catalog *catalog.Catalog
	Index   *model.SimilarityIndex
	Model   *model.LatentModel
	Store   core.KeyValueStore
}

// DefaultFactory 返回包含全部内置 Node 构建器的工厂。
func DefaultFactory(rt *Runtime) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	factory.Register("recall.content", func(cfg map[string]any) (pipeline.Node, error) {
		return asNode(buildContent(rt, cfg)), nil
	})
	factory.Register("recall.popularity", func(cfg map[string]any) (pipeline.Node, error) {
		return asNode(buildPopularity(rt, cfg)), nil
	})
	factory.Register("recall.collaborative", func(cfg map[string]any) (pipeline.Node, error) {
		return asNode(buildCollaborative(rt, cfg)), nil
	})
	factory.Register("recall.fallback", func(cfg map[string]any) (pipeline.Node, error) {
		return buildFallback(rt, cfg)
	})
	factory.Register("filter.min_rating", func(cfg map[string]any) (pipeline.Node, error) {
		return &filter.Node{Filters: []filter.Filter{
			&filter.MinRating{
				Catalog: rt.Catalog,
				Min:     conv.ConfigGetFloat(cfg, "min_rating", 0),
			},
		}}, nil
	})
	factory.Register("filter.rule", func(cfg map[string]any) (pipeline.Node, error) {
		expr := conv.ConfigGet[string](cfg, "expr", "")
		if expr == "" {
			return nil, fmt.Errorf("filter.rule: expr is required")
		}
		return &filter.Node{Filters: []filter.Filter{
			&filter.Rule{Catalog: rt.Catalog, Expr: expr},
		}}, nil
	})
	factory.Register("rerank.topn", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.TopN{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
	})
	factory.Register("rerank.diversity", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.Diversity{Catalog: rt.Catalog}, nil
	})

	return factory
}

func buildContent(rt *Runtime, cfg map[string]any) *recall.ContentRecall {
	return &recall.ContentRecall{
		Index:   rt.Index,
		Catalog: rt.Catalog,
		Config: recall.ContentConfig{
			MinRating: conv.ConfigGetFloat(cfg, "min_rating", 0),
			Limit:     conv.ConfigGetInt(cfg, "limit", 0),
		},
	}
}

func buildPopularity(rt *Runtime, cfg map[string]any) *recall.PopularityRecall {
	return &recall.PopularityRecall{
		Catalog: rt.Catalog,
		Store:   rt.Store,
		Key:     conv.ConfigGet[string](cfg, "store_key", ""),
		Config: recall.PopularityConfig{
			MinReviewCount: conv.ConfigGetInt(cfg, "min_review_count", 0),
			MinRating:      conv.ConfigGetFloat(cfg, "min_rating", 0),
			MinSentiment:   conv.ConfigGetFloat(cfg, "min_sentiment", 0),
			Limit:          conv.ConfigGetInt(cfg, "limit", 0),
		},
	}
}

func buildCollaborative(rt *Runtime, cfg map[string]any) *recall.CollaborativeRecall {
	return &recall.CollaborativeRecall{
		Model:   rt.Model,
		Catalog: rt.Catalog,
		Config: recall.CollaborativeConfig{
			CorrelationThreshold: conv.ConfigGetFloat(cfg, "correlation_threshold", 0),
			TopN:                 conv.ConfigGetInt(cfg, "top_n", 0),
			MinRating:            conv.ConfigGetFloat(cfg, "min_rating", 0),
		},
	}
}

func buildFallback(rt *Runtime, cfg map[string]any) (pipeline.Node, error) {
	rawSources, ok := cfg["sources"].([]any)
	if !ok || len(rawSources) == 0 {
		return nil, fmt.Errorf("recall.fallback: sources is required")
	}

	sources := make([]recall.Source, 0, len(rawSources))
	for _, raw := range rawSources {
		sourceMap, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("recall.fallback: invalid source entry")
		}
		sourceType := conv.ConfigGet[string](sourceMap, "type", "")
		sourceCfg, _ := sourceMap["config"].(map[string]any)
		switch sourceType {
		case "content":
			sources = append(sources, buildContent(rt, sourceCfg))
		case "popularity":
			sources = append(sources, buildPopularity(rt, sourceCfg))
		case "collaborative":
			sources = append(sources, buildCollaborative(rt, sourceCfg))
		default:
			return nil, fmt.Errorf("recall.fallback: unknown source type %q", sourceType)
		}
	}

	return &recall.Fallback{
		Sources: sources,
		Target:  conv.ConfigGetInt(cfg, "target", 0),
	}, nil
}

// asNode 把纯 Source 包装成 Pipeline Node（召回阶段）。
func asNode(src recall.Source) pipeline.Node {
	return &sourceNode{src: src}
}

type sourceNode struct {
	src recall.Source
}

func (n *sourceNode) Name() string        { return n.src.Name() }
func (n *sourceNode) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *sourceNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.src.Recall(ctx, rctx)
}
