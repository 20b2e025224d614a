package rerank

import (
	"context"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/core"
	"github.com/rushteam/prodrec/pipeline"
)

// Diversity 按类目去重的多样性重排：每个一级类目只保留首个出现的候选。
// 类目取目录中商品类目路径的第一段；无类目的候选直接保留。
type Diversity struct {
	Catalog *catalog.Catalog
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || n.Catalog == nil {
		return items, nil
	}

	seen := make(map[string]bool, 16)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		category := ""
		if p, ok := n.Catalog.Get(it.ID); ok && len(p.Categories) > 0 {
			category = p.Categories[0]
		}
		if category == "" {
			out = append(out, it)
			continue
		}
		if seen[category] {
			continue
		}
		seen[category] = true
		out = append(out, it)
	}
	return out, nil
}
