package recall

import (
	"context"
	"sort"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/core"
	"github.com/rushteam/prodrec/model"
	"github.com/rushteam/prodrec/pkg/utils"
)

// ContentConfig 是内容相似召回的策略参数。
type ContentConfig struct {
	// MinRating 候选商品的最低评分；评分缺失的商品一律过滤
	MinRating float64

	// Limit 返回条数上限
	Limit int
}

// ContentRecall 是基于描述相似度的召回源。
//
// 核心思想："描述相近的商品相互可替代"
//
// 流程：
//  1. 取参考商品的相似度行（不在索引中 → 空列表）
//  2. 其余商品按相似度降序排序，同分按 ID 升序
//  3. 过滤评分缺失或低于 MinRating 的商品
//  4. 截断到 Limit
//
// 纯函数：对预计算工件的只读操作，无副作用。
type ContentRecall struct {
	Index   *model.SimilarityIndex
	Catalog *catalog.Catalog
	Config  ContentConfig
}

func (r *ContentRecall) Name() string {
	return "recall.content"
}

func (r *ContentRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil || rctx == nil || rctx.ProductID == "" {
		return nil, nil
	}

	row, ok := r.Index.Row(rctx.ProductID)
	if !ok {
		// 参考商品不在索引中：软失败
		return nil, nil
	}

	type scored struct {
		id  string
		sim float64
	}
	candidates := make([]scored, 0, len(row)-1)
	for i, sim := range row {
		id := r.Index.IDAt(i)
		if id == rctx.ProductID {
			continue
		}
		candidates = append(candidates, scored{id: id, sim: sim})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].id < candidates[j].id
	})

	limit := r.Config.Limit
	if limit <= 0 {
		limit = 5
	}

	out := make([]*core.Item, 0, limit)
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		if r.Catalog != nil {
			p, ok := r.Catalog.Get(c.id)
			if !ok || p.Rating == nil || *p.Rating < r.Config.MinRating {
				continue
			}
		}
		it := core.NewItem(c.id)
		it.Score = c.sim
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
