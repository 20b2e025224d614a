package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/core"
	"github.com/rushteam/prodrec/pkg/utils"
)

// PopularityConfig 是热度召回的策略参数。
// 阈值为 0 表示不设门槛。
type PopularityConfig struct {
	// MinReviewCount 最低评论数
	MinReviewCount int

	// MinRating 最低评分
	MinRating float64

	// MinSentiment 最低聚合情感分
	MinSentiment float64

	// Limit 返回条数上限，默认 10
	Limit int
}

// PopularityRecall 是热度召回源，不依赖参考商品。
//
// 排序规则：综合分 = rating × log(1+review_count)，同分按 ID 升序。
// 三个门槛（评论数/评分/情感）全过才入围；无一入围时返回空列表，不报错。
//
// 可选的 Store + Key：离线算好的热度榜写入有序集合，在线直接 ZRange 读取；
// 读不到时退回目录实时计算。
type PopularityRecall struct {
	Catalog *catalog.Catalog
	Config  PopularityConfig

	// Store 热度榜缓存（可选）
	Store core.KeyValueStore
	// Key 有序集合的 key，例如 "popularity:beauty"
	Key string
}

func (r *PopularityRecall) Name() string {
	return "recall.popularity"
}

func (r *PopularityRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	limit := r.Config.Limit
	if limit <= 0 {
		limit = 10
	}

	var reference string
	if rctx != nil {
		reference = rctx.ProductID
	}

	// 优先读缓存榜单
	if r.Store != nil && r.Key != "" {
		members, err := r.Store.ZRange(ctx, r.Key, 0, int64(limit))
		if err == nil && len(members) > 0 {
			out := make([]*core.Item, 0, limit)
			for _, id := range members {
				if id == reference || len(out) >= limit {
					continue
				}
				it := core.NewItem(id)
				if score, err := r.Store.ZScore(ctx, r.Key, id); err == nil {
					it.Score = score
				}
				it.PutLabel("recall_source", utils.Label{Value: "popularity", Source: "recall"})
				it.PutLabel("popularity_from", utils.Label{Value: "store", Source: "recall"})
				out = append(out, it)
			}
			return out, nil
		}
	}

	ranked := r.rank()
	out := make([]*core.Item, 0, limit)
	for _, c := range ranked {
		if c.id == reference {
			continue
		}
		if len(out) >= limit {
			break
		}
		it := core.NewItem(c.id)
		it.Score = c.score
		it.PutLabel("recall_source", utils.Label{Value: "popularity", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// Publish 把完整热度榜写入有序集合，供在线路径 ZRange 读取。
func (r *PopularityRecall) Publish(ctx context.Context, store core.KeyValueStore, key string) error {
	for _, c := range r.rank() {
		if err := store.ZAdd(ctx, key, c.score, c.id); err != nil {
			return err
		}
	}
	return nil
}

type rankedProduct struct {
	id    string
	score float64
}

// rank 过滤并按综合热度分降序排列全目录。
func (r *PopularityRecall) rank() []rankedProduct {
	if r.Catalog == nil {
		return nil
	}
	out := make([]rankedProduct, 0, r.Catalog.Len())
	for _, p := range r.Catalog.All() {
		reviews := 0
		if p.ReviewCount != nil {
			reviews = *p.ReviewCount
		}
		if reviews < r.Config.MinReviewCount {
			continue
		}
		rating := 0.0
		if p.Rating != nil {
			rating = *p.Rating
		}
		if rating < r.Config.MinRating {
			continue
		}
		sentiment := 0.0
		if p.Sentiment != nil {
			sentiment = *p.Sentiment
		}
		if sentiment < r.Config.MinSentiment {
			continue
		}
		out = append(out, rankedProduct{
			id:    p.ID,
			score: rating * math.Log1p(float64(reviews)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id
	})
	return out
}
