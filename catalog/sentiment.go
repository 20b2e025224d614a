package catalog

import (
	"context"

	"github.com/rushteam/prodrec/core"
)

// SentimentProvider 按商品 ID 批量提供聚合情感分 [0,1]。
// 默认实现基于交互记录聚合（InteractionSentiment）；
// 也可由外部特征库（如 Feast 在线存储）提供。
type SentimentProvider interface {
	ProductSentiment(ctx context.Context, productIDs []string) (map[string]float64, error)
}

// AggregateSentiment 按商品聚合 positive_prob 的均值。
// 同一 (user, product) 的重复记录各算一次，等价于按出现次数加权的均值。
func AggregateSentiment(interactions []core.InteractionRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rec := range interactions {
		if rec.ProductID == "" {
			continue
		}
		sums[rec.ProductID] += rec.PositiveProb
		counts[rec.ProductID]++
	}
	out := make(map[string]float64, len(sums))
	for id, sum := range sums {
		out[id] = sum / float64(counts[id])
	}
	return out
}

// InteractionSentiment 是基于交互记录的 SentimentProvider 实现。
// 构造时一次性聚合，查询路径只读。
type InteractionSentiment struct {
	scores map[string]float64
}

func NewInteractionSentiment(interactions []core.InteractionRecord) *InteractionSentiment {
	return &InteractionSentiment{scores: AggregateSentiment(interactions)}
}

func (s *InteractionSentiment) ProductSentiment(_ context.Context, productIDs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(productIDs))
	for _, id := range productIDs {
		if score, ok := s.scores[id]; ok {
			out[id] = score
		}
	}
	return out, nil
}

// ApplySentiment 用 provider 的结果回填目录中 Sentiment 缺失的商品。
// 数据源自带的情感分优先，不被覆盖。
func ApplySentiment(ctx context.Context, c *Catalog, provider SentimentProvider) error {
	if c == nil || provider == nil {
		return nil
	}
	missing := make([]string, 0, c.Len())
	for _, p := range c.All() {
		if p.Sentiment == nil {
			missing = append(missing, p.ID)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	scores, err := provider.ProductSentiment(ctx, missing)
	if err != nil {
		return err
	}
	for _, id := range missing {
		if score, ok := scores[id]; ok {
			p, _ := c.Get(id)
			s := score
			p.Sentiment = &s
		}
	}
	return nil
}
