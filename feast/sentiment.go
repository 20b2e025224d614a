package feast

import (
	"context"

	"github.com/rushteam/prodrec/pkg/conv"
)

// 默认的特征命名约定：实体键 asin，特征 product_sentiment:positive_prob。
const (
	DefaultEntityKey = "asin"
	DefaultFeature   = "product_sentiment:positive_prob"
)

// SentimentProvider 把 Feast 在线特征适配为 catalog.SentimentProvider：
// 商品的聚合情感分由外部特征管道算好、物化到在线存储，这里按需批量拉取。
type SentimentProvider struct {
	Client Client

	// EntityKey 实体键名，默认 "asin"
	EntityKey string

	// Feature 特征名，默认 "product_sentiment:positive_prob"
	Feature string
}

func (p *SentimentProvider) entityKey() string {
	if p.EntityKey != "" {
		return p.EntityKey
	}
	return DefaultEntityKey
}

func (p *SentimentProvider) feature() string {
	if p.Feature != "" {
		return p.Feature
	}
	return DefaultFeature
}

// ProductSentiment 批量读取商品情感分。在线存储中没有的商品不出现在结果里。
func (p *SentimentProvider) ProductSentiment(ctx context.Context, productIDs []string) (map[string]float64, error) {
	if p.Client == nil || len(productIDs) == 0 {
		return map[string]float64{}, nil
	}

	entityRows := make([]map[string]any, len(productIDs))
	for i, id := range productIDs {
		entityRows[i] = map[string]any{p.entityKey(): id}
	}

	resp, err := p.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{p.feature()},
		EntityRows: entityRows,
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(productIDs))
	for i, fv := range resp.FeatureVectors {
		raw, ok := fv.Values[p.feature()]
		if !ok {
			continue
		}
		score, ok := conv.ToFloat64(raw)
		if !ok || score < 0 || score > 1 {
			continue
		}
		out[productIDs[i]] = score
	}
	return out, nil
}
