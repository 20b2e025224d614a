package filter

import (
	"context"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/core"
)

// MinRating 按目录评分过滤候选：评分缺失或低于 Min 的商品移除。
// 协同召回默认不做评分过滤，需要时把本过滤器挂在其后。
type MinRating struct {
	Catalog *catalog.Catalog
	Min     float64
}

func (f *MinRating) Name() string {
	return "filter.min_rating"
}

func (f *MinRating) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if f.Catalog == nil || item == nil {
		return false, nil
	}
	p, ok := f.Catalog.Get(item.ID)
	if !ok || p.Rating == nil {
		return true, nil
	}
	return *p.Rating < f.Min, nil
}
