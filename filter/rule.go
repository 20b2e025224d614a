package filter

import (
	"context"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/core"
	"github.com/rushteam/prodrec/pkg/dsl"
)

// Rule 是 CEL 表达式驱动的过滤器：表达式为 true 的候选保留，false 过滤。
//
// 示例：
//
//	&filter.Rule{
//	    Catalog: c,
//	    Expr:    `product.rating != null && product.rating >= 3.0`,
//	}
type Rule struct {
	Catalog *catalog.Catalog

	// Expr CEL 表达式，对候选求值；空表达式不过滤任何候选
	Expr string
}

func (f *Rule) Name() string {
	return "filter.rule"
}

func (f *Rule) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}
	var product *core.Product
	if f.Catalog != nil {
		product, _ = f.Catalog.Get(item.ID)
	}
	keep, err := dsl.NewEval(item, product).Evaluate(f.Expr)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
