// Package pipeline 把推荐逻辑拆成可组合的 Node 链（Recall → Filter → ReRank）。
package pipeline

import (
	"context"

	"github.com/rushteam/prodrec/core"
)

// Pipeline 按顺序执行 Node 链，前一个 Node 的输出是后一个的输入。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
