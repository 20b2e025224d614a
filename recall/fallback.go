package recall

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/rushteam/prodrec/core"
	"github.com/rushteam/prodrec/pipeline"
	"github.com/rushteam/prodrec/pkg/utils"
)

// Fallback 是按优先级串联多个召回源的兜底链（hybrid 策略）。
//
// 与并发 fan-out 不同，兜底链是顺序语义：前一个策略不够数才调下一个，
// 够数立即短路，后续策略根本不会被调用。
//
// 合并规则：
//   - 按来源顺序稳定合并，先到先得（首个产出某候选的策略占据其排名位）
//   - 按 ID 去重，永不包含参考商品
//   - 凑满 Target 即停；所有策略耗尽仍不足 Target 不算错误
//   - 单个策略出错只记录日志并跳过，不中断链路
//
// 同时实现 Source 和 pipeline.Node，可以直接编排进 Pipeline。
type Fallback struct {
	Sources []Source

	// Target 目标条数，默认 5
	Target int
}

func (n *Fallback) Name() string        { return "recall.fallback" }
func (n *Fallback) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (n *Fallback) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (n *Fallback) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	target := n.Target
	if target <= 0 {
		target = 5
	}

	var reference string
	if rctx != nil {
		reference = rctx.ProductID
	}

	seen := make(map[string]struct{}, target)
	out := make([]*core.Item, 0, target)

	for priority, src := range n.Sources {
		if len(out) >= target {
			break // 短路：后续策略不再调用
		}
		items, err := src.Recall(ctx, rctx)
		if err != nil {
			// 单策略失败视为瞬态：记录并继续兜底
			slog.Warn("fallback: source failed, continuing",
				"source", src.Name(), "reference", reference, "err", err)
			continue
		}
		for _, it := range items {
			if it == nil || it.ID == reference {
				continue
			}
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			it.PutLabel("recall_priority", utils.Label{Value: strconv.Itoa(priority), Source: "recall"})
			out = append(out, it)
			if len(out) >= target {
				break
			}
		}
	}
	return out, nil
}
