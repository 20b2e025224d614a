package recall

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/core"
	"github.com/rushteam/prodrec/model"
	"github.com/rushteam/prodrec/pkg/utils"
)

// CollaborativeConfig 是协同隐因子召回的策略参数。
type CollaborativeConfig struct {
	// CorrelationThreshold 因子向量相关系数的入围下限
	CorrelationThreshold float64

	// TopN 返回条数上限，默认 10
	TopN int

	// MinRating 可选的最低评分过滤（0 表示不过滤）。
	// 协同输出是否按评分过滤是策略选择，默认与内容/热度不同：不过滤。
	MinRating float64
}

// CollaborativeRecall 是基于隐因子模型的召回源。
//
// 核心思想：交互矩阵低秩分解后，因子向量相关的商品"被同一批人喜欢"。
//
// 流程：
//  1. 取参考商品的因子行（无交互记录 → 空列表）
//  2. 与其余每个商品的因子行算 Pearson 相关
//  3. 相关系数 ≥ 阈值者入围，降序排列，同分按 ID 升序
//  4. 截断到 TopN
//
// 数值退化（零方差因子向量、NaN）只影响对应候选，整体不失败。
type CollaborativeRecall struct {
	Model   *model.LatentModel
	Config  CollaborativeConfig
	Catalog *catalog.Catalog // MinRating > 0 时必需
}

func (r *CollaborativeRecall) Name() string {
	return "recall.collaborative"
}

func (r *CollaborativeRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Model == nil || rctx == nil || rctx.ProductID == "" {
		return nil, nil
	}

	ref, ok := r.Model.ProductFactor(rctx.ProductID)
	if !ok {
		// 参考商品无因子行（零交互）：软失败
		return nil, nil
	}

	type scored struct {
		id   string
		corr float64
	}
	candidates := make([]scored, 0, r.Model.NumProducts())
	for _, id := range r.Model.Products() {
		if id == rctx.ProductID {
			continue
		}
		vec, _ := r.Model.ProductFactor(id)
		corr := pearson(ref, vec)
		if math.IsNaN(corr) || math.IsInf(corr, 0) {
			slog.Debug("collaborative: degenerate correlation, candidate skipped",
				"reference", rctx.ProductID, "candidate", id)
			continue
		}
		if corr < r.Config.CorrelationThreshold {
			continue
		}
		candidates = append(candidates, scored{id: id, corr: corr})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].corr != candidates[j].corr {
			return candidates[i].corr > candidates[j].corr
		}
		return candidates[i].id < candidates[j].id
	})

	topN := r.Config.TopN
	if topN <= 0 {
		topN = 10
	}

	out := make([]*core.Item, 0, topN)
	for _, c := range candidates {
		if len(out) >= topN {
			break
		}
		if r.Config.MinRating > 0 && r.Catalog != nil {
			p, ok := r.Catalog.Get(c.id)
			if !ok || p.Rating == nil || *p.Rating < r.Config.MinRating {
				continue
			}
		}
		it := core.NewItem(c.id)
		it.Score = c.corr
		it.PutLabel("recall_source", utils.Label{Value: "collaborative", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// pearson 计算皮尔逊相关系数。长度不符或方差为零返回 0。
func pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(len(x))
	meanY /= float64(len(y))

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
