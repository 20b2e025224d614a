// Package eval 是离线评估框架：对每种召回策略，以"内容相似 top-k"
// 作为代理相关集，计算 precision@k / recall@k / diversity。
//
// 代理相关集是启发式的基准，不是真实用户反馈。尤其对内容策略存在
// 天然偏向（它按构造就倾向命中自己的相似度排序）。这是已知的评估偏差，
// 按约定不做修正，结论解读时须注意。
package eval

import (
	"github.com/rushteam/prodrec/model"
)

// PrecisionAtK 计算 precision@k = |top-k 候选 ∩ 相关集| / k。
// k <= 0 返回 0。结果恒在 [0,1]。
func PrecisionAtK(recommended, relevant []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	return float64(hitsAtK(recommended, relevant, k)) / float64(k)
}

// RecallAtK 计算 recall@k = |top-k 候选 ∩ 相关集| / |相关集|。
// 相关集为空返回 0（INSUFFICIENT_DATA 的定义零值）。结果恒在 [0,1]。
func RecallAtK(recommended, relevant []string, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(relevant))
	for _, id := range relevant {
		set[id] = struct{}{}
	}
	return float64(hitsAtK(recommended, relevant, k)) / float64(len(set))
}

func hitsAtK(recommended, relevant []string, k int) int {
	if k > len(recommended) {
		k = len(recommended)
	}
	set := make(map[string]struct{}, len(relevant))
	for _, id := range relevant {
		set[id] = struct{}{}
	}
	hits := 0
	for _, id := range recommended[:k] {
		if _, ok := set[id]; ok {
			hits++
		}
	}
	return hits
}

// Diversity 计算多样性 = 1 − 推荐集内两两内容相似度的均值。
// 映射进相似度索引的候选不足 2 个时返回 0（定义零值，非错误）。
func Diversity(recommended []string, index *model.SimilarityIndex) float64 {
	if index == nil {
		return 0
	}
	rows := make([]int, 0, len(recommended))
	for _, id := range recommended {
		if i, ok := index.Index(id); ok {
			rows = append(rows, i)
		}
	}
	if len(rows) < 2 {
		return 0
	}

	var sum float64
	var count int
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			sim, _ := index.Similarity(index.IDAt(rows[i]), index.IDAt(rows[j]))
			sum += sim
			count++
		}
	}
	return 1 - sum/float64(count)
}

// ProxyRelevance 为参考商品导出代理相关集：内容相似度前 k 的商品（排除自身）。
// 参考商品不在索引中时返回空集。
func ProxyRelevance(index *model.SimilarityIndex, referenceID string, k int) []string {
	if index == nil {
		return nil
	}
	return index.MostSimilar(referenceID, k)
}
