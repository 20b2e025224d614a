// Package model 存放由目录/交互数据派生的只读模型工件：
// 内容相似度索引（SimilarityIndex）与隐因子模型（LatentModel）。
//
// 工件一次性构建，构建完成后不可变；底层数据变化时整体重建并原子替换，
// 绝不原地部分修改。因此所有读取路径可无锁并发。
package model

import (
	"math"
	"sort"

	"github.com/rushteam/prodrec/catalog"
)

// SimilarityIndex 是商品描述的两两余弦相似度索引。
//
// 结构：
//   - N×N 对称矩阵，N 为"有非空描述"的商品数
//   - 对角线恒为 1.0（自相似）
//   - id↔行号 双向映射；行序不保证等于目录顺序，映射是唯一合法的查找路径
type SimilarityIndex struct {
	ids    []string       // 行号 -> 商品 ID
	rows   map[string]int // 商品 ID -> 行号
	matrix [][]float64
}

// BuildSimilarityIndex 对全部文档做词频向量化并计算两两余弦相似度。
// 零向量（词表外文本）与任何向量的相似度记 0，对角线仍置 1。
func BuildSimilarityIndex(docs []catalog.Document) *SimilarityIndex {
	n := len(docs)
	idx := &SimilarityIndex{
		ids:    make([]string, n),
		rows:   make(map[string]int, n),
		matrix: make([][]float64, n),
	}

	texts := make([]string, n)
	for i, d := range docs {
		idx.ids[i] = d.ProductID
		idx.rows[d.ProductID] = i
		texts[i] = d.Text
	}

	vectorizer := NewVectorizer(texts)

	// 先做 L2 归一化，余弦相似度退化为点积
	unit := make([][]float64, n)
	for i, text := range texts {
		vec := vectorizer.Encode(text)
		var norm float64
		for _, x := range vec {
			norm += x * x
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vec {
				vec[j] /= norm
			}
		}
		unit[i] = vec
	}

	for i := 0; i < n; i++ {
		idx.matrix[i] = make([]float64, n)
		idx.matrix[i][i] = 1.0
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var dot float64
			for k := range unit[i] {
				dot += unit[i][k] * unit[j][k]
			}
			idx.matrix[i][j] = dot
			idx.matrix[j][i] = dot
		}
	}
	return idx
}

// Len 返回索引收录的商品数。
func (s *SimilarityIndex) Len() int {
	return len(s.ids)
}

// Index 返回商品的行号；商品不在索引中返回 (0, false)。
func (s *SimilarityIndex) Index(productID string) (int, bool) {
	i, ok := s.rows[productID]
	return i, ok
}

// IDAt 返回行号对应的商品 ID。
func (s *SimilarityIndex) IDAt(i int) string {
	return s.ids[i]
}

// Row 返回商品的相似度行；商品不在索引中返回 (nil, false)。
// 返回的是内部切片，调用方不得修改。
func (s *SimilarityIndex) Row(productID string) ([]float64, bool) {
	i, ok := s.rows[productID]
	if !ok {
		return nil, false
	}
	return s.matrix[i], true
}

// Similarity 返回两个商品的相似度；任一商品不在索引中返回 (0, false)。
func (s *SimilarityIndex) Similarity(a, b string) (float64, bool) {
	i, ok := s.rows[a]
	if !ok {
		return 0, false
	}
	j, ok := s.rows[b]
	if !ok {
		return 0, false
	}
	return s.matrix[i][j], true
}

// MostSimilar 返回与参考商品最相似的 k 个商品 ID（排除参考商品自身）。
// 相似度降序，同分按商品 ID 升序，保证确定性。
// 参考商品不在索引中时返回空列表（软失败）。
func (s *SimilarityIndex) MostSimilar(productID string, k int) []string {
	row, ok := s.Row(productID)
	if !ok || k <= 0 {
		return nil
	}

	type scored struct {
		id  string
		sim float64
	}
	candidates := make([]scored, 0, len(row)-1)
	for i, sim := range row {
		id := s.ids[i]
		if id == productID {
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

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out
}
