package model

import "strings"

// Vectorizer 将已归一化的描述文本映射为词频向量。
//
// 核心思想：
//   - 全量文本扫一遍建词表（word → 维度下标）
//   - Encode 时按词表计数，得到固定维度的稠密向量
//
// 文本归一化（大小写/标点/词干）由数据准备层完成，这里只按空白切词。
type Vectorizer struct {
	// Vocabulary 词表：word -> 向量维度下标
	Vocabulary map[string]int
}

// NewVectorizer 扫描全部文本构建词表。
// 词的维度下标按首次出现顺序分配，保证构建确定性。
func NewVectorizer(texts []string) *Vectorizer {
	vocab := make(map[string]int)
	for _, text := range texts {
		for _, word := range strings.Fields(text) {
			if _, ok := vocab[word]; !ok {
				vocab[word] = len(vocab)
			}
		}
	}
	return &Vectorizer{Vocabulary: vocab}
}

// Dimension 返回向量维度（词表大小）。
func (v *Vectorizer) Dimension() int {
	return len(v.Vocabulary)
}

// Encode 将文本编码为词频向量。词表外的词忽略。
func (v *Vectorizer) Encode(text string) []float64 {
	vec := make([]float64, len(v.Vocabulary))
	for _, word := range strings.Fields(text) {
		if idx, ok := v.Vocabulary[word]; ok {
			vec[idx]++
		}
	}
	return vec
}
