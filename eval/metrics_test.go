package eval

import (
	"math"
	"testing"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/model"
)

func TestPrecisionAtK(t *testing.T) {
	tests := []struct {
		name        string
		recommended []string
		relevant    []string
		k           int
		want        float64
	}{
		{"三中二", []string{"X", "W", "Y"}, []string{"X", "Y", "Z"}, 3, 2.0 / 3.0},
		{"全命中", []string{"X", "Y"}, []string{"X", "Y", "Z"}, 2, 1.0},
		{"零命中", []string{"W", "V"}, []string{"X", "Y", "Z"}, 2, 0},
		{"推荐数少于 k", []string{"X"}, []string{"X", "Y"}, 5, 1.0 / 5.0},
		{"k 为 0", []string{"X"}, []string{"X"}, 0, 0},
		{"相关集为空", []string{"X"}, nil, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrecisionAtK(tt.recommended, tt.relevant, tt.k)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PrecisionAtK = %v, 期望 %v", got, tt.want)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name        string
		recommended []string
		relevant    []string
		k           int
		want        float64
	}{
		{"三中二", []string{"X", "W", "Y"}, []string{"X", "Y", "Z"}, 3, 2.0 / 3.0},
		{"全召回", []string{"X", "Y", "Z"}, []string{"X", "Y", "Z"}, 3, 1.0},
		{"相关集为空返回零", []string{"X"}, nil, 3, 0},
		{"相关集去重", []string{"X"}, []string{"X", "X"}, 3, 1.0},
		{"截断在 k", []string{"W", "V", "X"}, []string{"X"}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecallAtK(tt.recommended, tt.relevant, tt.k)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RecallAtK = %v, 期望 %v", got, tt.want)
			}
		})
	}
}

func TestMetricsBounds(t *testing.T) {
	recommended := []string{"A", "B", "C", "D"}
	relevant := []string{"B", "D", "E"}
	for k := 1; k <= 6; k++ {
		p := PrecisionAtK(recommended, relevant, k)
		r := RecallAtK(recommended, relevant, k)
		if p < 0 || p > 1 {
			t.Errorf("precision@%d 越界: %v", k, p)
		}
		if r < 0 || r > 1 {
			t.Errorf("recall@%d 越界: %v", k, r)
		}
	}
}

func TestDiversity(t *testing.T) {
	idx := model.BuildSimilarityIndex([]catalog.Document{
		{ProductID: "A", Text: "rose hydrating cream"},
		{ProductID: "B", Text: "rose hydrating cream"},
		{ProductID: "C", Text: "charcoal cleansing soap"},
	})

	// 相同描述的两个商品：相似度 1 → 多样性 0
	same := Diversity([]string{"A", "B"}, idx)
	if math.Abs(same) > 1e-9 {
		t.Errorf("同描述商品集的多样性期望 0，实际 %v", same)
	}

	// 无词重叠的两个商品：相似度 0 → 多样性 1
	diff := Diversity([]string{"A", "C"}, idx)
	if math.Abs(diff-1.0) > 1e-9 {
		t.Errorf("无重叠商品集的多样性期望 1，实际 %v", diff)
	}

	// 映射进索引的候选不足 2 个：定义零值
	tests := []struct {
		name        string
		recommended []string
	}{
		{"空集", nil},
		{"单个候选", []string{"A"}},
		{"全部未收录", []string{"x", "y", "z"}},
		{"只有一个收录", []string{"A", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Diversity(tt.recommended, idx); got != 0 {
				t.Errorf("Diversity = %v, 期望定义零值 0", got)
			}
		})
	}
}

func TestProxyRelevance(t *testing.T) {
	idx := model.BuildSimilarityIndex([]catalog.Document{
		{ProductID: "A", Text: "rose hydrating cream"},
		{ProductID: "B", Text: "rose hydrating cream"},
		{ProductID: "C", Text: "rose hydrating lotion"},
		{ProductID: "D", Text: "charcoal soap"},
	})

	got := ProxyRelevance(idx, "A", 2)
	want := []string{"B", "C"}
	if len(got) != len(want) {
		t.Fatalf("代理相关集期望 %v，实际 %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("代理相关集期望 %v，实际 %v", want, got)
		}
	}
	for _, id := range got {
		if id == "A" {
			t.Error("代理相关集不应包含参考商品自身")
		}
	}

	if got := ProxyRelevance(idx, "missing", 2); len(got) != 0 {
		t.Errorf("未收录参考商品的代理相关集期望空，实际 %v", got)
	}
}
