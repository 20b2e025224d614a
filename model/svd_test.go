package model

import (
	"math"
	"testing"

	"github.com/rushteam/prodrec/core"
)

func testInteractions() []core.InteractionRecord {
	return []core.InteractionRecord{
		{UserID: "u1", ProductID: "P1", PositiveProb: 0.9},
		{UserID: "u1", ProductID: "P2", PositiveProb: 0.8},
		{UserID: "u2", ProductID: "P1", PositiveProb: 0.85},
		{UserID: "u2", ProductID: "P2", PositiveProb: 0.75},
		{UserID: "u2", ProductID: "P3", PositiveProb: 0.2},
		{UserID: "u3", ProductID: "P3", PositiveProb: 0.3},
		{UserID: "u3", ProductID: "P4", PositiveProb: 0.25},
		{UserID: "u4", ProductID: "P3", PositiveProb: 0.35},
		{UserID: "u4", ProductID: "P4", PositiveProb: 0.3},
	}
}

func TestTrainLatentModel(t *testing.T) {
	m, err := TrainLatentModel(testInteractions(), TrainOptions{
		SampleFraction: 1.0,
		Rank:           2,
		Seed:           42,
	})
	if err != nil {
		t.Fatalf("训练失败: %v", err)
	}

	if m.NumProducts() != 4 {
		t.Errorf("商品因子行数期望 4，实际 %d", m.NumProducts())
	}
	if m.NumUsers() != 4 {
		t.Errorf("用户因子行数期望 4，实际 %d", m.NumUsers())
	}
	if m.Rank != 2 {
		t.Errorf("因子维度期望 2，实际 %d", m.Rank)
	}

	// 不变式：有交互记录的商品必有因子行
	for _, id := range []string{"P1", "P2", "P3", "P4"} {
		f, ok := m.ProductFactor(id)
		if !ok {
			t.Errorf("商品 %s 缺少因子行", id)
			continue
		}
		if len(f) != m.Rank {
			t.Errorf("商品 %s 因子维度期望 %d，实际 %d", id, m.Rank, len(f))
		}
	}

	// 无交互记录的商品没有因子行
	if _, ok := m.ProductFactor("missing"); ok {
		t.Error("无交互记录的商品不应有因子行")
	}
	if _, ok := m.UserFactor("missing"); ok {
		t.Error("无交互记录的用户不应有因子向量")
	}
}

// 同种子同采样比例，两次训练结果逐元素一致。
func TestTrainLatentModel_Deterministic(t *testing.T) {
	opts := TrainOptions{SampleFraction: 0.8, Rank: 2, Seed: 7}
	a, err := TrainLatentModel(testInteractions(), opts)
	if err != nil {
		t.Fatalf("训练失败: %v", err)
	}
	b, err := TrainLatentModel(testInteractions(), opts)
	if err != nil {
		t.Fatalf("训练失败: %v", err)
	}

	if a.NumProducts() != b.NumProducts() {
		t.Fatalf("两次训练商品数不一致: %d vs %d", a.NumProducts(), b.NumProducts())
	}
	for _, id := range a.Products() {
		fa, _ := a.ProductFactor(id)
		fb, ok := b.ProductFactor(id)
		if !ok {
			t.Fatalf("第二次训练缺少商品 %s", id)
		}
		for j := range fa {
			if fa[j] != fb[j] {
				t.Fatalf("商品 %s 因子第 %d 维不一致: %v vs %v", id, j, fa[j], fb[j])
			}
		}
	}
}

// 相似交互模式的商品，因子向量相关性应高于无关商品。
func TestTrainLatentModel_FactorStructure(t *testing.T) {
	m, err := TrainLatentModel(testInteractions(), TrainOptions{
		SampleFraction: 1.0,
		Rank:           2,
		Seed:           42,
	})
	if err != nil {
		t.Fatalf("训练失败: %v", err)
	}

	cosine := func(a, b []float64) float64 {
		var dot, na, nb float64
		for i := range a {
			dot += a[i] * b[i]
			na += a[i] * a[i]
			nb += b[i] * b[i]
		}
		if na == 0 || nb == 0 {
			return 0
		}
		return dot / math.Sqrt(na*nb)
	}

	p1, _ := m.ProductFactor("P1")
	p2, _ := m.ProductFactor("P2")
	p4, _ := m.ProductFactor("P4")

	// P1/P2 被同一批用户高分交互，P4 属于另一簇
	if cosine(p1, p2) <= cosine(p1, p4) {
		t.Errorf("同簇商品的因子相似度应高于跨簇: cos(P1,P2)=%v cos(P1,P4)=%v",
			cosine(p1, p2), cosine(p1, p4))
	}
}

func TestTrainLatentModel_EmptyInteractions(t *testing.T) {
	_, err := TrainLatentModel(nil, TrainOptions{SampleFraction: 1.0})
	if err == nil {
		t.Fatal("空交互记录应报错")
	}
	if !core.IsInsufficientData(err) {
		t.Errorf("期望 INSUFFICIENT_DATA，实际 %v", err)
	}
}

// Rank 超过商品/用户数时自动裁剪。
func TestTrainLatentModel_RankClamp(t *testing.T) {
	m, err := TrainLatentModel([]core.InteractionRecord{
		{UserID: "u1", ProductID: "P1", PositiveProb: 0.9},
		{UserID: "u2", ProductID: "P2", PositiveProb: 0.8},
	}, TrainOptions{SampleFraction: 1.0, Rank: 10, Seed: 1})
	if err != nil {
		t.Fatalf("训练失败: %v", err)
	}
	if m.Rank != 2 {
		t.Errorf("因子维度应裁剪到 2，实际 %d", m.Rank)
	}
}
