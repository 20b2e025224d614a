package recall

import (
	"context"
	"testing"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/core"
	"github.com/rushteam/prodrec/store"
)

func popularityFixture() *catalog.Catalog {
	c := catalog.New()
	// 全部门槛通过，综合分 = rating × log(1+reviews)
	c.Add(&core.Product{ID: "P1", Rating: f(4.0), ReviewCount: n(100), Sentiment: f(0.9)})
	c.Add(&core.Product{ID: "P2", Rating: f(4.8), ReviewCount: n(300), Sentiment: f(0.95)})
	c.Add(&core.Product{ID: "P3", Rating: f(3.5), ReviewCount: n(50), Sentiment: f(0.7)})
	// 各缺一个门槛
	c.Add(&core.Product{ID: "P4", Rating: f(4.9), ReviewCount: n(10), Sentiment: f(0.9)})  // 评论数不足
	c.Add(&core.Product{ID: "P5", Rating: f(2.0), ReviewCount: n(200), Sentiment: f(0.9)}) // 评分不足
	c.Add(&core.Product{ID: "P6", Rating: f(4.5), ReviewCount: n(200), Sentiment: f(0.3)}) // 情感不足
	c.Add(&core.Product{ID: "P7", Rating: f(4.5), ReviewCount: n(200)})                    // 情感缺失按 0 处理
	return c
}

func popularityConfig() PopularityConfig {
	return PopularityConfig{MinReviewCount: 25, MinRating: 3, MinSentiment: 0.6, Limit: 10}
}

func TestPopularityRecall(t *testing.T) {
	r := &PopularityRecall{Catalog: popularityFixture(), Config: popularityConfig()}

	items, err := r.Recall(context.Background(), &core.RecommendContext{})
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}

	ids := core.ItemIDs(items)
	// P2: 4.8×log(301) ≈ 27.4 > P1: 4.0×log(101) ≈ 18.5 > P3: 3.5×log(51) ≈ 13.8
	want := []string{"P2", "P1", "P3"}
	if len(ids) != len(want) {
		t.Fatalf("入围数期望 %d，实际 %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("排序期望 %v，实际 %v", want, ids)
		}
	}

	// 分数降序
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[i-1].Score {
			t.Errorf("热度分应降序: %v", items)
		}
	}
}

func TestPopularityRecall_ExcludesReference(t *testing.T) {
	r := &PopularityRecall{Catalog: popularityFixture(), Config: popularityConfig()}

	items, err := r.Recall(context.Background(), &core.RecommendContext{ProductID: "P2"})
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}
	for _, it := range items {
		if it.ID == "P2" {
			t.Error("结果不应包含参考商品自身")
		}
	}
}

func TestPopularityRecall_NoQualified(t *testing.T) {
	c := catalog.New()
	c.Add(&core.Product{ID: "P1", Rating: f(2.0), ReviewCount: n(5), Sentiment: f(0.1)})

	r := &PopularityRecall{Catalog: c, Config: popularityConfig()}
	items, err := r.Recall(context.Background(), &core.RecommendContext{})
	if err != nil {
		t.Fatalf("无商品入围应返回空列表而非报错: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("期望空列表，实际 %v", core.ItemIDs(items))
	}
}

// 热度榜写入有序集合后，在线路径直接读缓存。
func TestPopularityRecall_StoreCache(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	defer memStore.Close()

	r := &PopularityRecall{Catalog: popularityFixture(), Config: popularityConfig()}
	if err := r.Publish(ctx, memStore, "popularity:test"); err != nil {
		t.Fatalf("发布热度榜失败: %v", err)
	}

	cached := &PopularityRecall{
		Catalog: popularityFixture(),
		Config:  popularityConfig(),
		Store:   memStore,
		Key:     "popularity:test",
	}
	items, err := cached.Recall(ctx, &core.RecommendContext{ProductID: "P1"})
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}

	ids := core.ItemIDs(items)
	// 缓存榜单同样排除参考商品 P1
	want := []string{"P2", "P3"}
	if len(ids) != len(want) {
		t.Fatalf("缓存路径期望 %v，实际 %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("缓存路径排序期望 %v，实际 %v", want, ids)
		}
	}
	for _, it := range items {
		if it.Labels["popularity_from"].Value != "store" {
			t.Errorf("缓存路径应带 popularity_from=store 标签，实际 %v", it.Labels)
		}
		if it.Score <= 0 {
			t.Errorf("缓存路径应回填 ZScore 分数，实际 %v", it.Score)
		}
	}
}
