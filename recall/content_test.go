package recall

import (
	"context"
	"testing"

	"github.com/rushteam/prodrec/catalog"
	"github.com/rushteam/prodrec/core"
	"github.com/rushteam/prodrec/model"
)

func f(v float64) *float64 { return &v }
func n(v int) *int         { return &v }

func contentFixture() (*catalog.Catalog, *model.SimilarityIndex) {
	c := catalog.New()
	c.Add(&core.Product{ID: "A", Description: "rose hydrating cream", Rating: f(4.5)})
	c.Add(&core.Product{ID: "B", Description: "rose hydrating cream", Rating: f(4.0)})
	c.Add(&core.Product{ID: "C", Description: "rose hydrating lotion", Rating: f(3.5)})
	c.Add(&core.Product{ID: "D", Description: "charcoal cleansing soap", Rating: f(4.8)})
	c.Add(&core.Product{ID: "E", Description: "rose hydrating serum", Rating: f(1.0)})
	return c, model.BuildSimilarityIndex(c.Documents())
}

func TestContentRecall(t *testing.T) {
	c, idx := contentFixture()
	r := &ContentRecall{
		Index:   idx,
		Catalog: c,
		Config:  ContentConfig{MinRating: 2, Limit: 3},
	}

	items, err := r.Recall(context.Background(), &core.RecommendContext{ProductID: "A"})
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}

	ids := core.ItemIDs(items)
	// B 描述与 A 完全相同排第一；C 部分重叠第二；
	// E 虽与 A 相似但评分 1.0 低于门槛被过滤；D 无重叠但未被截断前就排最后
	if len(ids) == 0 || ids[0] != "B" {
		t.Fatalf("首位期望 B，实际 %v", ids)
	}
	for _, id := range ids {
		if id == "A" {
			t.Error("结果不应包含参考商品自身")
		}
		if id == "E" {
			t.Error("低于评分门槛的商品不应入围")
		}
	}
	if len(ids) < 2 || ids[1] != "C" {
		t.Errorf("第二位期望 C，实际 %v", ids)
	}
}

func TestContentRecall_UnknownReference(t *testing.T) {
	c, idx := contentFixture()
	r := &ContentRecall{Index: idx, Catalog: c, Config: ContentConfig{Limit: 5}}

	items, err := r.Recall(context.Background(), &core.RecommendContext{ProductID: "missing"})
	if err != nil {
		t.Fatalf("未收录的参考商品应软失败而非报错: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("未收录的参考商品期望空列表，实际 %v", core.ItemIDs(items))
	}
}

func TestContentRecall_MissingRatingFiltered(t *testing.T) {
	c := catalog.New()
	c.Add(&core.Product{ID: "A", Description: "rose cream", Rating: f(4.0)})
	c.Add(&core.Product{ID: "B", Description: "rose cream"}) // 评分缺失
	idx := model.BuildSimilarityIndex(c.Documents())

	r := &ContentRecall{Index: idx, Catalog: c, Config: ContentConfig{MinRating: 0, Limit: 5}}
	items, err := r.Recall(context.Background(), &core.RecommendContext{ProductID: "A"})
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("评分缺失的商品应被过滤，实际 %v", core.ItemIDs(items))
	}
}

func TestContentRecall_LimitTruncation(t *testing.T) {
	c, idx := contentFixture()
	r := &ContentRecall{Index: idx, Catalog: c, Config: ContentConfig{MinRating: 2, Limit: 1}}

	items, err := r.Recall(context.Background(), &core.RecommendContext{ProductID: "A"})
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Limit=1 期望 1 条，实际 %d", len(items))
	}
	if items[0].Labels["recall_source"].Value != "content" {
		t.Errorf("召回来源标签期望 content，实际 %v", items[0].Labels["recall_source"])
	}
}
