package pipeline

import (
	"context"
	"testing"

	"github.com/rushteam/prodrec/core"
)

type noopNode struct {
	name string
}

func (n *noopNode) Name() string { return n.name }
func (n *noopNode) Kind() Kind   { return KindRecall }
func (n *noopNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return items, nil
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
pipeline:
  name: test_pipeline
  nodes:
    - type: recall.content
      config:
        min_rating: 2
        limit: 5
    - type: rerank.topn
      config:
        n: 3
`)
	cfg, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if cfg.Pipeline.Name != "test_pipeline" {
		t.Errorf("名称期望 test_pipeline，实际 %q", cfg.Pipeline.Name)
	}
	if len(cfg.Pipeline.Nodes) != 2 {
		t.Fatalf("期望 2 个节点，实际 %d", len(cfg.Pipeline.Nodes))
	}
	if cfg.Pipeline.Nodes[0].Type != "recall.content" {
		t.Errorf("节点类型期望 recall.content，实际 %q", cfg.Pipeline.Nodes[0].Type)
	}
	if cfg.Pipeline.Nodes[1].Config["n"] != 3 {
		t.Errorf("节点配置期望 n=3，实际 %v", cfg.Pipeline.Nodes[1].Config)
	}
}

func TestParseYAML_Invalid(t *testing.T) {
	if _, err := ParseYAML([]byte("pipeline: [not a mapping")); err == nil {
		t.Fatal("非法 YAML 应报错")
	}
}

func TestBuildPipeline(t *testing.T) {
	factory := NewNodeFactory()
	factory.Register("noop", func(cfg map[string]any) (Node, error) {
		return &noopNode{name: "noop"}, nil
	})

	cfg, err := ParseYAML([]byte(`
pipeline:
  name: p
  nodes:
    - type: noop
    - type: noop
`))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	if len(p.Nodes) != 2 {
		t.Errorf("期望 2 个节点，实际 %d", len(p.Nodes))
	}
}

func TestBuildPipeline_UnknownNodeType(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
pipeline:
  nodes:
    - type: does.not.exist
`))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if _, err := cfg.BuildPipeline(NewNodeFactory()); err == nil {
		t.Fatal("未注册的节点类型应报错")
	}
}

func TestPipeline_Run(t *testing.T) {
	appendNode := func(id string) Node {
		return nodeFunc(func(items []*core.Item) []*core.Item {
			return append(items, core.NewItem(id))
		})
	}
	p := &Pipeline{Nodes: []Node{appendNode("A"), appendNode("B")}}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}
	ids := core.ItemIDs(out)
	if len(ids) != 2 || ids[0] != "A" || ids[1] != "B" {
		t.Errorf("节点应按序执行并传递输出，实际 %v", ids)
	}
}

type nodeFunc func(items []*core.Item) []*core.Item

func (nodeFunc) Name() string { return "func" }
func (nodeFunc) Kind() Kind   { return KindRecall }
func (fn nodeFunc) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return fn(items), nil
}
