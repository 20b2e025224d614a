package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/prodrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("product", cel.DynType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是候选规则的解释器，使用 CEL (Common Expression Language) 实现。
//
// 可用变量：
//   - item：候选（id / score / labels）
//   - label：扁平化的 label value，例如 label.recall_source == "content"
//   - product：目录中的商品属性（rating / review_count / price / brand / category / sentiment）
//
// 示例：
//   - `product.rating >= 3.0 && product.review_count > 25`
//   - `label.recall_source == "popularity" || item.score > 0.8`
//   - `product.brand != "acme"`
type Eval struct {
	item    *core.Item
	product *core.Product
	env     *cel.Env
}

// NewEval 创建一个规则解释器。product 可为 nil（候选不在目录中）。
func NewEval(item *core.Item, product *core.Product) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item:    item,
		product: product,
		env:     env,
	}
}

// Evaluate 编译并执行 CEL 表达式，返回布尔结果。
// 空表达式恒为 true。表达式结果不是布尔时报错。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		// 访问不存在的 key 会报错；存在性检查请用 label.key != null
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]any {
	labels := make(map[string]any)
	if e.item != nil {
		for k, v := range e.item.Labels {
			labels[k] = v.Value
		}
	}

	item := map[string]any{}
	if e.item != nil {
		item["id"] = e.item.ID
		item["score"] = e.item.Score
	}

	// 缺失的可选字段统一映射为 null，表达式可用 != null 检查存在性
	product := map[string]any{}
	if e.product != nil {
		product["id"] = e.product.ID
		product["title"] = e.product.Title
		product["brand"] = e.product.Brand
		product["rating"] = optFloat(e.product.Rating)
		product["review_count"] = optInt(e.product.ReviewCount)
		product["price"] = optFloat(e.product.Price)
		product["sentiment"] = optFloat(e.product.Sentiment)
		if len(e.product.Categories) > 0 {
			product["category"] = e.product.Categories[0]
		} else {
			product["category"] = nil
		}
	}

	return map[string]any{
		"item":    item,
		"label":   labels,
		"product": product,
	}
}

func optFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
