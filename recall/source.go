// Package recall 实现四种召回策略：内容相似、热度、协同隐因子，
// 以及把三者按优先级串联的兜底链（hybrid）。
//
// 所有策略都是对不可变工件（目录/相似度索引/隐因子模型）的无状态读取，
// 可跨多个参考商品并发调用。
package recall

import (
	"context"

	"github.com/rushteam/prodrec/core"
)

// Source 表示一个可复用的召回策略单元。
// 约定：参考商品不在索引/模型中时返回空列表而非错误（NOT_FOUND 软失败）；
// 输出不包含参考商品本身。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
