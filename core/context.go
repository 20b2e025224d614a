package core

import "github.com/rushteam/prodrec/pkg/utils"

// RecommendContext 承载单次推荐请求的锚点与参数，贯穿整个 Pipeline 透传。
// 推荐以"参考商品"为锚点，不携带用户会话状态。
type RecommendContext struct {
	// ProductID 参考商品 ID（推荐锚点）。
	// 热度策略不依赖锚点，ProductID 可为空。
	ProductID string

	// Scene 场景标识（如 "detail_page"），用于观测与策略编排
	Scene string

	// Labels 请求级标签，可驱动 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数（如 limit、min_rating 的临时覆盖）
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
