// Package prodrec 是一个商品推荐集成（ensemble）工具包。
//
// 设计要点：
//   - 工件不可变：目录、相似度索引、隐因子模型一次构建、只读服务，重建时整体替换
//   - 策略即 Source：内容相似 / 热度 / 协同隐因子，统一的召回接口，可单独用也可编排
//   - 兜底链 hybrid：按优先级顺序合并，够数短路，空结果是合法输出而非错误
//   - 离线评估内建：代理相关集 + precision/recall/diversity，单点失败不拖垮整批
package prodrec

import "github.com/rushteam/prodrec/pipeline"

// 轻量 facade：便于用户直接 import "prodrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)
