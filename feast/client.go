// Package feast 对接 Feast Feature Store，把外部算好的商品情感特征
// 作为目录的情感数据源（catalog.SentimentProvider）。
package feast

import "context"

// Client 是 Feast 在线特征读取的领域接口。
// 核心只消费在线特征；物化/历史特征等治理操作不在本包范围。
type Client interface {
	// GetOnlineFeatures 获取在线特征
	//
	// 参数示例：
	//   - Features: ["product_sentiment:positive_prob"]
	//   - EntityRows: [{"asin": "B00XYZ"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求。
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表，例如 ["product_sentiment:positive_prob"]
	Features []string

	// EntityRows 实体行，例如 [{"asin": "B00XYZ"}]
	EntityRows []map[string]any

	// Project 项目名称（可选，覆盖客户端默认）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应。
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 单个实体的特征值。
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]any

	// EntityRow 对应的实体行
	EntityRow map[string]any
}
