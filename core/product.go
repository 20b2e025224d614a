package core

// Product 是商品目录中的一条记录。
// 由外部数据准备层（清洗/归一化）产出，核心链路只读，永不修改。
// 可缺失的数值字段用指针表达，nil 即"缺失"，与 0 值区分。
type Product struct {
	// ID 唯一商品标识（如 ASIN），不可变
	ID string

	// Title 商品标题
	Title string

	// Description 已归一化的描述文本（大小写/标点/词干处理均在外部完成），可为空
	Description string

	// Rating 平均评分，范围 [0,5]，缺失为 nil
	Rating *float64

	// ReviewCount 评论数（非负），缺失为 nil
	ReviewCount *int

	// Price 价格（非负），缺失为 nil
	Price *float64

	// Brand 品牌/店铺，可为空
	Brand string

	// Categories 类目路径（有序）
	Categories []string

	// Sentiment 聚合情感分 [0,1]：positive_prob 的加权均值。
	// 可由外部特征源直接提供，也可由交互记录聚合得到；缺失为 nil。
	Sentiment *float64
}

// HasDescription 判断商品是否有非空描述（相似度索引只收录此类商品）。
func (p *Product) HasDescription() bool {
	return p != nil && p.Description != ""
}

// InteractionRecord 是一条 用户×商品 的隐式正反馈记录。
// PositiveProb 表示从评论情感推导出的正向强度，范围 [0,1]。
// 同一 (user, product) 允许出现多条，不假设唯一。
type InteractionRecord struct {
	UserID       string
	ProductID    string
	PositiveProb float64
}
