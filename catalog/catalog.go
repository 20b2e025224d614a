// Package catalog 维护内存态的商品目录。
//
// 目录由外部数据准备层以批量方式灌入（无增量更新契约），
// 灌入完成后对所有策略只读，可被多 goroutine 并发查询。
package catalog

import (
	"github.com/rushteam/prodrec/core"
)

// Catalog 是以商品 ID 为键的内存目录，为所有策略供数。
// 载入完成后不再变更；查询路径无锁。
type Catalog struct {
	products map[string]*core.Product
	order    []string // 载入顺序，保证遍历确定性
}

func New() *Catalog {
	return &Catalog{
		products: make(map[string]*core.Product),
	}
}

// Add 写入一条商品记录。同 ID 重复写入时保留首条（目录为只读快照，不做覆盖合并）。
func (c *Catalog) Add(p *core.Product) {
	if p == nil || p.ID == "" {
		return
	}
	if _, ok := c.products[p.ID]; ok {
		return
	}
	c.products[p.ID] = p
	c.order = append(c.order, p.ID)
}

// Get 按 ID 查询商品；不存在返回 (nil, false)。
func (c *Catalog) Get(id string) (*core.Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// All 按载入顺序返回全部商品。
func (c *Catalog) All() []*core.Product {
	out := make([]*core.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}

// Len 返回商品数。
func (c *Catalog) Len() int {
	return len(c.order)
}

// Document 是相似度索引的输入单元：商品 ID + 已归一化描述文本。
type Document struct {
	ProductID string
	Text      string
}

// Documents 按载入顺序返回所有"有非空描述"的商品文档，
// 作为内容相似度索引的构建输入。
func (c *Catalog) Documents() []Document {
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		p := c.products[id]
		if !p.HasDescription() {
			continue
		}
		out = append(out, Document{ProductID: p.ID, Text: p.Description})
	}
	return out
}
