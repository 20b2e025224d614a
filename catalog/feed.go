package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rushteam/prodrec/core"
)

// 数据源为行式 JSON（每行一条记录），与上游数据准备层的导出格式一致。
// 单条记录缺字段只跳过并计数；整个数据源没有任何合法记录才算致命错误
// （INVALID_FEED），在构建期失败而非请求期。

// productRecord 是目录数据源的线格式。
// 可缺失字段用指针承接，避免把"缺失"误读为 0。
type productRecord struct {
	ASIN        string   `json:"asin"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Rating      *float64 `json:"average_rating"`
	ReviewCount *int     `json:"rating_number"`
	Price       *float64 `json:"price"`
	Store       string   `json:"store"`
	Categories  []string `json:"categories"`
	Sentiment   *float64 `json:"positive_prob"`
}

// interactionRecord 是交互数据源的线格式。
type interactionRecord struct {
	ReviewerID   string   `json:"reviewerID"`
	ASIN         string   `json:"asin"`
	PositiveProb *float64 `json:"positive_prob"`
}

// LoadProducts 从行式 JSON 读取目录数据并构建 Catalog。
// 没有任何合法记录时返回 INVALID_FEED。
func LoadProducts(r io.Reader) (*Catalog, error) {
	c := New()
	var skipped int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec productRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		if rec.ASIN == "" || rec.Title == "" {
			skipped++
			continue
		}
		c.Add(&core.Product{
			ID:          rec.ASIN,
			Title:       rec.Title,
			Description: rec.Description,
			Rating:      rec.Rating,
			ReviewCount: rec.ReviewCount,
			Price:       rec.Price,
			Brand:       rec.Store,
			Categories:  rec.Categories,
			Sentiment:   rec.Sentiment,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read catalog feed: %w", err)
	}

	if c.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidFeed,
			fmt.Sprintf("catalog feed has no valid records (%d skipped)", skipped))
	}
	if skipped > 0 {
		slog.Warn("catalog feed: skipped malformed records", "skipped", skipped, "loaded", c.Len())
	}
	return c, nil
}

// LoadProductsFile 从文件读取目录数据。
func LoadProductsFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog feed: %w", err)
	}
	defer f.Close()
	return LoadProducts(f)
}

// LoadInteractions 从行式 JSON 读取交互数据。
// positive_prob 缺失或越界 [0,1] 的记录跳过；没有任何合法记录时返回 INVALID_FEED。
func LoadInteractions(r io.Reader) ([]core.InteractionRecord, error) {
	var (
		out     []core.InteractionRecord
		skipped int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec interactionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		if rec.ReviewerID == "" || rec.ASIN == "" || rec.PositiveProb == nil {
			skipped++
			continue
		}
		p := *rec.PositiveProb
		if p < 0 || p > 1 {
			skipped++
			continue
		}
		out = append(out, core.InteractionRecord{
			UserID:       rec.ReviewerID,
			ProductID:    rec.ASIN,
			PositiveProb: p,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read interaction feed: %w", err)
	}

	if len(out) == 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidFeed,
			fmt.Sprintf("interaction feed has no valid records (%d skipped)", skipped))
	}
	if skipped > 0 {
		slog.Warn("interaction feed: skipped malformed records", "skipped", skipped, "loaded", len(out))
	}
	return out, nil
}

// LoadInteractionsFile 从文件读取交互数据。
func LoadInteractionsFile(path string) ([]core.InteractionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open interaction feed: %w", err)
	}
	defer f.Close()
	return LoadInteractions(f)
}
