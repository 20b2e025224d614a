package eval

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/prodrec/model"
)

// Strategy 是被评估的召回策略：名字 + 推荐函数。
// 推荐函数返回有序的商品 ID 列表（不含参考商品）。
type Strategy struct {
	Name      string
	Recommend func(ctx context.Context, referenceID string) ([]string, error)
}

// Evaluator 对每个采样的参考商品依次评估所有策略。
//
// 并发模型：参考商品之间相互独立（embarrassingly parallel），用有并发上限的
// errgroup 并行；指标聚合是 求和+计数 的可交换累积，与执行顺序无关。
// 外部 context 到期时停止调度新样本，已完成的部分照常出报告，不丢弃。
type Evaluator struct {
	Index      *model.SimilarityIndex
	Strategies []Strategy

	// SampleSize 采样的参考商品数，默认 100
	SampleSize int

	// K 指标的截断位置 precision@K / recall@K，默认 5；
	// 同时是代理相关集的大小
	K int

	// Seed 采样种子，固定后样本确定
	Seed int64

	// MaxConcurrent 最大并发数，默认 4
	MaxConcurrent int
}

// Row 是报告中单个策略的聚合结果行。
type Row struct {
	Method        string
	MeanPrecision float64
	MeanRecall    float64
	MeanDiversity float64

	// Samples 参与聚合的样本数（含失败置零的样本）
	Samples int
}

// Report 是一次评估的汇总报告，每个策略一行。
type Report struct {
	Rows       []Row
	K          int
	SampleSize int
}

// String 渲染表格形式的报告。
func (r *Report) String() string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "method\tmean_precision\tmean_recall\tmean_diversity\tsamples\n")
	for _, row := range r.Rows {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%d\n",
			row.Method, row.MeanPrecision, row.MeanRecall, row.MeanDiversity, row.Samples)
	}
	w.Flush()
	return buf.String()
}

type accumulator struct {
	precision float64
	recall    float64
	diversity float64
	n         int
}

// Run 执行批量评估。
// 报告总是包含每个策略一行；某策略在某个样本上失败时，该样本计为全零行
// 而不是被丢弃，单个失败永不中止整批。
func (e *Evaluator) Run(ctx context.Context) (*Report, error) {
	if e.Index == nil || e.Index.Len() == 0 {
		return nil, fmt.Errorf("evaluator: similarity index is empty")
	}
	if len(e.Strategies) == 0 {
		return nil, fmt.Errorf("evaluator: no strategies")
	}

	sampleSize := e.SampleSize
	if sampleSize <= 0 {
		sampleSize = 100
	}
	k := e.K
	if k <= 0 {
		k = 5
	}
	maxConcurrent := e.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	// 确定性采样参考商品
	n := e.Index.Len()
	if sampleSize > n {
		sampleSize = n
	}
	rng := rand.New(rand.NewSource(e.Seed))
	perm := rng.Perm(n)
	references := make([]string, sampleSize)
	for i := 0; i < sampleSize; i++ {
		references[i] = e.Index.IDAt(perm[i])
	}

	var (
		mu  sync.Mutex
		agg = make(map[string]*accumulator, len(e.Strategies))
	)
	for _, s := range e.Strategies {
		agg[s.Name] = &accumulator{}
	}

	eg, runCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrent)

	for _, ref := range references {
		// 截止时间到：停止调度新样本，保留已完成的部分结果
		if runCtx.Err() != nil {
			break
		}
		reference := ref
		eg.Go(func() error {
			relevant := ProxyRelevance(e.Index, reference, k)
			if len(relevant) == 0 {
				return nil
			}
			for _, s := range e.Strategies {
				precision, recall, diversity := e.evaluateOne(runCtx, s, reference, relevant, k)
				mu.Lock()
				acc := agg[s.Name]
				acc.precision += precision
				acc.recall += recall
				acc.diversity += diversity
				acc.n++
				mu.Unlock()
			}
			return nil
		})
	}
	// 策略失败在 evaluateOne 内吞掉，这里的 err 只可能来自 context
	_ = eg.Wait()

	report := &Report{K: k, SampleSize: sampleSize}
	for _, s := range e.Strategies {
		acc := agg[s.Name]
		row := Row{Method: s.Name, Samples: acc.n}
		if acc.n > 0 {
			row.MeanPrecision = acc.precision / float64(acc.n)
			row.MeanRecall = acc.recall / float64(acc.n)
			row.MeanDiversity = acc.diversity / float64(acc.n)
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// evaluateOne 评估单个 (策略, 参考商品)。
// 策略报错或 panic 都折算为全零结果，且记录日志保持可观测。
func (e *Evaluator) evaluateOne(
	ctx context.Context,
	s Strategy,
	referenceID string,
	relevant []string,
	k int,
) (precision, recall, diversity float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("eval: strategy panicked, counted as zero row",
				"method", s.Name, "reference", referenceID, "panic", r)
			precision, recall, diversity = 0, 0, 0
		}
	}()

	recs, err := s.Recommend(ctx, referenceID)
	if err != nil {
		slog.Warn("eval: strategy failed, counted as zero row",
			"method", s.Name, "reference", referenceID, "err", err)
		return 0, 0, 0
	}
	if len(recs) == 0 {
		return 0, 0, 0
	}

	precision = PrecisionAtK(recs, relevant, k)
	recall = RecallAtK(recs, relevant, k)
	diversity = Diversity(recs, e.Index)
	return precision, recall, diversity
}
