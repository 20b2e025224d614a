package model

import (
	"math"
	"math/rand"
	"sort"

	"github.com/rushteam/prodrec/core"
)

// TrainOptions 控制隐因子模型训练。
type TrainOptions struct {
	// SampleFraction 交互记录的采样比例 (0,1]。
	// 在线服务可用较小比例换速度，离线评估用 1.0 跑全量，两者都是合法用法；
	// 不同采样比例得到不同结果是预期行为。
	SampleFraction float64

	// Rank 隐因子维度 r，默认 10
	Rank int

	// Seed 随机种子；种子与采样比例固定时训练结果确定
	Seed int64

	// Iterations 子空间迭代轮数，默认 30
	Iterations int
}

func (o TrainOptions) withDefaults() TrainOptions {
	if o.SampleFraction <= 0 || o.SampleFraction > 1 {
		o.SampleFraction = 1.0
	}
	if o.Rank <= 0 {
		o.Rank = 10
	}
	if o.Iterations <= 0 {
		o.Iterations = 30
	}
	return o
}

// LatentModel 是 商品×用户 交互矩阵的低秩分解结果。
//
// 训练一次成型，之后不可变；底层交互数据变化时整体重训并替换。
// 不变式：采样后至少有一条交互记录的商品，必有对应的因子行。
type LatentModel struct {
	// Rank 实际因子维度（受商品数/用户数上限裁剪）
	Rank int

	productIDs     []string
	productRows    map[string]int
	productFactors [][]float64 // n×r，第 i 行 = 商品 i 的因子向量 (U·Σ)
	userIDs        []string
	userFactors    [][]float64 // m×r (V)
}

// TrainLatentModel 从交互记录训练隐因子模型。
//
// 流程：
//  1. 按采样比例确定性下采样（seeded）
//  2. 构建稀疏 商品×用户 矩阵，重复 (user, product) 取均值
//  3. 子空间迭代求截断 SVD，商品因子 = U·Σ
//
// 交互记录为空（或采样后为空）返回 INSUFFICIENT_DATA。
func TrainLatentModel(interactions []core.InteractionRecord, opts TrainOptions) (*LatentModel, error) {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewSource(opts.Seed))

	sampled := interactions
	if opts.SampleFraction < 1 {
		sampled = make([]core.InteractionRecord, 0, int(float64(len(interactions))*opts.SampleFraction)+1)
		for _, rec := range interactions {
			if rng.Float64() < opts.SampleFraction {
				sampled = append(sampled, rec)
			}
		}
	}
	if len(sampled) == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInsufficientData,
			"latent model: no interactions after sampling")
	}

	// 行/列编号按 ID 排序分配，保证与输入顺序无关的确定性
	productSet := make(map[string]struct{})
	userSet := make(map[string]struct{})
	for _, rec := range sampled {
		productSet[rec.ProductID] = struct{}{}
		userSet[rec.UserID] = struct{}{}
	}
	productIDs := sortedKeys(productSet)
	userIDs := sortedKeys(userSet)

	productRows := make(map[string]int, len(productIDs))
	for i, id := range productIDs {
		productRows[id] = i
	}
	userCols := make(map[string]int, len(userIDs))
	for i, id := range userIDs {
		userCols[id] = i
	}

	n := len(productIDs)
	m := len(userIDs)

	// 稀疏矩阵 A (n×m)：每行 map[userCol]positive_prob，重复取均值
	rows := make([]map[int]float64, n)
	counts := make([]map[int]int, n)
	for i := range rows {
		rows[i] = make(map[int]float64)
		counts[i] = make(map[int]int)
	}
	for _, rec := range sampled {
		i := productRows[rec.ProductID]
		j := userCols[rec.UserID]
		rows[i][j] += rec.PositiveProb
		counts[i][j]++
	}
	for i := range rows {
		for j, c := range counts[i] {
			if c > 1 {
				rows[i][j] /= float64(c)
			}
		}
	}

	r := opts.Rank
	if r > n {
		r = n
	}
	if r > m {
		r = m
	}

	// 子空间迭代求 AAᵀ 的前 r 个特征向量 Q (n×r)
	q := make([][]float64, n)
	for i := range q {
		q[i] = make([]float64, r)
		for j := range q[i] {
			q[i][j] = rng.NormFloat64()
		}
	}
	orthonormalize(q)

	for iter := 0; iter < opts.Iterations; iter++ {
		// T = Aᵀ Q (m×r)，按稀疏条目累加
		t := make([][]float64, m)
		for u := range t {
			t[u] = make([]float64, r)
		}
		for i := 0; i < n; i++ {
			for u, a := range rows[i] {
				for j := 0; j < r; j++ {
					t[u][j] += a * q[i][j]
				}
			}
		}
		// Y = A T (n×r)
		y := make([][]float64, n)
		for i := 0; i < n; i++ {
			y[i] = make([]float64, r)
			for u, a := range rows[i] {
				for j := 0; j < r; j++ {
					y[i][j] += a * t[u][j]
				}
			}
		}
		q = y
		orthonormalize(q)
	}

	// 奇异值 σ_j = ‖Aᵀ q_j‖；商品因子 = U·Σ，用户因子 = Aᵀ U Σ⁻¹
	at := make([][]float64, m)
	for u := range at {
		at[u] = make([]float64, r)
	}
	for i := 0; i < n; i++ {
		for u, a := range rows[i] {
			for j := 0; j < r; j++ {
				at[u][j] += a * q[i][j]
			}
		}
	}
	sigma := make([]float64, r)
	for j := 0; j < r; j++ {
		var sum float64
		for u := 0; u < m; u++ {
			sum += at[u][j] * at[u][j]
		}
		sigma[j] = math.Sqrt(sum)
	}

	productFactors := make([][]float64, n)
	for i := 0; i < n; i++ {
		productFactors[i] = make([]float64, r)
		for j := 0; j < r; j++ {
			productFactors[i][j] = q[i][j] * sigma[j]
		}
	}
	userFactors := make([][]float64, m)
	for u := 0; u < m; u++ {
		userFactors[u] = make([]float64, r)
		for j := 0; j < r; j++ {
			if sigma[j] > 0 {
				userFactors[u][j] = at[u][j] / sigma[j]
			}
		}
	}

	return &LatentModel{
		Rank:           r,
		productIDs:     productIDs,
		productRows:    productRows,
		productFactors: productFactors,
		userIDs:        userIDs,
		userFactors:    userFactors,
	}, nil
}

// ProductFactor 返回商品的因子向量；商品无交互记录（无因子行）返回 (nil, false)。
// 返回内部切片，调用方不得修改。
func (m *LatentModel) ProductFactor(productID string) ([]float64, bool) {
	i, ok := m.productRows[productID]
	if !ok {
		return nil, false
	}
	return m.productFactors[i], true
}

// Products 返回有因子行的商品 ID（行序）。返回内部切片，只读。
func (m *LatentModel) Products() []string {
	return m.productIDs
}

// NumProducts 返回商品因子行数。
func (m *LatentModel) NumProducts() int { return len(m.productIDs) }

// NumUsers 返回用户因子行数。
func (m *LatentModel) NumUsers() int { return len(m.userIDs) }

// UserFactor 返回用户的因子向量。
func (m *LatentModel) UserFactor(userID string) ([]float64, bool) {
	for i, id := range m.userIDs {
		if id == userID {
			return m.userFactors[i], true
		}
	}
	return nil, false
}

// orthonormalize 对列向量组做 Gram-Schmidt 正交归一（原地）。
// 数值退化的列置零，不参与后续投影。
func orthonormalize(q [][]float64) {
	if len(q) == 0 {
		return
	}
	n := len(q)
	r := len(q[0])
	for j := 0; j < r; j++ {
		for k := 0; k < j; k++ {
			var dot float64
			for i := 0; i < n; i++ {
				dot += q[i][j] * q[i][k]
			}
			for i := 0; i < n; i++ {
				q[i][j] -= dot * q[i][k]
			}
		}
		var norm float64
		for i := 0; i < n; i++ {
			norm += q[i][j] * q[i][j]
		}
		norm = math.Sqrt(norm)
		if norm < 1e-12 {
			for i := 0; i < n; i++ {
				q[i][j] = 0
			}
			continue
		}
		for i := 0; i < n; i++ {
			q[i][j] /= norm
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
