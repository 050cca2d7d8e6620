// 家庭贷款分账：记录每笔贷款的本金、利率与每期摊还额
package loan

import (
	"github.com/samber/lo"
)

const (
	// MinPrincipal 小于该值的贷款视为已还清
	MinPrincipal = 0.01
)

// Record 单笔贷款
type Record struct {
	Principal    float64 `json:"principal"`    // 剩余本金
	Rate         float64 `json:"rate"`         // 发放时的利率
	Amortization float64 `json:"amortization"` // 每期固定摊还额
}

// Payment 一期的偿付结果
type Payment struct {
	Interest     float64 // 利息
	Amortization float64 // 本金摊还
}

// Obligations 当期财务负担：利息+摊还
func (p Payment) Obligations() float64 {
	return p.Interest + p.Amortization
}

// Book 单个家庭的贷款账本
// 说明：账本中始终至少保留一条记录，无贷款时为本金为0的占位记录
type Book struct {
	records []Record
}

// NewBook 创建只含占位记录的账本
func NewBook() *Book {
	return &Book{records: []Record{{}}}
}

// FromRecords 由已有记录恢复账本
func FromRecords(records []Record) *Book {
	if len(records) == 0 {
		return NewBook()
	}
	b := &Book{records: make([]Record, len(records))}
	copy(b.records, records)
	return b
}

// Records 账本记录的副本
func (b *Book) Records() []Record {
	res := make([]Record, len(b.records))
	copy(res, b.records)
	return res
}

// Len 记录条数（含占位记录）
func (b *Book) Len() int {
	return len(b.records)
}

// Outstanding 未偿本金总额
func (b *Book) Outstanding() float64 {
	return lo.SumBy(b.records, func(r Record) float64 {
		return lo.Ternary(r.Principal > 0, r.Principal, 0)
	})
}

// Originate 发放新贷款
// 参数：amount-本金，rate-利率，periods-摊还期数
// 返回：是否实际发放（本金不超过MinPrincipal或期数不足1时不发放）
func (b *Book) Originate(amount, rate float64, periods int32) bool {
	if amount <= MinPrincipal || periods < 1 {
		return false
	}
	b.records = append(b.records, Record{
		Principal:    amount,
		Rate:         rate,
		Amortization: amount / float64(periods),
	})
	return true
}

// Service 偿付一期
// 功能：计算当期利息与摊还，并更新各笔贷款的剩余本金
// 参数：rate-当期浮动利率，floating-是否按浮动利率计息（否则按发放时利率）
// 返回：当期利息与摊还
// 算法说明：
// 1. 对本金为正的记录累计利息（基于摊还前本金）与摊还额，摊还额不超过剩余本金
// 2. 计算每条记录摊还后的本金，不低于0
// 3. 保留剩余本金大于MinPrincipal的记录；全部还清时保留一条0本金占位记录
func (b *Book) Service(rate float64, floating bool) Payment {
	var p Payment
	next := make([]float64, len(b.records))
	for i, r := range b.records {
		if r.Principal <= 0 {
			continue
		}
		p.Interest += r.Principal * lo.Ternary(floating, rate, r.Rate)
		amort := min(r.Amortization, r.Principal)
		p.Amortization += amort
		next[i] = r.Principal - amort
	}
	kept := b.records[:0]
	for i, r := range b.records {
		if next[i] > MinPrincipal {
			r.Principal = next[i]
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, Record{})
	}
	b.records = kept
	return p
}
