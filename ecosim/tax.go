package ecosim

import (
	"math"
)

// TaxBase 所得税税基
// 功能：按税制开关选择计入税基的收入项
// 参数：structure-税制开关，wage-工资，profit-利润，depositReturn-当期存款收益
// 算法说明：
// 0. 不征税
// 1. 工资
// 2. 利润
// 3. 工资+利润
// 4. 工资+利润+当期存款收益
// 5及以上（财富税制度）：工资+利润
func TaxBase(structure int32, wage, profit, depositReturn float64) float64 {
	switch structure {
	case 0:
		return 0
	case 1:
		return wage
	case 2:
		return profit
	case 3:
		return wage + profit
	case 4:
		return wage + profit + depositReturn
	default:
		return wage + profit
	}
}

// IncomeTax 单一税率所得税，结果不小于0
func IncomeTax(structure int32, rate, wage, profit, depositReturn float64) float64 {
	if rate <= 0 {
		return 0
	}
	return math.Max(0, TaxBase(structure, wage, profit, depositReturn)*rate)
}
