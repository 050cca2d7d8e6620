package task

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity"
	"github.com/tsinghua-fib-lab/agentsociety-household/entity/population"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(22)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))
)

func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func section(title string, rows [][2]string) string {
	lines := lo.Map(rows, func(r [2]string, _ int) string {
		return labelStyle.Render(r[0]) + r[1]
	})
	return sectionStyle.Render(titleStyle.Render(title) + "\n" + strings.Join(lines, "\n"))
}

// Report 最后一期的汇总表
// 功能：国家层面、分配与财政三个区块横向排列，诊断失败项列在下方
func Report(stats *population.Stats, macro entity.Macro, fiscal entity.Fiscal, diags []population.Diagnostic) string {
	country := section(fmt.Sprintf("t=%d", stats.Period), [][2]string{
		{"households", humanize.Comma(int64(stats.Households))},
		{"unemployment", pct(stats.UnemploymentRate)},
		{"CPI", fmt.Sprintf("%.4f", macro.CPI)},
		{"disposable income", money(stats.DisposableIncome)},
		{"consumption", money(stats.Expenses)},
		{"deposits", money(stats.Deposits)},
		{"loans", money(stats.Loans)},
		{"net wealth", money(stats.NetWealth)},
	})

	dist := [][2]string{
		{"income gini", fmt.Sprintf("%.3f", stats.Income.Gini)},
		{"wealth gini", fmt.Sprintf("%.3f", stats.Wealth.Gini)},
		{"wealth top 10%", pct(stats.Wealth.Top10Share)},
		{"income palma", fmt.Sprintf("%.3f", stats.Income.Palma)},
	}
	for _, c := range stats.Classes {
		dist = append(dist, [2]string{c.Type + " wealth share", pct(c.WealthShare)})
	}
	distribution := section("distribution", dist)

	fisc := section("fiscal", [][2]string{
		{"income tax", money(stats.IncomeTax)},
		{"wealth tax", money(stats.WealthTaxRevenue)},
		{"transfers", money(stats.Transfers)},
		{"benefits", money(stats.Benefits)},
		{"audit probability", pct(fiscal.AuditProbability)},
		{"capital flight", pct(stats.CapitalFlightRate)},
		{"tax gap", money(stats.TaxGap)},
	})

	res := lipgloss.JoinHorizontal(lipgloss.Top, country, distribution, fisc)
	failed := lo.Filter(diags, func(d population.Diagnostic, _ int) bool { return !d.OK })
	if len(failed) > 0 {
		lines := lo.Map(failed, func(d population.Diagnostic, _ int) string {
			return failStyle.Render(fmt.Sprintf("✗ %s: %.4g > %.4g", d.Name, d.Value, d.Tolerance))
		})
		res = lipgloss.JoinVertical(lipgloss.Left, res, strings.Join(lines, "\n"))
	}
	return res
}
