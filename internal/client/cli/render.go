package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/codecredits/internal/client/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	codeStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func formatCredits(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func renderModels(w io.Writer, ms []models.ModelPricing) {
	t := newTable("Model", "Credits/request", "Description")
	for _, m := range ms {
		t.Row(m.ModelName, formatCredits(m.CreditCostPerRequest), truncate(m.Description, 50))
	}
	fmt.Fprintln(w, t.String())
}

func renderHistory(w io.Writer, h []models.CodeGeneration, page int, total int64) {
	t := newTable("ID", "When", "Model", "Credits", "Prompt")
	for _, g := range h {
		t.Row(strconv.FormatInt(g.ID, 10), g.Timestamp, g.ModelName, formatCredits(g.CreditsUsed), truncate(g.Prompt, 40))
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "page %d, %d total\n", page, total)
}

func renderGeneration(w io.Writer, g *models.CodeGeneration) {
	fmt.Fprintln(w, codeStyle.Render(strings.TrimRight(g.GeneratedCode, "\n")))
}

func renderPayments(w io.Writer, txs []models.PaymentTransaction) {
	t := newTable("Transaction", "Created", "Credits", "Amount", "Status")
	for _, tx := range txs {
		t.Row(tx.TransactionID, tx.CreatedAt, strconv.FormatInt(tx.Credits, 10), strconv.FormatInt(tx.Amount, 10), string(tx.Status))
	}
	fmt.Fprintln(w, t.String())
}

func renderUsers(w io.Writer, users []models.User) {
	t := newTable("ID", "Username", "Email", "Active", "Admin", "Credits")
	for _, u := range users {
		t.Row(strconv.FormatInt(u.ID, 10), u.Username, u.Email,
			strconv.FormatBool(u.IsActive), strconv.FormatBool(u.IsAdmin), formatCredits(u.Credits))
	}
	fmt.Fprintln(w, t.String())
}

func renderStats(w io.Writer, st models.PaymentStatistics) {
	t := newTable("Metric", "Value")
	for _, k := range slices.Sorted(maps.Keys(st)) {
		t.Row(k, fmt.Sprint(st[k]))
	}
	fmt.Fprintln(w, t.String())
}
