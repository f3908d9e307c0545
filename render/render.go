// Package render draws the ledger for terminals.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/billbatista/acasinha-splitter/ledger"
	"github.com/billbatista/acasinha-splitter/money"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorBorder = lipgloss.Color("#282726")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorOrange = lipgloss.Color("#DA702C")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	amountStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorOrange)
)

// Table is a bordered text table.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Text renders views to a writer. It implements ledger.Renderer.
type Text struct {
	w io.Writer
}

func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

func (t *Text) Render(v ledger.View) {
	fmt.Fprint(t.w, View(v))
}

// View renders the whole ledger: remaining amount, transactions and the
// final split.
func View(v ledger.View) string {
	var b strings.Builder
	b.WriteString(renderTitle("Bill Splitter"))
	b.WriteString("\n\n")

	if v.Phase == ledger.PhaseUnset {
		b.WriteString("  ")
		b.WriteString(warnStyle.Render("No bill set yet."))
		b.WriteString("\n")
		b.WriteString(renderPeople(v.State.People))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %s %s   %s %s\n",
		mutedStyle.Render("Bill"), amountStyle.Render(money.Format(v.State.BillAmount)),
		mutedStyle.Render("Remaining"), amountStyle.Render(money.Format(v.State.RemainingAmount)),
	))
	b.WriteString(renderPeople(v.State.People))
	b.WriteString("\n")

	txRows := make([][]string, 0, len(v.State.Transactions))
	for i, tx := range v.State.Transactions {
		txRows = append(txRows, []string{strconv.Itoa(i), money.Format(tx.Amount), strings.Join(tx.People, ", ")})
	}
	b.WriteString(RenderTable(Table{
		Title:   "Transactions",
		Headers: []string{"#", "Amount", "Paid for"},
		Rows:    txRows,
	}))
	b.WriteString("\n")

	splitRows := make([][]string, 0, len(v.Split))
	for _, s := range v.Split {
		splitRows = append(splitRows, []string{s.Name, money.Format(s.Amount)})
	}
	b.WriteString(RenderTable(Table{
		Title:   "Final split",
		Headers: []string{"Person", "Owes"},
		Rows:    splitRows,
	}))

	b.WriteString(mutedStyle.Render(fmt.Sprintf("  created %s", v.State.CreatedAt.Local().Format("2006-01-02 15:04"))))
	b.WriteString("\n")
	return b.String()
}

func renderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(40).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

func renderPeople(people []string) string {
	if len(people) == 0 {
		return "  " + mutedStyle.Render("Nobody is splitting this bill.") + "\n"
	}
	return fmt.Sprintf("  %s %s\n", mutedStyle.Render("People"), strings.Join(people, ", "))
}

// RenderTable renders a table with headers and rows. Column widths fit the
// widest cell.
func RenderTable(t Table) string {
	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		b.WriteString("  ")
		b.WriteString(mutedStyle.Render("(none)"))
		b.WriteString("\n")
		return b.String()
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	writeRow := func(cells []string, style func(string) string) {
		b.WriteString("  ")
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := w - lipgloss.Width(cell)
			b.WriteString(style(cell))
			b.WriteString(strings.Repeat(" ", pad+2))
		}
		b.WriteString("\n")
	}

	writeRow(t.Headers, func(s string) string { return headerStyle.Render(s) })
	for _, row := range t.Rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}
