package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/kuota/internal/model"
	"github.com/charmbracelet/lipgloss"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func flushTable(tw *tabwriter.Writer) {
	if err := tw.Flush(); err != nil {
		slog.Error("failed to flush table writer", "error", err)
	}
}

func writeRow(tw io.Writer, cells ...string) error {
	_, err := fmt.Fprintln(tw, strings.Join(cells, "\t"))
	return err
}

func writeHeader(tw io.Writer, widths []int, names ...string) error {
	headers := make([]string, len(names))
	rules := make([]string, len(names))
	for i, n := range names {
		headers[i] = headerStyle.Render(n)
		rules[i] = strings.Repeat("─", widths[i])
	}
	if err := writeRow(tw, headers...); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writeRow(tw, rules...); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}
	return nil
}

// RenderPackageDetail prints the detail panel and the benefit table of a package.
func RenderPackageDetail(w io.Writer, detail *model.PackageDetail, optionCode string, now time.Time) error {
	if optionCode == "" {
		optionCode = detail.Option.Code
	}

	rows := [][2]string{
		{"Nama:", detail.Title()},
		{"Harga:", FormatPrice("Rp", detail.Option.Price)},
		{"Payment For:", detail.PaymentFor()},
		{"Masa Aktif Paket:", detail.Option.Validity},
		{"Point:", fmt.Sprintf("%d", detail.Option.Point)},
		{"Plan Type:", detail.Family.PlanType},
		{"Kode Paket:", highlightStyle.Render(optionCode)},
		{"Parent Code:", detail.Addon.ParentCode},
	}
	if ts := detail.QuotaActivated(); ts > 0 {
		rows = append(rows, [2]string{"Masa Aktif Kuota:", FormatTimestamp(ts, now.Location())})
	}
	if ts := detail.QuotaReset(); ts > 0 {
		rows = append(rows, [2]string{"Akhir Reset Kuota:",
			fmt.Sprintf("%s (sisa %d hari)", FormatTimestamp(ts, now.Location()), DaysUntil(ts, now))})
	}

	keyWidth := 0
	for _, r := range rows {
		keyWidth = max(keyWidth, lipgloss.Width(r[0]))
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = keyStyle.Width(keyWidth).Render(r[0]) + " " + valueStyle.Render(r[1])
	}
	if _, err := fmt.Fprintln(w, RenderBox("DETAIL PAKET", strings.Join(lines, "\n"))); err != nil {
		return fmt.Errorf("failed to write detail panel: %w", err)
	}

	if len(detail.Option.Benefits) == 0 {
		return nil
	}
	return renderBenefits(w, detail.Option.Benefits)
}

func renderBenefits(w io.Writer, benefits []model.Benefit) error {
	if _, err := fmt.Fprintln(w, formatTitle("BENEFITS")); err != nil {
		return fmt.Errorf("failed to write benefits title: %w", err)
	}

	tw := newTable(w)
	defer flushTable(tw)

	if err := writeHeader(tw, []int{20, 14, 8, DefaultBarWidth + 5}, "Benefit Name", "Total/Quota", "Type", "Progress"); err != nil {
		return err
	}

	for _, b := range benefits {
		total := FormatQuota(b.DataType, b.Total, b.Remaining)
		bar := UsageBar(b.Used(), b.Total, DefaultBarWidth)
		if b.IsUnlimited {
			total = "Unlimited"
			bar = UsageBar(0, 1, DefaultBarWidth)
		}
		name := b.Name
		if name == "" {
			name = "N/A"
		}
		if err := writeRow(tw, name, total, b.DataType, bar); err != nil {
			return fmt.Errorf("failed to write benefit row: %w", err)
		}
	}
	return nil
}

// RenderFamily prints the numbered options of a family listing.
func RenderFamily(w io.Writer, family *model.Family) error {
	title := family.Family.Name
	if title == "" {
		title = family.Family.Code
	}
	if _, err := fmt.Fprintln(w, formatTitle(title)); err != nil {
		return fmt.Errorf("failed to write family title: %w", err)
	}

	entries := family.Entries()
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, infoStyle.Render("No packages in this family."))
		return err
	}

	tw := newTable(w)
	defer flushTable(tw)

	if err := writeHeader(tw, []int{4, 20, 20, 12, 24}, "No", "Variant", "Option", "Price", "Code"); err != nil {
		return err
	}

	currency := family.PriceCurrency()
	for _, e := range entries {
		if err := writeRow(tw,
			fmt.Sprintf("%d", e.Number),
			e.VariantName,
			e.OptionName,
			FormatPrice(currency, e.Price),
			e.Code); err != nil {
			return fmt.Errorf("failed to write family row: %w", err)
		}
	}
	return nil
}

// QuotaSummary condenses an active quota's first benefit into one cell.
func QuotaSummary(benefits []model.Benefit) string {
	if len(benefits) == 0 {
		return "No benefits"
	}
	b := benefits[0]
	var summary string
	switch {
	case b.IsUnlimited:
		summary = "Unlimited " + b.DataType
	case b.DataType == "DATA":
		summary = FormatBytes(b.Remaining) + " / " + FormatBytes(b.Total)
	case b.DataType == "VOICE":
		summary = fmt.Sprintf("%.1fm / %.1fm", float64(b.Remaining)/60, float64(b.Total)/60)
	default:
		summary = fmt.Sprintf("%d / %d %s", b.Remaining, b.Total, b.DataType)
	}
	if len(benefits) > 1 {
		summary += fmt.Sprintf(" (+%d more)", len(benefits)-1)
	}
	return summary
}

// RenderQuotas prints the packages active on the line, numbered from 1.
func RenderQuotas(w io.Writer, quotas []model.Quota) error {
	if len(quotas) == 0 {
		_, err := fmt.Fprintln(w, infoStyle.Render("No active packages."))
		return err
	}

	tw := newTable(w)
	defer flushTable(tw)

	if err := writeHeader(tw, []int{4, 28, 30}, "No", "Package Name", "Summary"); err != nil {
		return err
	}
	for i, q := range quotas {
		if err := writeRow(tw, fmt.Sprintf("%d", i+1), q.Name, QuotaSummary(q.Benefits)); err != nil {
			return fmt.Errorf("failed to write quota row: %w", err)
		}
	}
	return nil
}

// RenderStoreFamilies prints the store's family search results.
func RenderStoreFamilies(w io.Writer, families []model.StoreFamily) error {
	if len(families) == 0 {
		_, err := fmt.Fprintln(w, warningStyle.Render("No family list found."))
		return err
	}

	tw := newTable(w)
	defer flushTable(tw)

	if err := writeHeader(tw, []int{4, 28, 36}, "No", "Family Name", "Family Code"); err != nil {
		return err
	}
	for i, f := range families {
		label := f.Label
		if label == "" {
			label = "N/A"
		}
		if err := writeRow(tw, fmt.Sprintf("%d", i+1), label, subtleStyle.Render(f.ID)); err != nil {
			return fmt.Errorf("failed to write family row: %w", err)
		}
	}
	return nil
}

// RenderStorePackages prints the store's package search results.
func RenderStorePackages(w io.Writer, packages []model.StorePackage) error {
	if len(packages) == 0 {
		_, err := fmt.Fprintln(w, warningStyle.Render("No store packages found."))
		return err
	}

	tw := newTable(w)
	defer flushTable(tw)

	if err := writeHeader(tw, []int{4, 28, 20, 10, 12}, "No", "Package", "Family", "Price", "Validity"); err != nil {
		return err
	}
	for i, p := range packages {
		if err := writeRow(tw,
			fmt.Sprintf("%d", i+1),
			p.Title,
			subtleStyle.Render(p.FamilyName),
			highlightStyle.Render(fmt.Sprintf("Rp%d", p.Price())),
			p.Validity); err != nil {
			return fmt.Errorf("failed to write store row: %w", err)
		}
	}
	return nil
}

// RenderBookmarks prints saved bookmarks numbered from 1.
func RenderBookmarks(w io.Writer, bookmarks []model.Bookmark) error {
	if len(bookmarks) == 0 {
		_, err := fmt.Fprintln(w, infoStyle.Render("No bookmarks yet. Use 'kuota bookmarks add' to save one."))
		return err
	}

	tw := newTable(w)
	defer flushTable(tw)

	if err := writeHeader(tw, []int{4, 20, 16, 16, 12, 5}, "No", "Family", "Variant", "Option", "Code", "Order"); err != nil {
		return err
	}

	for i, b := range bookmarks {
		family := b.FamilyName
		if b.IsEnterprise {
			family += " " + starIcon
		}
		if err := writeRow(tw,
			fmt.Sprintf("%d", i+1),
			family,
			b.VariantName,
			b.OptionName,
			b.FamilyCode,
			fmt.Sprintf("%d", b.Order)); err != nil {
			return fmt.Errorf("failed to write bookmark row: %w", err)
		}
	}
	return nil
}

// RenderHistory prints persisted purchase attempts.
func RenderHistory(w io.Writer, records []model.PurchaseRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, infoStyle.Render("No purchases recorded yet."))
		return err
	}

	tw := newTable(w)
	defer flushTable(tw)

	if err := writeHeader(tw, []int{19, 8, 3, 16, 12, 8, 10, 30},
		"When", "Batch", "#", "Option", "Method", "Status", "Total", "Message"); err != nil {
		return err
	}

	for _, r := range records {
		batch := r.BatchID
		if len(batch) > 8 {
			batch = batch[:8]
		}
		total := fmt.Sprintf("%d", r.TotalAmount)
		if r.Retried {
			total += "*"
		}
		if err := writeRow(tw,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			batch,
			fmt.Sprintf("%d", r.Attempt),
			r.OptionCode,
			r.Method,
			statusStyle(r.Status).Render(string(r.Status)),
			total,
			r.Message); err != nil {
			return fmt.Errorf("failed to write history row: %w", err)
		}
	}
	return nil
}

// RenderResult prints the outcome of a single settlement.
func RenderResult(w io.Writer, attempt int, result model.SettlementResult) error {
	prefix := ""
	if attempt > 0 {
		prefix = fmt.Sprintf("[%d] ", attempt)
	}

	var line string
	switch {
	case result.Succeeded() && result.Retried:
		line = FormatSuccess(fmt.Sprintf("%sPurchase succeeded after amount correction to %d", prefix, result.CorrectedAmount))
	case result.Succeeded():
		line = FormatSuccess(prefix + "Purchase succeeded")
	default:
		line = FormatError(fmt.Sprintf("%sPurchase failed: %s", prefix, result.Message))
	}
	if result.TransactionID != "" {
		line += subtleStyle.Render(" (" + result.TransactionID + ")")
	}
	if result.DeepLink != "" {
		line += "\n" + RenderBox("Buka di aplikasi e-wallet", highlightStyle.Render(result.DeepLink))
	}

	_, err := fmt.Fprintln(w, line)
	return err
}

// RenderBatchSummary prints the totals of a finished batch.
func RenderBatchSummary(w io.Writer, run *model.BatchRun) error {
	failed := len(run.Results) - run.Succeeded()
	content := fmt.Sprintf("  %s Batch: %s\n", chartIcon, run.ID) +
		fmt.Sprintf("  • Attempts: %d of %d\n", len(run.Results), run.Count) +
		fmt.Sprintf("  • Succeeded: %s\n", successStyle.Render(fmt.Sprintf("%d", run.Succeeded()))) +
		fmt.Sprintf("  • Failed: %s\n", errorStyle.Render(fmt.Sprintf("%d", failed))) +
		fmt.Sprintf("  • Delay: %s", run.Delay)
	if run.UseDecoy {
		content += "\n  • Decoy: on"
	}

	_, err := fmt.Fprintln(w, RenderBox("Pembelian Selesai", content))
	return err
}

func statusStyle(s model.SettlementStatus) lipgloss.Style {
	switch s {
	case model.StatusSuccess:
		return successStyle
	case model.StatusFailed:
		return errorStyle
	default:
		return warningStyle
	}
}
