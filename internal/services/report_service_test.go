package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"cambistas-backend/internal/cache"
	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteCSV(t *testing.T) {
	rows := []models.Row{
		{Name: "Ana, a Vendedora", SalesValue: dec("1200"), AmountDue: dec("500"), AmountReceived: dec("500.5"), Balance: dec("1199.5"), Status: models.StatusPending},
		{Name: "Bruno", SalesValue: dec("0"), AmountDue: dec("0"), AmountReceived: dec("600"), Balance: dec("-600"), Status: models.StatusAwaitingConfirmation},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows, EnglishLabels))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "Sales", "Loans", "Received", "Balance", "Status"},
		{"Ana, a Vendedora", "1200.00", "500.00", "500.50", "1199.50", "Pending"},
		{"Bruno", "0.00", "0.00", "600.00", "-600.00", "Awaiting Confirmation"},
	}, records)
}

func TestWriteCSVPortugueseLabels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.Row{{Name: "Ana", Status: models.StatusNoDebt}}, LabelsFor("pt-BR")))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Empréstimos", records[0][2])
	assert.Equal(t, "Sem Débito", records[1][5])
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"1200", "R$ 1.200,00"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"-100", "-R$ 100,00"},
		{"999.995", "R$ 1.000,00"},
		{"-1234.5", "-R$ 1.234,50"},
		{"90071992547409.93", "R$ 90.071.992.547.409,93"},
		{"123456789012345678901.01", "R$ 123.456.789.012.345.678.901,01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBRL(dec(tt.in)))
		})
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC) // still February in Fortaleza
	assert.Equal(t, "Relatorio_Semana_2_2026-02.csv", Filename(2, "csv", at))
}

func TestRenderPDF(t *testing.T) {
	rows := make([]models.Row, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, models.Row{Name: "João", SalesValue: dec("10"), Balance: dec("10"), Status: models.StatusPending})
	}
	summary := models.MonthlySummary{Weeks: []models.WeekSummary{{Week: 1}, {Week: 2}, {Week: 3}, {Week: 4}}}

	data, err := RenderPDF(1, rows, summary, time.Now(), PortugueseLabels)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.GreaterOrEqual(t, bytes.Count(data, []byte("/Type /Page\n")), 2, "long tables continue on a new page")
}

func TestRenderPDFPrintsOnlyConfiguredLanguage(t *testing.T) {
	rows := []models.Row{{Name: "Ana", Balance: dec("10"), Status: models.StatusPending}}
	summary := models.MonthlySummary{Weeks: []models.WeekSummary{{Week: 1}, {Week: 2}}}
	generated := time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)

	text := func(labels ReportLabels) string {
		pdf := layoutPDF(3, rows, summary, generated, labels)
		pdf.SetCompression(false)
		var buf bytes.Buffer
		require.NoError(t, pdf.Output(&buf))
		return buf.String()
	}

	en := text(EnglishLabels)
	for _, want := range []string{"Cambistas Report - Week 3", "Generated on: 28/02/2026", "Month Summary", "Week 2", "Awaiting"} {
		assert.Contains(t, en, want)
	}
	for _, unwanted := range []string{"Semana", "Gerado em", "Recebido", "Pendente"} {
		assert.NotContains(t, en, unwanted)
	}

	pt := text(PortugueseLabels)
	for _, want := range []string{"Semana 3", "Gerado em: 28/02/2026", "Semana 2", "Pendente"} {
		assert.Contains(t, pt, want)
	}
}

func TestReportServiceRendersFromLedger(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{SeedDemo: true})
	svc := NewReportService(f.svc, EnglishLabels, 0, zap.NewNop())
	ctx := context.Background()

	report, err := svc.CSV(ctx, models.AgentFilter{Week: 1})
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", report.ContentType)
	assert.Regexp(t, `^Relatorio_Semana_1_\d{4}-\d{2}\.csv$`, report.Filename)
	assert.False(t, report.Cached)

	records, err := csv.NewReader(bytes.NewReader(report.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Carlos Pereira", "500.00", "0.00", "0.00", "500.00", "Pending"}, records[1])
	assert.Equal(t, []string{"João da Silva", "1200.00", "500.00", "500.00", "1200.00", "Paid"}, records[2])

	pdf, err := svc.PDF(ctx, models.AgentFilter{Week: 2, Status: models.StatusFilterPending})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Data, []byte("%PDF-")))

	_, err = svc.CSV(ctx, models.AgentFilter{Week: 9})
	assert.Error(t, err)
}

// commitDuringView lands a ledger change right after a view is read, as a
// concurrent request would while an export is being rendered
type commitDuringView struct {
	*ledger.Ledger
	commit func()
}

func (c *commitDuringView) View(f models.AgentFilter) (ledger.View, error) {
	v, err := c.Ledger.View(f)
	if commit := c.commit; commit != nil {
		c.commit = nil
		commit()
	}
	return v, err
}

func useMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	require.NoError(t, cache.Init(context.Background(), mr.Addr(), "", 0))
	t.Cleanup(func() { _ = cache.Close() })
}

func TestReportCacheDropsExportsBuiltDuringAChange(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	l := ledger.New()
	a := l.AddAgent("A", nil)
	_, err := l.RecordTransaction(a.ID, 1, models.TransactionTypeLoan, dec("100"))
	require.NoError(t, err)

	source := &commitDuringView{Ledger: l}
	source.commit = func() {
		_, err := l.RecordTransaction(a.ID, 1, models.TransactionTypeLoan, dec("899"))
		require.NoError(t, err)
		require.NoError(t, cache.InvalidateReportCaches(ctx))
	}
	svc := NewReportService(source, EnglishLabels, time.Minute, zap.NewNop())
	f := models.AgentFilter{Week: 1}

	first, err := svc.CSV(ctx, f)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Contains(t, string(first.Data), "A,0.00,100.00,0.00,100.00,Pending")

	second, err := svc.CSV(ctx, f)
	require.NoError(t, err)
	assert.False(t, second.Cached, "an export of the older state must not be served")
	assert.Contains(t, string(second.Data), "A,0.00,999.00,0.00,999.00,Pending")

	third, err := svc.CSV(ctx, f)
	require.NoError(t, err)
	assert.True(t, third.Cached)
	assert.Equal(t, second.Data, third.Data)
}

func TestReportCacheFollowsLedgerMutations(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()
	f := newLedgerFixture(t, LedgerServiceOptions{SeedDemo: true})
	svc := NewReportService(f.svc, PortugueseLabels, time.Minute, zap.NewNop())
	filter := models.AgentFilter{Week: 1}

	first, err := svc.PDF(ctx, filter)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	again, err := svc.PDF(ctx, filter)
	require.NoError(t, err)
	assert.True(t, again.Cached)

	rows, err := f.svc.Rows(filter)
	require.NoError(t, err)
	_, err = f.svc.RecordTransaction(ctx, rows[0].AgentID, 1, models.TransactionTypeReceipt, dec("1"))
	require.NoError(t, err)

	after, err := svc.PDF(ctx, filter)
	require.NoError(t, err)
	assert.False(t, after.Cached)
}
