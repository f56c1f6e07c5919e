package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"cambistas-backend/internal/cache"
	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/metrics"
	"cambistas-backend/internal/models"
	"cambistas-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RowSource supplies consistent views of the ledger. Version must change
// whenever a later View could differ.
type RowSource interface {
	Version() uint64
	View(f models.AgentFilter) (ledger.View, error)
}

// ReportLabels holds every piece of text an export prints
type ReportLabels struct {
	Columns  [6]string
	Statuses map[models.Status]string

	// Title and WeekName take the week number
	Title          string
	GeneratedOn    string
	SummaryTitle   string
	SummaryColumns [4]string
	WeekName       string
}

func (l ReportLabels) status(s models.Status) string {
	if label, ok := l.Statuses[s]; ok {
		return label
	}
	return string(s)
}

var (
	EnglishLabels = ReportLabels{
		Columns:        [6]string{"Name", "Sales", "Loans", "Received", "Balance", "Status"},
		Title:          "Cambistas Report - Week %d",
		GeneratedOn:    "Generated on: ",
		SummaryTitle:   "Month Summary",
		SummaryColumns: [4]string{"Week", "Received", "Pending", "Awaiting"},
		WeekName:       "Week %d",
	}
	PortugueseLabels = ReportLabels{
		Columns:        [6]string{"Nome", "Vendas", "Empréstimos", "Recebido", "Saldo", "Status"},
		Title:          "Relatório de Cambistas - Semana %d",
		GeneratedOn:    "Gerado em: ",
		SummaryTitle:   "Resumo do Mês",
		SummaryColumns: [4]string{"Semana", "Recebido", "Pendente", "Aguardando"},
		WeekName:       "Semana %d",
		Statuses: map[models.Status]string{
			models.StatusPaid:                 "Pago",
			models.StatusPending:              "Pendente",
			models.StatusAwaitingConfirmation: "Aguardando Confirmação",
			models.StatusNoDebt:               "Sem Débito",
		},
	}
)

// LabelsFor returns the labels for a configured report language
func LabelsFor(lang string) ReportLabels {
	if lang == "pt-BR" {
		return PortugueseLabels
	}
	return EnglishLabels
}

// Report is a rendered export ready to be served as a download
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
	Cached      bool
}

type ReportService struct {
	source   RowSource
	labels   ReportLabels
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewReportService(source RowSource, labels ReportLabels, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	return &ReportService{
		source:   source,
		labels:   labels,
		cacheTTL: cacheTTL,
		logger:   logger.Named("reports"),
	}
}

func normalizeFilter(f models.AgentFilter) models.AgentFilter {
	if f.GroupID == "" {
		f.GroupID = models.GroupAll
	}
	if f.Status == "" {
		f.Status = models.StatusFilterAll
	}
	return f
}

// Filename names an export after its week and the current year-month
func Filename(week models.Week, ext string, now time.Time) string {
	return fmt.Sprintf("Relatorio_Semana_%d_%s.%s", week, timeutil.YearMonth(now), ext)
}

// CSV renders the week's rows of the filtered agents as a delimited table
func (s *ReportService) CSV(ctx context.Context, f models.AgentFilter) (*Report, error) {
	return s.render(ctx, "csv", "text/csv; charset=utf-8", f, func(f models.AgentFilter, v ledger.View) ([]byte, error) {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, v.Rows, s.labels); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

// PDF renders the week's table followed by the month summary of the same agents
func (s *ReportService) PDF(ctx context.Context, f models.AgentFilter) (*Report, error) {
	return s.render(ctx, "pdf", "application/pdf", f, func(f models.AgentFilter, v ledger.View) ([]byte, error) {
		return RenderPDF(f.Week, v.Rows, v.Summary, timeutil.Now(), s.labels)
	})
}

// render serves an export from the cache or builds it. Keys carry the ledger
// version, and a build is stored under the version its view was read at, so
// an export built while a mutation commits can never answer for the newer
// state.
func (s *ReportService) render(ctx context.Context, format, contentType string, f models.AgentFilter, build func(models.AgentFilter, ledger.View) ([]byte, error)) (*Report, error) {
	f = normalizeFilter(f)
	if !f.Week.Valid() {
		return nil, ledger.ErrInvalidWeek
	}
	report := &Report{
		Filename:    Filename(f.Week, format, timeutil.Now()),
		ContentType: contentType,
	}

	key := cache.ReportKey(format, s.source.Version(), f.Week, f.GroupID, f.Status)
	if data, ok := cache.GetCached(ctx, key); ok {
		metrics.ReportCacheTotal.WithLabelValues("hit").Inc()
		report.Data = data
		report.Cached = true
		return report, nil
	}
	metrics.ReportCacheTotal.WithLabelValues("miss").Inc()

	view, err := s.source.View(f)
	if err != nil {
		return nil, err
	}
	data, err := build(f, view)
	if err != nil {
		return nil, err
	}
	if s.cacheTTL > 0 {
		key = cache.ReportKey(format, view.Version, f.Week, f.GroupID, f.Status)
		cache.SetCached(ctx, key, data, s.cacheTTL)
	}
	s.logger.Debug("report rendered",
		zap.String("format", format),
		zap.Int("week", int(f.Week)),
		zap.Uint64("version", view.Version),
		zap.Int("bytes", len(data)),
	)
	report.Data = data
	return report, nil
}

// WriteCSV writes a header row and one line per row with amounts fixed to
// two decimals
func WriteCSV(w io.Writer, rows []models.Row, labels ReportLabels) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(labels.Columns[:]); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Name,
			r.SalesValue.StringFixed(2),
			r.AmountDue.StringFixed(2),
			r.AmountReceived.StringFixed(2),
			r.Balance.StringFixed(2),
			labels.status(r.Status),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatBRL formats an amount the way pt-BR shows reais, e.g. R$ 1.200,00.
// Digits are taken from the decimal text, never from a float.
func FormatBRL(d decimal.Decimal) string {
	v := d.Round(2)
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}
	fixed := v.StringFixed(2)
	whole, cents := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	return sign + "R$ " + b.String() + "," + cents
}

var pdfColumnWidths = [6]float64{52, 24, 26, 26, 26, 28}

const (
	pdfMargin    = 14.0
	pdfRowHeight = 7.0
)

// RenderPDF lays out an A4 report: title, generation date, the striped week
// table (header repeated on every page) and the four-week summary.
func RenderPDF(week models.Week, rows []models.Row, summary models.MonthlySummary, generated time.Time, labels ReportLabels) ([]byte, error) {
	pdf := layoutPDF(week, rows, summary, generated, labels)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func layoutPDF(week models.Week, rows []models.Row, summary models.MonthlySummary, generated time.Time, labels ReportLabels) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(pdfMargin, 16, tr(fmt.Sprintf(labels.Title, week)))
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pdfMargin, 22, tr(labels.GeneratedOn+timeutil.FormatDate(generated)))

	_, pageHeight := pdf.GetPageSize()
	ensureSpace := func(h float64, onBreak func()) {
		if pdf.GetY()+h > pageHeight-pdfMargin {
			pdf.AddPage()
			if onBreak != nil {
				onBreak()
			}
		}
	}

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(38, 166, 154)
		pdf.SetTextColor(255, 255, 255)
		for i, col := range labels.Columns {
			pdf.CellFormat(pdfColumnWidths[i], pdfRowHeight, tr(col), "", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetXY(pdfMargin, 30)
	header()
	for i, r := range rows {
		ensureSpace(pdfRowHeight, header)
		if i%2 == 1 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		cells := []string{
			r.Name,
			FormatBRL(r.SalesValue),
			FormatBRL(r.AmountDue),
			FormatBRL(r.AmountReceived),
			FormatBRL(r.Balance),
			labels.status(r.Status),
		}
		for c, text := range cells {
			align := "R"
			if c == 0 || c == len(cells)-1 {
				align = "L"
			}
			pdf.CellFormat(pdfColumnWidths[c], pdfRowHeight, tr(text), "", 0, align, true, 0, "")
		}
		pdf.Ln(-1)
	}

	ensureSpace(14+pdfRowHeight*float64(len(summary.Weeks)+1), nil)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(labels.SummaryTitle), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(38, 166, 154)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range labels.SummaryColumns {
		pdf.CellFormat(45.5, pdfRowHeight, tr(col), "", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, ws := range summary.Weeks {
		pdf.CellFormat(45.5, pdfRowHeight, tr(fmt.Sprintf(labels.WeekName, ws.Week)), "B", 0, "L", false, 0, "")
		pdf.CellFormat(45.5, pdfRowHeight, tr(FormatBRL(ws.TotalReceived)), "B", 0, "L", false, 0, "")
		pdf.CellFormat(45.5, pdfRowHeight, tr(FormatBRL(ws.TotalPending)), "B", 0, "L", false, 0, "")
		pdf.CellFormat(45.5, pdfRowHeight, fmt.Sprintf("%d", ws.AwaitingConfirmation), "B", 1, "L", false, 0, "")
	}
	return pdf
}
