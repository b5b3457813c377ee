package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Zeek-James/pem-zee/internal/infra"
	"github.com/Zeek-James/pem-zee/internal/model"
	"github.com/Zeek-James/pem-zee/internal/valuation"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Report types accepted by the export endpoints.
const (
	ReportSummary = "summary"
	ReportAll     = "all"
	ReportHarvest = "harvest"
	ReportMilling = "milling"
	ReportStorage = "storage"
	ReportSales   = "sales"
)

// ReportService renders the ledger collections to files under a reports
// directory and returns the written path.
type ReportService interface {
	Excel(ctx context.Context, reportType string) (string, error)
	PDF(ctx context.Context, reportType string) (string, error)
}

type reportService struct {
	source SnapshotSource
	dir    string
	views
}

// SnapshotSource supplies a read of all ledger collections.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (valuation.Snapshot, error)
}

func NewReportService(source SnapshotSource, calc valuation.Calculator, dir string, clock func() time.Time) ReportService {
	if clock == nil {
		clock = time.Now
	}
	return &reportService{source: source, dir: dir, views: views{calc: calc, clock: clock}}
}

func (s *reportService) Excel(ctx context.Context, reportType string) (string, error) {
	return s.render(ctx, reportType, infra.RenderExcel)
}

func (s *reportService) PDF(ctx context.Context, reportType string) (string, error) {
	return s.render(ctx, reportType, infra.RenderPDF)
}

func (s *reportService) render(ctx context.Context, reportType string, fn func(infra.ReportDocument, string, string) (string, error)) (string, error) {
	if !validReportType(reportType) {
		return "", invalid("Unknown report type %q", reportType)
	}
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	doc := s.document(snap, reportType)
	path, err := fn(doc, s.dir, "palm_oil_report_"+reportType)
	if err != nil {
		return "", fmt.Errorf("render %s report: %w", reportType, err)
	}
	log.Info().Str("type", reportType).Str("path", path).Msg("report generated")
	return path, nil
}

func validReportType(t string) bool {
	switch t {
	case ReportSummary, ReportAll, ReportHarvest, ReportMilling, ReportStorage, ReportSales:
		return true
	}
	return false
}

// document lays out the sections for a report type. summary and all carry
// every table plus the KPI block.
func (s *reportService) document(snap valuation.Snapshot, reportType string) infra.ReportDocument {
	doc := infra.ReportDocument{
		Title:       "Palm Oil Business Report",
		GeneratedAt: s.clock(),
	}
	full := reportType == ReportSummary || reportType == ReportAll
	if full {
		doc.Summary = s.summaryLines(snap)
	}
	if full || reportType == ReportHarvest {
		doc.Tables = append(doc.Tables, s.harvestTable(snap.Harvests))
	}
	if full || reportType == ReportMilling {
		doc.Tables = append(doc.Tables, s.millingTable(snap))
	}
	if full || reportType == ReportStorage {
		doc.Tables = append(doc.Tables, s.storageTable(snap))
	}
	if full || reportType == ReportSales {
		doc.Tables = append(doc.Tables, s.salesTable(snap))
	}
	return doc
}

func (s *reportService) summaryLines(snap valuation.Snapshot) [][2]string {
	sum := s.calc.Summarize(snap)
	return [][2]string{
		{"Total FFB Harvested (kg)", sum.TotalFFBHarvested.StringFixed(2)},
		{"Total Oil Produced (kg)", sum.TotalOilProduced.StringFixed(2)},
		{"Total Milling Cost (NGN)", money(sum.TotalMillingCost)},
		{"Total Production Cost (NGN)", money(sum.TotalProductionCost)},
		{"Total Revenue (NGN)", money(sum.TotalRevenue)},
		{"Total Profit (NGN)", money(sum.TotalProfit)},
		{"CPO in Storage (kg)", sum.TotalStorage.StringFixed(2)},
		{"Pending Payments", strconv.Itoa(sum.PendingPaymentsCount)},
		{"Pending Amount (NGN)", money(sum.TotalPendingAmount)},
		{"Average Oil Yield (kg)", sum.AverageOilYield.StringFixed(2)},
	}
}

func (s *reportService) harvestTable(harvests []model.Harvest) infra.ReportTable {
	t := infra.ReportTable{
		Title:   "Harvest Records",
		Headers: []string{"ID", "Date", "Plantation", "Bunches", "Weight/Bunch (kg)", "Total Weight (kg)", "Ripeness", "Expected Yield (kg)", "FFB Cost (NGN)"},
		Widths:  []float64{0.5, 1, 1.4, 0.8, 1.1, 1.1, 0.9, 1.1, 1.1},
	}
	for _, h := range harvests {
		f := s.calc.Harvest(h)
		t.Rows = append(t.Rows, []string{
			strconv.FormatUint(uint64(h.ID), 10),
			formatDate(h.HarvestDate),
			h.Plantation,
			strconv.Itoa(h.NumBunches),
			h.WeightPerBunch.StringFixed(2),
			f.TotalWeight.StringFixed(2),
			h.Ripeness,
			f.ExpectedOilYield.StringFixed(2),
			money(f.FFBCost),
		})
	}
	return t
}

func (s *reportService) millingTable(snap valuation.Snapshot) infra.ReportTable {
	harvests := make(map[uint]*model.Harvest, len(snap.Harvests))
	for i := range snap.Harvests {
		harvests[snap.Harvests[i].ID] = &snap.Harvests[i]
	}
	t := infra.ReportTable{
		Title:   "Milling Records",
		Headers: []string{"ID", "Date", "Mill Location", "Harvest ID", "Milling Cost (NGN)", "Transport Cost (NGN)", "Oil Yield (kg)", "Cost/kg (NGN)", "Total Cost (NGN)"},
		Widths:  []float64{0.5, 1, 1.4, 0.8, 1.1, 1.1, 1, 1, 1.1},
	}
	for _, m := range snap.Millings {
		harvestRef := "N/A"
		var h *model.Harvest
		if m.HarvestID != nil {
			harvestRef = strconv.FormatUint(uint64(*m.HarvestID), 10)
			h = harvests[*m.HarvestID]
		}
		f := s.calc.Milling(m, s.calc.FFBCost(h))
		t.Rows = append(t.Rows, []string{
			strconv.FormatUint(uint64(m.ID), 10),
			formatDate(m.MillingDate),
			m.MillLocation,
			harvestRef,
			money(m.MillingCost),
			money(m.TransportCost),
			m.OilYield.StringFixed(2),
			money(f.CostPerKg),
			money(f.TotalCost),
		})
	}
	return t
}

func (s *reportService) storageTable(snap valuation.Snapshot) infra.ReportTable {
	sold := make(map[uint]decimal.Decimal, len(snap.Storages))
	for _, sale := range snap.Sales {
		sold[sale.StorageID] = sold[sale.StorageID].Add(sale.QuantitySold)
	}
	t := infra.ReportTable{
		Title:   "Storage Inventory",
		Headers: []string{"Container ID", "Quantity (kg)", "Remaining (kg)", "Storage Date", "Expiry Date", "Days Until Expiry", "Plantation Source", "Status"},
	}
	for _, st := range snap.Storages {
		view := s.storage(st, sold[st.ID])
		t.Rows = append(t.Rows, []string{
			st.ContainerID,
			st.Quantity.StringFixed(2),
			view.RemainingQuantity.StringFixed(2),
			view.StorageDate,
			view.ExpiryDate,
			strconv.Itoa(view.DaysUntilExpiry),
			st.PlantationSource,
			storageStatus(view.IsSold, view.IsExpired),
		})
	}
	return t
}

func (s *reportService) salesTable(snap valuation.Snapshot) infra.ReportTable {
	containers := make(map[uint]string, len(snap.Storages))
	for _, st := range snap.Storages {
		containers[st.ID] = st.ContainerID
	}
	t := infra.ReportTable{
		Title:   "Sales Records",
		Headers: []string{"ID", "Date", "Buyer", "Container ID", "Quantity (kg)", "Price/kg (NGN)", "Total Revenue (NGN)", "Payment Status", "Payment Date"},
		Widths:  []float64{0.5, 1, 1.5, 1, 1, 1, 1.2, 1, 1},
	}
	for _, sale := range snap.Sales {
		container, ok := containers[sale.StorageID]
		if !ok {
			container = "N/A"
		}
		paid := "N/A"
		if sale.PaymentDate != nil {
			paid = formatDate(*sale.PaymentDate)
		}
		t.Rows = append(t.Rows, []string{
			strconv.FormatUint(uint64(sale.ID), 10),
			formatDate(sale.SaleDate),
			sale.BuyerName,
			container,
			sale.QuantitySold.StringFixed(2),
			money(sale.PricePerKg),
			money(valuation.SaleRevenue(sale)),
			sale.PaymentStatus,
			paid,
		})
	}
	return t
}

func storageStatus(sold, expired bool) string {
	switch {
	case sold:
		return "Sold"
	case expired:
		return "Expired"
	}
	return "Available"
}

func money(d decimal.Decimal) string { return valuation.FormatAmount(d) }
