package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"tripsettle/pkg/models"
)

const (
	SheetName   = "Settlements"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{
	"ID", "Trip", "Date", "Client", "Product", "Origin", "Destination", "Carrier", "Driver",
	"Net origin (kg)", "Net destination (kg)", "Difference (kg)", "Tons", "Tons source",
	"Rate", "Rate basis", "Amount", "Third-party rate", "Third-party basis", "Third-party amount",
	"Tariff rule", "Tariff validity", "Client payment", "Carrier payment",
}

// Settlements builds a one-sheet workbook with one row per settlement.
// Unset numbers are written as empty cells.
func Settlements(list []*models.Settlement) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}

	for r, s := range list {
		row := []interface{}{
			s.ID,
			s.SourceTripID,
			s.Date.Format("2006-01-02"),
			idCell(s.ClientID),
			idCell(s.ProductID),
			idCell(s.OriginID),
			idCell(s.DestinationID),
			idCell(s.CarrierID),
			idCell(s.DriverID),
			decimalCell(s.Weights.NetOrigin),
			decimalCell(s.Weights.NetDestination),
			decimalCell(s.Weights.WeightDifference),
			decimalCell(s.Weights.Tons.Value),
			string(s.Weights.Tons.Source),
			decimalCell(s.TariffRate.Value),
			string(s.TariffRate.Basis),
			decimalCell(s.Amounts.TripAmount),
			decimalCell(s.ThirdPartyRate.Value),
			string(s.ThirdPartyRate.Basis),
			decimalCell(s.Amounts.ThirdPartyAmount),
			idCell(s.TariffRuleID),
			s.TariffValidity,
			string(s.ClientPaymentStatus),
			string(s.CarrierPaymentStatus),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	return f, nil
}

// WriteSettlements streams the workbook to w.
func WriteSettlements(w io.Writer, list []*models.Settlement) error {
	f, err := Settlements(list)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func idCell(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func decimalCell(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}
