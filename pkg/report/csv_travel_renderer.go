package report

import (
	"bytes"
	"encoding/csv"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CsvTravelRendererImpl struct {
}

func NewCsvTravelRenderer() *CsvTravelRendererImpl {
	return &CsvTravelRendererImpl{}
}

func (t *CsvTravelRendererImpl) RenderTravels(summaries []TravelSummary) (string, error) {
	header := []string{"Name", "Destination", "Start", "End", "Catering", "Overnight", "Expenses", "Advance", "Total"}

	data := make([][]string, 0, len(summaries)+2)
	data = append(data, header)

	totalCatering := decimal.Zero
	totalOvernight := decimal.Zero
	totalExpenses := decimal.Zero
	totalAdvance := decimal.Zero
	total := decimal.Zero
	for _, summary := range summaries {
		data = append(data, []string{
			summary.Travel.Name,
			summary.Travel.DestinationPlace,
			summary.Travel.StartDate.Format("02/01/2006"),
			summary.Travel.EndDate.Format("02/01/2006"),
			summary.CateringRefund.StringFixed(2),
			summary.OvernightRefund.StringFixed(2),
			summary.Expenses.StringFixed(2),
			summary.Advance.StringFixed(2),
			summary.Total.StringFixed(2),
		})
		totalCatering = totalCatering.Add(summary.CateringRefund)
		totalOvernight = totalOvernight.Add(summary.OvernightRefund)
		totalExpenses = totalExpenses.Add(summary.Expenses)
		totalAdvance = totalAdvance.Add(summary.Advance)
		total = total.Add(summary.Total)
	}
	data = append(data, []string{
		"SUM", "", "", "",
		totalCatering.StringFixed(2),
		totalOvernight.StringFixed(2),
		totalExpenses.StringFixed(2),
		totalAdvance.StringFixed(2),
		total.StringFixed(2),
	})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
