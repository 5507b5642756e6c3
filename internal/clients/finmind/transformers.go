package finmind

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/twquant/tw-screener/internal/domain"
)

const dateLayout = "2006-01-02"

// Statement line-item names as the provider labels them.
const (
	itemRevenue            = "Revenue"
	itemGrossProfit        = "GrossProfit"
	itemOperatingIncome    = "OperatingIncome"
	itemNetIncome          = "IncomeAfterTaxes"
	itemEPS                = "EPS"
	itemEquity             = "Equity"
	itemTotalAssets        = "TotalAssets"
	itemTotalLiabilities   = "Liabilities"
	itemOperatingCashFlow  = "CashFlowsFromOperatingActivities"
	itemCapitalExpenditure = "PropertyAndPlantAndEquipment"
)

// Institution names in the buy/sell dataset.
const (
	instForeign = "Foreign_Investor"
	instTrust   = "Investment_Trust"
	instDealer  = "Dealer"
)

// largeHolderLevel is the shareholding bucket used as the large-holder proxy
// (accounts holding more than 400 lots).
const largeHolderLevel = "400,001-600,000"

// DailyPrices fetches a symbol's daily bars since startDate, ascending.
func (c *Client) DailyPrices(symbol, startDate string) ([]domain.PriceBar, error) {
	var rows []priceRow
	if err := c.fetchDataset("TaiwanStockPrice", symbol, startDate, &rows); err != nil {
		return nil, err
	}

	bars := make([]domain.PriceBar, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("bad price date %q: %w", row.Date, err)
		}
		bars = append(bars, domain.PriceBar{
			Date:   date,
			Open:   row.Open,
			High:   row.Max,
			Low:    row.Min,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	sortByDate(bars, func(b domain.PriceBar) time.Time { return b.Date })
	return bars, nil
}

// Fundamentals fetches and pivots a symbol's quarterly statements since
// startDate, ascending. Line items the provider did not report stay NaN.
func (c *Client) Fundamentals(symbol, startDate string) ([]domain.FundamentalsQuarter, error) {
	var rows []statementRow
	if err := c.fetchDataset("TaiwanStockFinancialStatements", symbol, startDate, &rows); err != nil {
		return nil, err
	}

	// Pivot the long format into one record per quarter date.
	byDate := make(map[string]*domain.FundamentalsQuarter)
	for _, row := range rows {
		q, ok := byDate[row.Date]
		if !ok {
			date, err := time.Parse(dateLayout, row.Date)
			if err != nil {
				return nil, fmt.Errorf("bad statement date %q: %w", row.Date, err)
			}
			q = &domain.FundamentalsQuarter{
				Date:               date,
				Revenue:            math.NaN(),
				GrossProfit:        math.NaN(),
				OperatingIncome:    math.NaN(),
				NetIncome:          math.NaN(),
				EPS:                math.NaN(),
				Equity:             math.NaN(),
				TotalAssets:        math.NaN(),
				TotalLiabilities:   math.NaN(),
				OperatingCashFlow:  math.NaN(),
				CapitalExpenditure: math.NaN(),
			}
			byDate[row.Date] = q
		}

		switch row.Type {
		case itemRevenue:
			q.Revenue = row.Value
		case itemGrossProfit:
			q.GrossProfit = row.Value
		case itemOperatingIncome:
			q.OperatingIncome = row.Value
		case itemNetIncome:
			q.NetIncome = row.Value
		case itemEPS:
			q.EPS = row.Value
		case itemEquity:
			q.Equity = row.Value
		case itemTotalAssets:
			q.TotalAssets = row.Value
		case itemTotalLiabilities:
			q.TotalLiabilities = row.Value
		case itemOperatingCashFlow:
			q.OperatingCashFlow = row.Value
		case itemCapitalExpenditure:
			q.CapitalExpenditure = row.Value
		}
	}

	quarters := make([]domain.FundamentalsQuarter, 0, len(byDate))
	for _, q := range byDate {
		quarters = append(quarters, *q)
	}
	sortByDate(quarters, func(q domain.FundamentalsQuarter) time.Time { return q.Date })
	return quarters, nil
}

// InstitutionalFlows fetches and nets a symbol's institutional buy/sell rows
// since startDate into one flow record per trading day, ascending.
func (c *Client) InstitutionalFlows(symbol, startDate string) ([]domain.InstitutionalFlow, error) {
	var rows []institutionalRow
	if err := c.fetchDataset("TaiwanStockInstitutionalInvestorsBuySell", symbol, startDate, &rows); err != nil {
		return nil, err
	}

	byDate := make(map[string]*domain.InstitutionalFlow)
	for _, row := range rows {
		flow, ok := byDate[row.Date]
		if !ok {
			date, err := time.Parse(dateLayout, row.Date)
			if err != nil {
				return nil, fmt.Errorf("bad flow date %q: %w", row.Date, err)
			}
			flow = &domain.InstitutionalFlow{Date: date}
			byDate[row.Date] = flow
		}

		net := row.Buy - row.Sell
		switch row.Name {
		case instForeign:
			flow.ForeignNet += net
		case instTrust:
			flow.TrustNet += net
		case instDealer:
			flow.DealerNet += net
		}
	}

	flows := make([]domain.InstitutionalFlow, 0, len(byDate))
	for _, flow := range byDate {
		flow.TotalNet = flow.ForeignNet + flow.TrustNet + flow.DealerNet
		flows = append(flows, *flow)
	}
	sortByDate(flows, func(f domain.InstitutionalFlow) time.Time { return f.Date })
	return flows, nil
}

// ShareholdingRatios fetches a symbol's weekly large-holder ratios since
// startDate, ascending.
func (c *Client) ShareholdingRatios(symbol, startDate string) ([]domain.ShareholdingRatio, error) {
	var rows []shareholdingRow
	if err := c.fetchDataset("TaiwanStockHoldingSharesPer", symbol, startDate, &rows); err != nil {
		return nil, err
	}

	var ratios []domain.ShareholdingRatio
	for _, row := range rows {
		if row.Level != largeHolderLevel {
			continue
		}
		date, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("bad shareholding date %q: %w", row.Date, err)
		}
		ratios = append(ratios, domain.ShareholdingRatio{Date: date, MajorRatio: row.Percent})
	}

	sortByDate(ratios, func(r domain.ShareholdingRatio) time.Time { return r.Date })
	return ratios, nil
}

// sortByDate sorts records chronologically ascending.
func sortByDate[T any](items []T, date func(T) time.Time) {
	sort.Slice(items, func(i, j int) bool {
		return date(items[i]).Before(date(items[j]))
	})
}
