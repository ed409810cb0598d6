package portfolio

import (
	"context"

	"github.com/rfglabs/modeldesk/internal/models"
)

// supportedSymbols is the ticker set shown on the dashboard header.
var supportedSymbols = []struct {
	Symbol string
	Name   string
}{
	{"BTCUSDT", "Bitcoin"},
	{"ETHUSDT", "Ethereum"},
	{"BNBUSDT", "BNB"},
	{"SOLUSDT", "Solana"},
	{"DOGEUSDT", "Dogecoin"},
	{"XRPUSDT", "XRP"},
}

// FetchPrices retrieves current ticker prices for the supported symbol
// set. Failures are partitioned rather than propagated; the board is
// successful when at least one symbol resolved.
func (s *Service) FetchPrices(ctx context.Context) models.PriceBoard {
	board := models.PriceBoard{
		Prices: []models.TickerPrice{},
		Failed: []models.TickerPrice{},
	}

	for _, sym := range supportedSymbols {
		price, err := s.exchange.GetTickerPrice(ctx, sym.Symbol)
		if err != nil {
			s.logger.Warn().Str("symbol", sym.Symbol).Err(err).Msg("Ticker price fetch failed")
			board.Failed = append(board.Failed, models.TickerPrice{
				Symbol: sym.Symbol,
				Name:   sym.Name,
			})
			continue
		}
		price.Name = sym.Name
		board.Prices = append(board.Prices, *price)
	}

	board.SuccessfulCount = len(board.Prices)
	board.FailedCount = len(board.Failed)
	board.Success = board.SuccessfulCount > 0
	return board
}
