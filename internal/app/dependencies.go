package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reisegeld/reisegeld/internal/config"
	"github.com/reisegeld/reisegeld/internal/utils"
	"github.com/reisegeld/reisegeld/pkg/documentfile"
	"github.com/reisegeld/reisegeld/pkg/exchangerate"
	"github.com/reisegeld/reisegeld/pkg/expensereport"
	"github.com/reisegeld/reisegeld/pkg/lumpsum"
	"github.com/reisegeld/reisegeld/pkg/report"
	"github.com/reisegeld/reisegeld/pkg/travel"
	"github.com/reisegeld/reisegeld/pkg/user"
	"github.com/shopspring/decimal"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	UserService user.Service
	UserHandler *user.Handler

	ExchangeRateRepo    exchangerate.Repo
	ExchangeRateSource  exchangerate.RateSource
	CurrencyConverter   *exchangerate.Converter
	ExchangeRateHandler *exchangerate.Handler

	TravelRepo    travel.Repo
	TravelService travel.Service
	TravelHandler *travel.Handler

	ExpenseReportRepo    expensereport.Repo
	ExpenseReportService expensereport.Service
	ExpenseReportHandler *expensereport.Handler

	DocumentFileRepo    documentfile.Repo
	DocumentFileService *documentfile.Service
	DocumentFileHandler *documentfile.Handler

	CsvTravelRenderer *report.CsvTravelRendererImpl
	ReportService     *report.Service
	ReportHandler     *report.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.ExchangeRateRepo = exchangerate.NewRepo(db)
	deps.ExchangeRateSource = exchangerate.NewInforEuroClient(cfg.InforEuro.BaseURL)
	deps.CurrencyConverter = exchangerate.NewConverter(deps.ExchangeRateRepo, deps.ExchangeRateSource, deps.Clock, cfg.BaseCurrency)
	deps.ExchangeRateHandler = exchangerate.NewHandler(deps.CurrencyConverter)

	deps.TravelRepo = travel.NewRepo(db)
	deps.TravelService = travel.NewService(deps.TravelRepo)
	deps.TravelHandler = travel.NewHandler(deps.TravelService)

	deps.ExpenseReportRepo = expensereport.NewRepo(db)
	deps.ExpenseReportService = expensereport.NewService(deps.ExpenseReportRepo, deps.CurrencyConverter)
	deps.ExpenseReportHandler = expensereport.NewHandler(deps.ExpenseReportService)

	deps.DocumentFileRepo = documentfile.NewRepo(db)
	deps.DocumentFileService = documentfile.NewService(deps.DocumentFileRepo)
	deps.DocumentFileHandler = documentfile.NewHandler(deps.DocumentFileService)

	rates := lumpsum.Rates{
		Catering:  decimal.NewFromFloat(cfg.LumpSum.Catering),
		Overnight: decimal.NewFromFloat(cfg.LumpSum.Overnight),
	}
	deps.CsvTravelRenderer = report.NewCsvTravelRenderer()
	deps.ReportService = report.NewService(deps.TravelService, rates, deps.CsvTravelRenderer)
	deps.ReportHandler = report.NewHandler(deps.ReportService)

	return deps
}
