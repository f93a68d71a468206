package app

import (
	"github.com/gorilla/mux"
	"github.com/reisegeld/reisegeld/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Travel
	r.HandleFunc("/api/travel", deps.TravelHandler.GetOwn).Methods("GET")
	r.HandleFunc("/api/travel/all", deps.TravelHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/travel", deps.TravelHandler.Create).Methods("POST")
	r.HandleFunc("/api/travel/{travelId}", deps.TravelHandler.Get).Methods("GET")
	r.HandleFunc("/api/travel/{travelId}", deps.TravelHandler.Update).Methods("PUT")
	r.HandleFunc("/api/travel/{travelId}", deps.TravelHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/travel/{travelId}/approve", deps.TravelHandler.Approve).Methods("POST")
	r.HandleFunc("/api/travel/{travelId}/reject", deps.TravelHandler.Reject).Methods("POST")
	r.HandleFunc("/api/travel/{travelId}/examination", deps.TravelHandler.SubmitForExamination).Methods("POST")
	r.HandleFunc("/api/travel/{travelId}/refund", deps.TravelHandler.Refund).Methods("POST")

	// Expense report
	r.HandleFunc("/api/expense-report", deps.ExpenseReportHandler.GetOwn).Methods("GET")
	r.HandleFunc("/api/expense-report/all", deps.ExpenseReportHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/expense-report", deps.ExpenseReportHandler.Create).Methods("POST")
	r.HandleFunc("/api/expense-report/{reportId}", deps.ExpenseReportHandler.Get).Methods("GET")
	r.HandleFunc("/api/expense-report/{reportId}", deps.ExpenseReportHandler.Update).Methods("PUT")
	r.HandleFunc("/api/expense-report/{reportId}", deps.ExpenseReportHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/expense-report/{reportId}/examination", deps.ExpenseReportHandler.SubmitForExamination).Methods("POST")
	r.HandleFunc("/api/expense-report/{reportId}/reject", deps.ExpenseReportHandler.Reject).Methods("POST")
	r.HandleFunc("/api/expense-report/{reportId}/refund", deps.ExpenseReportHandler.Refund).Methods("POST")

	// Document files (receipts)
	r.HandleFunc("/api/file", deps.DocumentFileHandler.Upload).Methods("POST")
	r.HandleFunc("/api/file/{id}", deps.DocumentFileHandler.Download).Methods("GET")
	r.HandleFunc("/api/file/{id}/meta", deps.DocumentFileHandler.GetMeta).Methods("GET")
	r.HandleFunc("/api/file/{id}", deps.DocumentFileHandler.Delete).Methods("DELETE")

	// Currency conversion
	r.HandleFunc("/api/exchange-rate/convert", deps.ExchangeRateHandler.Convert).
		Queries("date", "{date}", "amount", "{amount}", "from", "{from}").Methods("GET")

	// Reporting
	r.HandleFunc("/api/report/travel", deps.ReportHandler.TravelReport).
		Queries("from", "{from}", "to", "{to}").Methods("GET")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.GetAllUsers).Methods("GET")
	r.HandleFunc("/api/user/{userId}/access", deps.UserHandler.UpdateAccess).Methods("PUT")
	r.HandleFunc("/api/user/{userId}", deps.UserHandler.DeleteUser).Methods("DELETE")
}
