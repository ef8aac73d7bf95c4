package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartexpense/internal/handlers"
	"smartexpense/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.Instrument)
	r.Use(middlewares.AccessLog)
	r.Use(middlewares.Cors(s.frontendOrigin))
	if s.limiter != nil {
		r.Use(s.limiter.Limit)
	}

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.RootHandler).Methods("GET")
	r.HandleFunc("/health", ch.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.registerExpenseRoutes(r)

	return r
}

func (s *Server) registerExpenseRoutes(r *mux.Router) {
	eh := handlers.NewExpenseHandler(s.expenseService)

	r.HandleFunc("/add_expense", eh.AddExpense).Methods("POST", "OPTIONS")
	r.HandleFunc("/get_expenses", eh.GetAllExpenses).Methods("GET", "OPTIONS")
	r.HandleFunc("/get_expenses/{user_id}", eh.GetExpensesByUser).Methods("GET", "OPTIONS")
	r.HandleFunc("/update_expense/{expense_id}", eh.UpdateExpense).Methods("PUT", "OPTIONS")
	r.HandleFunc("/delete_expense/{expense_id}", eh.DeleteExpense).Methods("DELETE", "OPTIONS")
}
