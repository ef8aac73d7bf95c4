package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExpenseCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_expense_created_total",
		Help: "Total number of expenses created.",
	})
	ExpenseUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_expense_updated_total",
		Help: "Total number of expenses updated.",
	})
	ExpenseDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_expense_deleted_total",
		Help: "Total number of expenses deleted.",
	})
	ExpenseNotFoundTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_expense_not_found_total",
		Help: "Total number of update or delete calls that referenced a missing expense.",
	}, []string{"operation"}) // operation: "update" or "delete"
)
