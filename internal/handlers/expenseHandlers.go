package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"smartexpense/internal/models"
	"smartexpense/internal/repositories"
	"smartexpense/internal/services"
	"smartexpense/internal/utils"
)

// maxBodyBytes caps request bodies; an expense is a handful of short fields.
const maxBodyBytes = 1 << 20

type ExpenseHandler struct {
	service services.ExpenseService
}

func NewExpenseHandler(service services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

type addExpenseResponse struct {
	Message string          `json:"message"`
	Expense *models.Expense `json:"expense"`
}

// decodeAndValidate answers 400 for malformed JSON and 422 for schema
// failures. It reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Invalid JSON payload")
		utils.SendJSONError(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := models.Validate(dst); err != nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Expense payload failed validation")
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return false
	}
	return true
}

func (h *ExpenseHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var input models.ExpenseInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	expense, err := h.service.AddExpense(r.Context(), input)
	if err != nil {
		utils.SendJSONError(w, "Error adding expense: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, addExpenseResponse{
		Message: "Expense added successfully",
		Expense: expense,
	})
}

func (h *ExpenseHandler) GetExpensesByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetPathParam(w, r, "user_id")
	if err != nil {
		return
	}

	expenses, err := h.service.GetExpensesByUser(r.Context(), userID)
	if err != nil {
		utils.SendJSONError(w, "Error fetching expenses: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}

	utils.RespondWithJSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) GetAllExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.GetAllExpenses(r.Context())
	if err != nil {
		utils.SendJSONError(w, "Error fetching expenses: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}

	utils.RespondWithJSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := utils.GetPathParam(w, r, "expense_id")
	if err != nil {
		return
	}

	var patch models.ExpensePatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}

	if err := h.service.UpdateExpense(r.Context(), expenseID, patch); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.SendJSONError(w, "Expense not found", http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, "Error updating expense: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Expense updated successfully")
}

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := utils.GetPathParam(w, r, "expense_id")
	if err != nil {
		return
	}

	if err := h.service.DeleteExpense(r.Context(), expenseID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.SendJSONError(w, "Expense not found", http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, "Error deleting expense: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Expense deleted successfully")
}
