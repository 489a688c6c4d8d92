package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"money-transfer-service/internal/domain"
)

// AccountProvider is the slice of the account service the handler needs.
type AccountProvider interface {
	GetAccount(accountNumber string) (*domain.Account, error)
}

type AccountHandler struct {
	accounts AccountProvider
}

func NewAccountHandler(accounts AccountProvider) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
	}
}

type AccountResponse struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Balance       string `json:"balance"`
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountNumber := vars["account_number"]

	account, err := h.accounts.GetAccount(accountNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := AccountResponse{
		AccountNumber: account.AccountNumber,
		AccountName:   account.AccountName,
		Balance:       account.Balance.String(),
	}

	writeJSON(w, http.StatusOK, response)
}
