package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"money-transfer-service/internal/domain"
	"money-transfer-service/internal/errors"
	"money-transfer-service/internal/service"
)

const dateLayout = "2006-01-02"

// TransferProcessor is the slice of the transfer engine the handler needs.
type TransferProcessor interface {
	ProcessTransfer(req *service.TransferRequest) (*domain.Transaction, error)
	ListTransactions(filter domain.TransactionFilter) (*domain.TransactionPage, error)
}

type SummaryProvider interface {
	GetOrBuild(date time.Time) (*domain.TransactionSummary, error)
	Rebuild(date time.Time) (*domain.TransactionSummary, error)
}

type CommissionSweeper interface {
	SweepCommissions() (int, error)
}

type TransactionHandler struct {
	transfers   TransferProcessor
	summaries   SummaryProvider
	commissions CommissionSweeper
}

func NewTransactionHandler(transfers TransferProcessor, summaries SummaryProvider, commissions CommissionSweeper) *TransactionHandler {
	return &TransactionHandler{
		transfers:   transfers,
		summaries:   summaries,
		commissions: commissions,
	}
}

type TransferRequest struct {
	SourceAccountNumber      string `json:"source_account_number"`
	DestinationAccountNumber string `json:"destination_account_number"`
	Amount                   string `json:"amount"`
	Description              string `json:"description,omitempty"`
}

type TransactionResponse struct {
	ID                       string `json:"id"`
	Reference                string `json:"reference"`
	SourceAccountNumber      string `json:"source_account_number"`
	DestinationAccountNumber string `json:"destination_account_number"`
	Amount                   string `json:"amount"`
	TransactionFee           string `json:"transaction_fee"`
	BilledAmount             string `json:"billed_amount"`
	Description              string `json:"description,omitempty"`
	Status                   string `json:"status"`
	StatusMessage            string `json:"status_message"`
	CommissionWorthy         bool   `json:"commission_worthy"`
	Commission               string `json:"commission"`
	CreatedAt                string `json:"created_at"`
	UpdatedAt                string `json:"updated_at"`
}

func newTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                       tx.ID.String(),
		Reference:                tx.Reference,
		SourceAccountNumber:      tx.SourceAccountNumber,
		DestinationAccountNumber: tx.DestinationAccountNumber,
		Amount:                   tx.Amount.String(),
		TransactionFee:           tx.TransactionFee.String(),
		BilledAmount:             tx.BilledAmount.String(),
		Description:              tx.Description,
		Status:                   string(tx.Status),
		StatusMessage:            tx.StatusMessage,
		CommissionWorthy:         tx.CommissionWorthy,
		Commission:               tx.Commission.String(),
		CreatedAt:                tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                tx.UpdatedAt.Format(time.RFC3339),
	}
}

type PagedResponse struct {
	Content       []TransactionResponse `json:"content"`
	TotalElements int64                 `json:"total_elements"`
	TotalPages    int                   `json:"total_pages"`
	Page          int                   `json:"page"`
	Size          int                   `json:"size"`
	First         bool                  `json:"first"`
	Last          bool                  `json:"last"`
}

type SummaryResponse struct {
	Date                   string `json:"date"`
	TotalTransactions      int64  `json:"total_transactions"`
	SuccessfulTransactions int64  `json:"successful_transactions"`
	FailedTransactions     int64  `json:"failed_transactions"`
	TotalAmount            string `json:"total_amount"`
	TotalFees              string `json:"total_fees"`
	TotalCommission        string `json:"total_commission"`
}

func newSummaryResponse(summary *domain.TransactionSummary) SummaryResponse {
	return SummaryResponse{
		Date:                   summary.Date.Format(dateLayout),
		TotalTransactions:      summary.TotalTransactions,
		SuccessfulTransactions: summary.SuccessfulTransactions,
		FailedTransactions:     summary.FailedTransactions,
		TotalAmount:            summary.TotalAmount.String(),
		TotalFees:              summary.TotalFees.String(),
		TotalCommission:        summary.TotalCommission.String(),
	}
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error()))
		return
	}

	transaction, err := h.transfers.ProcessTransfer(&service.TransferRequest{
		SourceAccountNumber:      req.SourceAccountNumber,
		DestinationAccountNumber: req.DestinationAccountNumber,
		Amount:                   amount,
		Description:              req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTransactionResponse(transaction))
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := domain.TransactionFilter{
		AccountNumber: query.Get("accountNumber"),
		Page:          1,
		Size:          10,
	}

	if raw := query.Get("status"); raw != "" {
		status, ok := domain.ParseTransactionStatus(raw)
		if !ok {
			writeError(w, errors.NewAppErrorf(errors.InvalidInput, "unknown transaction status %q", raw))
			return
		}
		filter.Status = &status
	}

	if raw := query.Get("startDate"); raw != "" {
		start, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "startDate must be formatted as YYYY-MM-DD"))
			return
		}
		filter.StartTime = &start
	}

	if raw := query.Get("endDate"); raw != "" {
		end, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "endDate must be formatted as YYYY-MM-DD"))
			return
		}
		endOfDay := end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, errors.NewAppError(errors.InvalidInput, "page must be a positive integer"))
			return
		}
		filter.Page = page
	}

	if raw := query.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			writeError(w, errors.NewAppError(errors.InvalidInput, "size must be a positive integer"))
			return
		}
		filter.Size = size
	}

	page, err := h.transfers.ListTransactions(filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	content := make([]TransactionResponse, 0, len(page.Content))
	for _, tx := range page.Content {
		content = append(content, newTransactionResponse(tx))
	}

	writeJSON(w, http.StatusOK, PagedResponse{
		Content:       content,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Page:          page.Page,
		Size:          page.Size,
		First:         page.First,
		Last:          page.Last,
	})
}

func (h *TransactionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseSummaryDate(w, r)
	if !ok {
		return
	}

	summary, err := h.summaries.GetOrBuild(date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSummaryResponse(summary))
}

func (h *TransactionHandler) RebuildSummary(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseSummaryDate(w, r)
	if !ok {
		return
	}

	summary, err := h.summaries.Rebuild(date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSummaryResponse(summary))
}

func (h *TransactionHandler) SweepCommissions(w http.ResponseWriter, r *http.Request) {
	updated, err := h.commissions.SweepCommissions()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"updated_transactions": updated})
}

func (h *TransactionHandler) parseSummaryDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, errors.NewAppError(errors.InvalidInput, "date query parameter is required"))
		return time.Time{}, false
	}

	date, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "date must be formatted as YYYY-MM-DD"))
		return time.Time{}, false
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.After(today) {
		writeError(w, errors.NewAppError(errors.InvalidInput, "date cannot be in the future"))
		return time.Time{}, false
	}

	return date, true
}
