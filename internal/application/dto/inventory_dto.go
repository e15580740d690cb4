package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransactionRequest body para POST /api/inventory/transactions (admin).
// Quantity es con signo: positivo entra stock, negativo sale.
type CreateTransactionRequest struct {
	ProductID   string           `json:"product_id"`
	Type        string           `json:"type"`
	Quantity    int              `json:"quantity"`
	Reason      string           `json:"reason"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
	Supplier    string           `json:"supplier,omitempty"`
	BatchNumber string           `json:"batch_number,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
}

// BulkTransactionItem línea de un lote; hereda tipo y razón compartidos.
type BulkTransactionItem struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Cost      *decimal.Decimal `json:"cost,omitempty"`
}

// BulkCreateTransactionsRequest body para POST /api/inventory/transactions/bulk.
// Todo-o-nada: una línea inválida aborta el lote completo sin efecto parcial.
type BulkCreateTransactionsRequest struct {
	Type    string                `json:"type"`
	Reason  string                `json:"reason"`
	Entries []BulkTransactionItem `json:"entries"`
}

// TransactionResponse entrada del libro en respuestas HTTP.
type TransactionResponse struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	Type        string           `json:"type"`
	Quantity    int              `json:"quantity"`
	Reason      string           `json:"reason"`
	Reference   string           `json:"reference,omitempty"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
	Supplier    string           `json:"supplier,omitempty"`
	BatchNumber string           `json:"batch_number,omitempty"`
	CreatedBy   string           `json:"created_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ReportRowResponse fila del reporte agregado por producto.
type ReportRowResponse struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	UnitsIn   int    `json:"units_in"`
	UnitsOut  int    `json:"units_out"`
	Net       int    `json:"net"`
}

// ReconciliationResponse compara el contador vivo contra la suma del libro.
// Drift distinto de cero indica que alguna mutación no pasó por el libro.
type ReconciliationResponse struct {
	ProductID string `json:"product_id"`
	StockQty  int    `json:"stock_qty"`
	LedgerSum int    `json:"ledger_sum"`
	Drift     int    `json:"drift"`
}
