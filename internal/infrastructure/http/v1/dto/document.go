package dto

import (
	"time"

	"shopledger/internal/core/types"
	"shopledger/internal/domain/documents/invoice"
	"shopledger/internal/domain/documents/payment"
	"shopledger/internal/domain/documents/purchaseorder"
	"shopledger/internal/domain/documents/vendorpayment"
)

// --- Invoice ---

// InvoiceItemRequest is one invoice line in a request.
type InvoiceItemRequest struct {
	ProductName string      `json:"productName" binding:"required"`
	Quantity    int         `json:"quantity" binding:"required"`
	UnitPrice   types.Money `json:"unitPrice"`
}

// InvoiceRequest for creating and updating invoices.
type InvoiceRequest struct {
	CustomerID *string              `json:"customerId"`
	Discount   types.Money          `json:"discount"`
	Tax        types.Money          `json:"tax"`
	Notes      *string              `json:"notes"`
	Items      []InvoiceItemRequest `json:"items" binding:"required"`
}

// ToModel converts the request to a domain invoice. Totals are computed by
// the coordinator.
func (r InvoiceRequest) ToModel() (*invoice.Invoice, error) {
	customerID, err := ParseOptionalID(strValue(r.CustomerID), "customerId")
	if err != nil {
		return nil, err
	}

	items := make([]invoice.Item, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, invoice.Item{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	return &invoice.Invoice{
		CustomerID: customerID,
		Discount:   r.Discount,
		Tax:        r.Tax,
		Notes:      r.Notes,
		Items:      items,
	}, nil
}

// InvoiceListRequest filters invoice listings.
type InvoiceListRequest struct {
	PaginationRequest
	DateRangeRequest
	CustomerID string `form:"customerId"`
	Search     string `form:"search"`
}

// --- Payment ---

// PaymentRequest for creating payments.
type PaymentRequest struct {
	CustomerID    *string     `json:"customerId"`
	BankAccountID *string     `json:"bankAccountId"`
	Amount        types.Money `json:"amount" binding:"required"`
	Method        string      `json:"method" binding:"required"`
	ChequeNumber  *string     `json:"chequeNumber"`
	ChequeDate    *time.Time  `json:"chequeDate"`
	Notes         *string     `json:"notes"`
}

// ToModel converts the request to a domain payment.
func (r PaymentRequest) ToModel() (*payment.Payment, error) {
	customerID, err := ParseOptionalID(strValue(r.CustomerID), "customerId")
	if err != nil {
		return nil, err
	}
	bankAccountID, err := ParseOptionalID(strValue(r.BankAccountID), "bankAccountId")
	if err != nil {
		return nil, err
	}

	return &payment.Payment{
		CustomerID:    customerID,
		BankAccountID: bankAccountID,
		Amount:        r.Amount,
		Method:        payment.Method(r.Method),
		ChequeNumber:  r.ChequeNumber,
		ChequeDate:    r.ChequeDate,
		Notes:         r.Notes,
	}, nil
}

// CashEntryRequest records counter cash with no ledger customer.
type CashEntryRequest struct {
	BankAccountID *string     `json:"bankAccountId"`
	Amount        types.Money `json:"amount" binding:"required"`
	Notes         *string     `json:"notes"`
}

// ToModel converts the request to a cleared cash payment.
func (r CashEntryRequest) ToModel() (*payment.Payment, error) {
	bankAccountID, err := ParseOptionalID(strValue(r.BankAccountID), "bankAccountId")
	if err != nil {
		return nil, err
	}

	return &payment.Payment{
		BankAccountID: bankAccountID,
		Amount:        r.Amount,
		Method:        payment.MethodCash,
		Notes:         r.Notes,
	}, nil
}

// PaymentStatusRequest changes a payment's clearing state.
type PaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PaymentListRequest filters payment listings.
type PaymentListRequest struct {
	PaginationRequest
	DateRangeRequest
	CustomerID string `form:"customerId"`
	Status     string `form:"status"`
	Method     string `form:"method"`
}

// --- Purchase order ---

// PurchaseOrderItemRequest is one order line in a request.
type PurchaseOrderItemRequest struct {
	ProductName string      `json:"productName" binding:"required"`
	Quantity    int         `json:"quantity" binding:"required"`
	UnitCost    types.Money `json:"unitCost"`
}

// PurchaseOrderRequest for creating and updating purchase orders.
type PurchaseOrderRequest struct {
	VendorID string                     `json:"vendorId" binding:"required"`
	Notes    *string                    `json:"notes"`
	Items    []PurchaseOrderItemRequest `json:"items" binding:"required"`
}

// ToModel converts the request to a domain order.
func (r PurchaseOrderRequest) ToModel() (*purchaseorder.Order, error) {
	vendorID, err := ParseID(r.VendorID, "vendorId")
	if err != nil {
		return nil, err
	}

	items := make([]purchaseorder.Item, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, purchaseorder.Item{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
		})
	}

	return &purchaseorder.Order{
		VendorID: vendorID,
		Notes:    r.Notes,
		Items:    items,
	}, nil
}

// PurchaseOrderListRequest filters order listings.
type PurchaseOrderListRequest struct {
	PaginationRequest
	DateRangeRequest
	VendorID string `form:"vendorId"`
	Status   string `form:"status"`
}

// --- Vendor payment ---

// VendorPaymentRequest for creating vendor payments.
type VendorPaymentRequest struct {
	VendorID string      `json:"vendorId" binding:"required"`
	Amount   types.Money `json:"amount" binding:"required"`
	Method   string      `json:"method"`
	PaidAt   *time.Time  `json:"paidAt"`
	Notes    *string     `json:"notes"`
}

// ToModel converts the request to a domain vendor payment.
func (r VendorPaymentRequest) ToModel() (*vendorpayment.Payment, error) {
	vendorID, err := ParseID(r.VendorID, "vendorId")
	if err != nil {
		return nil, err
	}

	p := &vendorpayment.Payment{
		VendorID: vendorID,
		Amount:   r.Amount,
		Method:   r.Method,
		Notes:    r.Notes,
	}
	if r.PaidAt != nil {
		p.PaidAt = *r.PaidAt
	}
	return p, nil
}

// VendorPaymentListRequest filters vendor payment listings.
type VendorPaymentListRequest struct {
	PaginationRequest
	DateRangeRequest
	VendorID string `form:"vendorId"`
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
