package dto

import (
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/bank"
	"shopledger/internal/domain/catalogs/customer"
	"shopledger/internal/domain/catalogs/vendor"
)

// --- Customer ---

// CustomerRequest for creating and updating customers.
type CustomerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
}

// ToModel converts the request to a domain customer.
func (r CustomerRequest) ToModel() *customer.Customer {
	return &customer.Customer{
		Name:    r.Name,
		Phone:   r.Phone,
		Address: r.Address,
		City:    r.City,
	}
}

// CustomerListRequest filters customer listings.
type CustomerListRequest struct {
	PaginationRequest
	Search      string `form:"search"`
	City        string `form:"city"`
	WithDeleted bool   `form:"withDeleted"`
}

// --- Vendor ---

// VendorRequest for creating and updating vendors.
type VendorRequest struct {
	Name          string  `json:"name" binding:"required"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	ContactPerson *string `json:"contactPerson"`
}

// ToModel converts the request to a domain vendor.
func (r VendorRequest) ToModel() *vendor.Vendor {
	return &vendor.Vendor{
		Name:          r.Name,
		Phone:         r.Phone,
		Address:       r.Address,
		City:          r.City,
		ContactPerson: r.ContactPerson,
	}
}

// VendorListRequest filters vendor listings.
type VendorListRequest struct {
	PaginationRequest
	Search      string `form:"search"`
	WithDeleted bool   `form:"withDeleted"`
}

// --- Bank account ---

// BankAccountRequest for creating bank accounts.
type BankAccountRequest struct {
	Name           string      `json:"name" binding:"required"`
	BankName       *string     `json:"bankName"`
	AccountNumber  *string     `json:"accountNumber"`
	OpeningBalance types.Money `json:"openingBalance"`
}

// ToModel converts the request to a domain account.
func (r BankAccountRequest) ToModel() *bank.Account {
	return &bank.Account{
		Name:          r.Name,
		BankName:      r.BankName,
		AccountNumber: r.AccountNumber,
		Balance:       r.OpeningBalance,
	}
}
