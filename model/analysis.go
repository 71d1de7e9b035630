package model

import (
	"time"
)

// Analysis represents one contract/invoice comparison run
type Analysis struct {
	ID              string    `json:"id"`
	ContractFile    string    `json:"contract_file"`
	InvoiceFile     string    `json:"invoice_file"`
	Tenant          string    `json:"tenant"`
	Status          string    `json:"status"` // processing, completed, failed
	Report          any       `json:"report,omitempty"`
	ErrorMsg        string    `json:"error_msg,omitempty"`
	ContractArchive string    `json:"contract_archive,omitempty"`
	InvoiceArchive  string    `json:"invoice_archive,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Analysis status constants
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
