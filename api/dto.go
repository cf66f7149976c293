/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/lolo266/spa-saigon/backoffice"
)

// =============================================================================
// SHIFT TYPES
// =============================================================================

// BalancesDTO carries the four drawer balances of a shift.
type BalancesDTO struct {
	Cash             decimal.Decimal `json:"cash"`
	Certificate      decimal.Decimal `json:"certificate"`
	AdminCash        decimal.Decimal `json:"adminCash"`
	AdminCertificate decimal.Decimal `json:"adminCertificate"`
}

func (b BalancesDTO) toDomain() backoffice.Balances {
	return backoffice.Balances{
		Cash:             b.Cash,
		Certificate:      b.Certificate,
		AdminCash:        b.AdminCash,
		AdminCertificate: b.AdminCertificate,
	}
}

// ShiftDTO represents a shift in API responses.
type ShiftDTO struct {
	ID         string      `json:"id"`
	Date       string      `json:"date"`
	Branch     string      `json:"branch"`
	BranchName string      `json:"branchName,omitempty"`
	Lock       bool        `json:"lock"`
	Balances   BalancesDTO `json:"balances"`
	CreatedAt  string      `json:"createdAt"`
	UpdatedAt  string      `json:"updatedAt"`
}

// CreateShiftRequest opens a shift for a branch and day.
// Date accepts YYYY-MM-DD or epoch milliseconds (older clients).
type CreateShiftRequest struct {
	Date     string       `json:"date"`
	Branch   string       `json:"branch"`
	Balances *BalancesDTO `json:"balances,omitempty"`
}

// UpdateBalancesRequest replaces a shift's drawer balances.
type UpdateBalancesRequest struct {
	Balances BalancesDTO `json:"balances"`
}

// =============================================================================
// LEDGER TYPES
// =============================================================================

// LedgerDTO represents a ledger entry in API responses.
type LedgerDTO struct {
	ID            string          `json:"id"`
	Shift         string          `json:"shift"`
	Staff         string          `json:"staff,omitempty"`
	StaffName     string          `json:"staffName,omitempty"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	CreatedByName string          `json:"createdByName,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type,omitempty"`
	Content       string          `json:"content,omitempty"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

// CreateLedgerRequest records a drawer adjustment against a shift.
type CreateLedgerRequest struct {
	Shift   string          `json:"shift"`
	Staff   string          `json:"staff"`
	Amount  decimal.Decimal `json:"amount"`
	Type    string          `json:"type"`
	Content string          `json:"content"`
}

// UpdateLedgerRequest patches a ledger entry. Omitted fields are left
// unchanged.
type UpdateLedgerRequest struct {
	Staff   *string          `json:"staff,omitempty"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Type    *string          `json:"type,omitempty"`
	Content *string          `json:"content,omitempty"`
}

// =============================================================================
// AUDIT TYPES
// =============================================================================

type AuditEntryDTO struct {
	ID     string `json:"id"`
	At     string `json:"at"`
	Actor  string `json:"actor,omitempty"`
	Action string `json:"action"`
	Shift  string `json:"shift"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
