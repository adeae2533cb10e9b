/*
dto.go - Request/response types for the VIP API

PURPOSE:
  Defines the JSON structures the POS clients, kiosk tablets, and the
  owner portal exchange with the backend. These types decouple the wire
  contract from the loyalty domain model.

WIRE CONTRACT:
  Every request to the POST entry point carries a "type" field selecting
  the operation. Every response carries a "status" field drawn from
  SUCCESS / ERROR / NOT_FOUND / ALREADY_EXISTS / DUPLICATE.

  POS transactions are a JSON-encoded string inside the upload request
  ("transactions"), not a nested array: the legacy POS export tooling
  can only post flat string fields.

VALIDATION:
  Per-operation request structs carry validator tags; the handler runs
  go-playground/validator after decoding.

SEE ALSO:
  - handlers.go: the dispatch and per-operation handlers
*/
package api

import (
	"github.com/grandstrand/vip-backend/loyalty"
)

// Request type discriminators for the POST entry point.
const (
	TypeGetConfig     = "GET_CONFIG"
	TypeValidateOwner = "VALIDATE_OWNER"
	TypeLookupByPhone = "LOOKUP_BY_PHONE"
	TypeRegistration  = "NEW_REGISTRATION"
	TypeLogVisit      = "LOG_VISIT"
	TypeRedeemReward  = "REDEEM_REWARD"
	TypeSaveConfig    = "SAVE_CONFIG"
	TypeUploadPOSData = "UPLOAD_POS_DATA"
	TypeSyncDashboard = "SYNC_OWNER_DASHBOARD"
	TypeGetBarSyncs   = "GET_BAR_SYNCS"
)

// envelope is the minimal decode used to pick the operation before the
// body is decoded a second time into the typed request.
type envelope struct {
	Type string `json:"type"`
}

// =============================================================================
// REQUESTS
// =============================================================================

type GetConfigRequest struct {
	OwnerID string `json:"ownerID" validate:"required"`
	BarID   string `json:"barID" validate:"required"`
}

type ValidateOwnerRequest struct {
	OwnerID  string `json:"ownerID" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LookupByPhoneRequest struct {
	Phone string `json:"phone" validate:"required"`
	BarID string `json:"barID" validate:"required"`
}

type RegistrationRequest struct {
	Phone     string `json:"phone" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Code      string `json:"code"`
	BarID     string `json:"barID" validate:"required"`
	OwnerID   string `json:"ownerID" validate:"required"`
}

type LogVisitRequest struct {
	Phone   string `json:"phone" validate:"required"`
	Code    string `json:"code"`
	BarID   string `json:"barID" validate:"required"`
	OwnerID string `json:"ownerID" validate:"required"`
}

type RedeemRewardRequest struct {
	Phone              string `json:"phone" validate:"required"`
	Code               string `json:"code"`
	Tier               string `json:"tier" validate:"required"`
	BarID              string `json:"barID" validate:"required"`
	OwnerID            string `json:"ownerID" validate:"required"`
	VisitsAtRedemption int    `json:"visitsAtRedemption"`
}

type SaveConfigRequest struct {
	OwnerID string            `json:"ownerID" validate:"required"`
	BarID   string            `json:"barID" validate:"required"`
	Config  loyalty.BarConfig `json:"config"`
}

// UploadPOSDataRequest carries the batch as a JSON-encoded string; see
// the package comment. Malformed transaction JSON fails the whole batch.
type UploadPOSDataRequest struct {
	OwnerID      string `json:"ownerID" validate:"required"`
	Transactions string `json:"transactions" validate:"required"`
}

type SyncDashboardRequest struct {
	OwnerID string `json:"ownerID" validate:"required"`
}

type GetBarSyncsRequest struct {
	OwnerID string `json:"ownerID" validate:"required"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// statusResponse is the minimal response every operation shares.
type statusResponse struct {
	Status  loyalty.Status `json:"status"`
	Message string         `json:"message,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type ConfigResponse struct {
	Status loyalty.Status    `json:"status"`
	Config loyalty.BarConfig `json:"config"`
}

type OwnerDTO struct {
	OwnerID     string   `json:"ownerID"`
	OwnerName   string   `json:"ownerName"`
	BarIDs      []string `json:"barIDs"`
	LastCSVSync string   `json:"lastCSVSync"`
}

type ValidateOwnerResponse struct {
	Status loyalty.Status `json:"status"`
	Owner  *OwnerDTO      `json:"owner,omitempty"`
}

type CustomerDTO struct {
	Phone           string `json:"phone"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Code            string `json:"code"`
	BarID           string `json:"barID"`
	OwnerID         string `json:"ownerID"`
	TotalScans      int    `json:"totalScans"`
	LastScan        string `json:"lastScan,omitempty"`
	VisitsAtThisBar int    `json:"visitsAtThisBar"`
}

type LookupResponse struct {
	Status   loyalty.Status `json:"status"`
	Customer *CustomerDTO   `json:"customer,omitempty"`
}

type RegistrationResponse struct {
	Status  loyalty.Status `json:"status"`
	Code    string         `json:"code,omitempty"`
	OwnerID string         `json:"ownerID,omitempty"`
}

type UploadPOSDataResponse struct {
	Status         loyalty.Status                 `json:"status"`
	UploadID       string                         `json:"uploadID"`
	Matched        int                            `json:"matched"`
	Unmatched      int                            `json:"unmatched"`
	UnmatchedCodes []loyalty.UnmatchedTransaction `json:"unmatchedCodes"`
	TouchedBars    []string                       `json:"touchedBars"`
	LastSync       string                         `json:"lastSync"`
}

type BarSyncsResponse struct {
	Status   loyalty.Status     `json:"status"`
	BarSyncs map[string]*string `json:"barSyncs"`
}
