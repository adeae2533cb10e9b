/*
handlers.go - HTTP handlers for the VIP backend

PURPOSE:
  Exposes the loyalty core over HTTP. One POST entry point dispatches on
  the request's "type" field; the POS terminals and the owner portal
  both speak this single-endpoint protocol.

REQUEST FLOW:
  1. Decode the envelope to pick the operation
  2. Decode the body again into the typed request
  3. Validate (go-playground/validator)
  4. Call the loyalty service
  5. Encode a response that always carries a "status" field

ERROR HANDLING:
  Business conditions (duplicate visit, existing phone, unknown
  customer, bad credentials) travel as status values with HTTP 200.
  Genuine failures (unreadable sheet, malformed JSON) return ERROR; the
  HTTP status mirrors the failure class but clients key off "status".

SEE ALSO:
  - dto.go: wire types
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grandstrand/vip-backend/loyalty"
	"github.com/grandstrand/vip-backend/tabular"
)

// Version reported by the health check.
const Version = "3.10"

// Handler holds all dependencies for HTTP handlers. Tables is used only
// by the demo seed route; all business operations go through Service.
type Handler struct {
	Service  *loyalty.Service
	Tables   tabular.Store
	log      *zap.Logger
	validate *validator.Validate
}

// NewHandler creates a handler over the given service.
func NewHandler(svc *loyalty.Service, tables tabular.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Service:  svc,
		Tables:   tables,
		log:      log,
		validate: validator.New(),
	}
}

// Health answers the GET health check.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "OK",
		Service:   "Grand Strand VIP Backend",
		Version:   Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Dispatch routes a POST request by its "type" field.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeStatus(w, http.StatusBadRequest, loyalty.StatusError, "unreadable request body")
		return
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		h.writeStatus(w, http.StatusBadRequest, loyalty.StatusError, "invalid request payload")
		return
	}

	h.log.Debug("dispatch", zap.String("type", env.Type))

	switch env.Type {
	case TypeGetConfig:
		h.getConfig(w, r, body)
	case TypeValidateOwner:
		h.validateOwner(w, r, body)
	case TypeLookupByPhone:
		h.lookupByPhone(w, r, body)
	case TypeRegistration:
		h.newRegistration(w, r, body)
	case TypeLogVisit:
		h.logVisit(w, r, body)
	case TypeRedeemReward:
		h.redeemReward(w, r, body)
	case TypeSaveConfig:
		h.saveConfig(w, r, body)
	case TypeUploadPOSData:
		h.uploadPOSData(w, r, body)
	case TypeSyncDashboard:
		h.syncDashboard(w, r, body)
	case TypeGetBarSyncs:
		h.getBarSyncs(w, r, body)
	default:
		h.writeStatus(w, http.StatusBadRequest, loyalty.StatusError, "Unknown request type: "+env.Type)
	}
}

// decode unmarshals and validates a typed request.
func (h *Handler) decode(w http.ResponseWriter, body []byte, dst any) bool {
	if err := json.Unmarshal(body, dst); err != nil {
		h.writeStatus(w, http.StatusBadRequest, loyalty.StatusError, "invalid request payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.log.Warn("validation failed", zap.Error(err))
		h.writeStatus(w, http.StatusBadRequest, loyalty.StatusError, validationMessage(err))
		return false
	}
	return true
}

// validationMessage flattens the first validator error into the
// response message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field() + " is required"
	}
	return "invalid request"
}

// =============================================================================
// OPERATIONS
// =============================================================================

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request, body []byte) {
	var req GetConfigRequest
	if !h.decode(w, body, &req) {
		return
	}

	cfg, err := h.Service.GetConfig(r.Context(),
		loyalty.OwnerID(req.OwnerID), loyalty.NormalizeBarID(req.BarID))
	if err != nil {
		h.serviceError(w, "get config", err)
		return
	}
	writeJSON(w, http.StatusOK, ConfigResponse{Status: loyalty.StatusSuccess, Config: cfg})
}

func (h *Handler) validateOwner(w http.ResponseWriter, r *http.Request, body []byte) {
	var req ValidateOwnerRequest
	if !h.decode(w, body, &req) {
		return
	}

	owner, err := h.Service.ValidateOwner(r.Context(), loyalty.OwnerID(req.OwnerID), req.Password)
	if err != nil {
		h.serviceError(w, "validate owner", err)
		return
	}
	if owner == nil {
		h.writeStatus(w, http.StatusOK, loyalty.StatusError, "Invalid Owner ID or Password")
		return
	}

	dto := &OwnerDTO{
		OwnerID:   string(owner.ID),
		OwnerName: owner.Name,
	}
	for _, bar := range owner.BarIDs {
		dto.BarIDs = append(dto.BarIDs, string(bar))
	}
	if !owner.LastCSVSync.IsZero() {
		dto.LastCSVSync = owner.LastCSVSync.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, ValidateOwnerResponse{Status: loyalty.StatusSuccess, Owner: dto})
}

func (h *Handler) lookupByPhone(w http.ResponseWriter, r *http.Request, body []byte) {
	var req LookupByPhoneRequest
	if !h.decode(w, body, &req) {
		return
	}

	customer, visitsAtBar, err := h.Service.LookupByPhone(r.Context(),
		loyalty.NormalizePhone(req.Phone), loyalty.NormalizeBarID(req.BarID))
	if errors.Is(err, loyalty.ErrCustomerNotFound) {
		writeJSON(w, http.StatusOK, LookupResponse{Status: loyalty.StatusNotFound})
		return
	}
	if err != nil {
		h.serviceError(w, "lookup by phone", err)
		return
	}

	dto := &CustomerDTO{
		Phone:           string(customer.Phone),
		FirstName:       customer.FirstName,
		LastName:        customer.LastName,
		Code:            string(customer.Code),
		BarID:           string(customer.BarID),
		OwnerID:         string(customer.OwnerID),
		TotalScans:      customer.TotalScans,
		VisitsAtThisBar: visitsAtBar,
	}
	if !customer.LastScan.IsZero() {
		dto.LastScan = customer.LastScan.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, LookupResponse{Status: loyalty.StatusSuccess, Customer: dto})
}

func (h *Handler) newRegistration(w http.ResponseWriter, r *http.Request, body []byte) {
	var req RegistrationRequest
	if !h.decode(w, body, &req) {
		return
	}

	res, err := h.Service.Register(r.Context(),
		loyalty.OwnerID(req.OwnerID), loyalty.NormalizeBarID(req.BarID),
		loyalty.NormalizePhone(req.Phone), req.FirstName, req.LastName,
		loyalty.NormalizeCode(req.Code))
	if err != nil {
		h.serviceError(w, "registration", err)
		return
	}

	writeJSON(w, http.StatusOK, RegistrationResponse{
		Status:  res.Status,
		Code:    string(res.Code),
		OwnerID: string(res.OwnerID),
	})
}

func (h *Handler) logVisit(w http.ResponseWriter, r *http.Request, body []byte) {
	var req LogVisitRequest
	if !h.decode(w, body, &req) {
		return
	}

	status, err := h.Service.LogVisit(r.Context(),
		loyalty.OwnerID(req.OwnerID), loyalty.NormalizeBarID(req.BarID),
		loyalty.NormalizePhone(req.Phone), loyalty.NormalizeCode(req.Code))
	if err != nil {
		h.serviceError(w, "log visit", err)
		return
	}
	if status == loyalty.StatusDuplicate {
		h.writeStatus(w, http.StatusOK, status, "Already visited today")
		return
	}
	h.writeStatus(w, http.StatusOK, status, "")
}

func (h *Handler) redeemReward(w http.ResponseWriter, r *http.Request, body []byte) {
	var req RedeemRewardRequest
	if !h.decode(w, body, &req) {
		return
	}

	if err := h.Service.Redeem(r.Context(),
		loyalty.OwnerID(req.OwnerID), loyalty.NormalizeBarID(req.BarID),
		loyalty.NormalizePhone(req.Phone), loyalty.NormalizeCode(req.Code),
		req.Tier, req.VisitsAtRedemption); err != nil {
		h.serviceError(w, "redeem reward", err)
		return
	}
	h.writeStatus(w, http.StatusOK, loyalty.StatusSuccess, "")
}

func (h *Handler) saveConfig(w http.ResponseWriter, r *http.Request, body []byte) {
	var req SaveConfigRequest
	if !h.decode(w, body, &req) {
		return
	}

	if err := h.Service.SaveConfig(r.Context(),
		loyalty.OwnerID(req.OwnerID), loyalty.NormalizeBarID(req.BarID), req.Config); err != nil {
		h.serviceError(w, "save config", err)
		return
	}
	h.writeStatus(w, http.StatusOK, loyalty.StatusSuccess, "")
}

func (h *Handler) uploadPOSData(w http.ResponseWriter, r *http.Request, body []byte) {
	var req UploadPOSDataRequest
	if !h.decode(w, body, &req) {
		return
	}

	// The batch is a JSON-encoded string field; a malformed payload is
	// fatal to the whole upload.
	var batch []loyalty.Transaction
	if err := json.Unmarshal([]byte(req.Transactions), &batch); err != nil {
		h.writeStatus(w, http.StatusBadRequest, loyalty.StatusError, "invalid transactions payload")
		return
	}

	res, err := h.Service.Reconcile(r.Context(), loyalty.OwnerID(req.OwnerID), batch)
	if err != nil {
		h.serviceError(w, "pos upload", err)
		return
	}

	resp := UploadPOSDataResponse{
		Status:         loyalty.StatusSuccess,
		UploadID:       res.UploadID,
		Matched:        res.Matched,
		Unmatched:      res.Unmatched,
		UnmatchedCodes: res.UnmatchedTx,
		TouchedBars:    make([]string, 0, len(res.TouchedBars)),
		LastSync:       res.SyncedAt.UTC().Format(time.RFC3339),
	}
	if resp.UnmatchedCodes == nil {
		resp.UnmatchedCodes = []loyalty.UnmatchedTransaction{}
	}
	for bar := range res.TouchedBars {
		resp.TouchedBars = append(resp.TouchedBars, string(bar))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) syncDashboard(w http.ResponseWriter, r *http.Request, body []byte) {
	var req SyncDashboardRequest
	if !h.decode(w, body, &req) {
		return
	}

	if err := h.Service.SyncOwnerDashboard(r.Context(), loyalty.OwnerID(req.OwnerID)); err != nil {
		if errors.Is(err, loyalty.ErrOwnerNotFound) {
			h.writeStatus(w, http.StatusOK, loyalty.StatusNotFound, "owner not found")
			return
		}
		h.serviceError(w, "sync dashboard", err)
		return
	}
	h.writeStatus(w, http.StatusOK, loyalty.StatusSuccess, "")
}

func (h *Handler) getBarSyncs(w http.ResponseWriter, r *http.Request, body []byte) {
	var req GetBarSyncsRequest
	if !h.decode(w, body, &req) {
		return
	}

	syncs, err := h.Service.GetBarSyncs(r.Context(), loyalty.OwnerID(req.OwnerID))
	if err != nil {
		h.serviceError(w, "get bar syncs", err)
		return
	}

	out := make(map[string]*string, len(syncs))
	for bar, ts := range syncs {
		if ts == nil {
			out[string(bar)] = nil
			continue
		}
		s := ts.UTC().Format(time.RFC3339)
		out[string(bar)] = &s
	}
	writeJSON(w, http.StatusOK, BarSyncsResponse{Status: loyalty.StatusSuccess, BarSyncs: out})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) serviceError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op+" failed", zap.Error(err))
	h.writeStatus(w, http.StatusInternalServerError, loyalty.StatusError, err.Error())
}

func (h *Handler) writeStatus(w http.ResponseWriter, httpStatus int, status loyalty.Status, message string) {
	writeJSON(w, httpStatus, statusResponse{Status: status, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
