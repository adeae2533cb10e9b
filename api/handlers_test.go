/*
handlers_test.go - HTTP-level tests for the dispatch endpoint

Tests for:
- Envelope dispatch and unknown types
- Request validation
- Status mapping (SUCCESS / ERROR / NOT_FOUND / ALREADY_EXISTS / DUPLICATE)
- The POS upload flow over the wire
- Demo data seeding
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grandstrand/vip-backend/loyalty"
	"github.com/grandstrand/vip-backend/tabular"
	"github.com/grandstrand/vip-backend/tabular/store"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func newTestServer(t *testing.T) (http.Handler, *store.Memory) {
	t.Helper()
	mem := store.NewSeededMemory()
	svc := loyalty.NewService(mem, nil)
	return NewRouter(NewHandler(svc, mem, nil)), mem
}

// post sends a dispatch request and decodes the response into a generic map.
func post(t *testing.T, srv http.Handler, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/vip", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out),
		"response must be JSON: %s", rec.Body.String())
	return rec.Code, out
}

func seedOwner(mem *store.Memory) {
	mem.Seed(tabular.SheetOwners, [][]string{
		{"johns-bars", "demo123", "John's Bars", "marshwalk,murphys", "wb-johns",
			"2025-01-01", "ACTIVE", ""},
	})
}

func seedCustomer(mem *store.Memory) {
	mem.Seed(tabular.SheetSignups, [][]string{
		{"8435551234", "James", "Carter", "A100", "marshwalk", "johns-bars", "3",
			"2026-03-01T20:00:00Z", "2026-02-01T18:00:00Z"},
	})
	mem.Seed(tabular.SheetVisitLog, [][]string{
		{"2026-03-01T20:00:00Z", "8435551234", "A100", "marshwalk", "johns-bars", "SCAN"},
		{"2026-03-02T20:00:00Z", "8435551234", "A100", "murphys", "johns-bars", "SCAN"},
		{"2026-03-03T20:00:00Z", "8435551234", "A100", "marshwalk", "johns-bars", "SCAN"},
	})
}

// =============================================================================
// DISPATCH
// =============================================================================

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "OK", out.Status)
	assert.Equal(t, "Grand Strand VIP Backend", out.Service)
}

func TestDispatch_UnknownType(t *testing.T) {
	srv, _ := newTestServer(t)

	code, out := post(t, srv, map[string]string{"type": "DO_SOMETHING"})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ERROR", out["status"])
	assert.Contains(t, out["message"], "Unknown request type: DO_SOMETHING")
}

func TestDispatch_ValidationFailure(t *testing.T) {
	// GIVEN: a GET_CONFIG request missing its ownerID
	srv, _ := newTestServer(t)

	code, out := post(t, srv, map[string]string{
		"type":  TypeGetConfig,
		"barID": "marshwalk",
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ERROR", out["status"])
}

// =============================================================================
// CONFIG AND OWNERS
// =============================================================================

func TestGetConfig_DefaultsWhenUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	code, out := post(t, srv, map[string]string{
		"type":    TypeGetConfig,
		"ownerID": "johns-bars",
		"barID":   "marshwalk",
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SUCCESS", out["status"])
	cfg := out["config"].(map[string]any)
	assert.Equal(t, float64(12), cfg["expirationHours"])
	assert.Equal(t, float64(5), cfg["tier1Visits"])
}

func TestValidateOwner(t *testing.T) {
	srv, mem := newTestServer(t)
	seedOwner(mem)

	// WHEN: correct credentials
	code, out := post(t, srv, map[string]string{
		"type": TypeValidateOwner, "ownerID": "johns-bars", "password": "demo123",
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SUCCESS", out["status"])
	owner := out["owner"].(map[string]any)
	assert.Equal(t, "John's Bars", owner["ownerName"])
	assert.Len(t, owner["barIDs"], 2)

	// WHEN: wrong password
	code, out = post(t, srv, map[string]string{
		"type": TypeValidateOwner, "ownerID": "johns-bars", "password": "nope",
	})

	// THEN: a business-level ERROR status, not an HTTP failure
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ERROR", out["status"])
	assert.Nil(t, out["owner"])
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func TestLookupByPhone(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCustomer(mem)

	// WHEN: looking up a known customer at marshwalk
	code, out := post(t, srv, map[string]string{
		"type": TypeLookupByPhone, "phone": "(843) 555-1234", "barID": "marshwalk",
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SUCCESS", out["status"])
	cust := out["customer"].(map[string]any)
	assert.Equal(t, "8435551234", cust["phone"])
	assert.Equal(t, "A100", cust["code"])
	assert.Equal(t, float64(2), cust["visitsAtThisBar"], "2 of 3 visits were at marshwalk")

	// WHEN: an unknown phone
	code, out = post(t, srv, map[string]string{
		"type": TypeLookupByPhone, "phone": "8435550000", "barID": "marshwalk",
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "NOT_FOUND", out["status"])
}

func TestRegistration_NewAndExisting(t *testing.T) {
	srv, _ := newTestServer(t)

	reg := map[string]string{
		"type": TypeRegistration, "phone": "8435559999",
		"firstName": "Wanda", "lastName": "Price", "code": "W5001",
		"barID": "tikibar", "ownerID": "johns-bars",
	}

	code, out := post(t, srv, reg)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SUCCESS", out["status"])
	assert.Equal(t, "W5001", out["code"])

	// Registering the same phone again returns the existing enrollment.
	code, out = post(t, srv, reg)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ALREADY_EXISTS", out["status"])
	assert.Equal(t, "W5001", out["code"])
	assert.Equal(t, "johns-bars", out["ownerID"])
}

func TestLogVisit_DuplicateSameDay(t *testing.T) {
	srv, _ := newTestServer(t)

	_, out := post(t, srv, map[string]string{
		"type": TypeRegistration, "phone": "8435559999",
		"firstName": "Wanda", "code": "W5001",
		"barID": "tikibar", "ownerID": "johns-bars",
	})
	require.Equal(t, "SUCCESS", out["status"])

	visit := map[string]string{
		"type": TypeLogVisit, "phone": "8435559999", "code": "W5001",
		"barID": "tikibar", "ownerID": "johns-bars",
	}

	// Registration already logged today's visit at tikibar, so the scan
	// on the same day is a duplicate.
	code, out := post(t, srv, visit)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "DUPLICATE", out["status"])
}

// =============================================================================
// POS UPLOAD
// =============================================================================

func TestUploadPOSData(t *testing.T) {
	// GIVEN: one enrolled customer and an owner
	srv, mem := newTestServer(t)
	seedOwner(mem)
	seedCustomer(mem)

	batch := `[{"code":"A100","transactionTotal":"25.50","locationID":"marshwalk","transactionID":"t-1"},` +
		`{"code":"ZZZZ","transactionTotal":"10.00","locationID":"marshwalk","transactionID":"t-2"}]`

	code, out := post(t, srv, map[string]string{
		"type": TypeUploadPOSData, "ownerID": "johns-bars", "transactions": batch,
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SUCCESS", out["status"])
	assert.Equal(t, float64(1), out["matched"])
	assert.Equal(t, float64(1), out["unmatched"])
	assert.NotEmpty(t, out["uploadID"])

	unmatched := out["unmatchedCodes"].([]any)
	require.Len(t, unmatched, 1)
	assert.Equal(t, "ZZZZ", unmatched[0].(map[string]any)["code"])
}

func TestUploadPOSData_MalformedBatch(t *testing.T) {
	srv, mem := newTestServer(t)
	seedOwner(mem)

	code, out := post(t, srv, map[string]string{
		"type": TypeUploadPOSData, "ownerID": "johns-bars", "transactions": "not json",
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ERROR", out["status"])
}

// =============================================================================
// BAR SYNCS
// =============================================================================

func TestGetBarSyncs(t *testing.T) {
	srv, mem := newTestServer(t)
	mem.Seed(tabular.SheetBarSyncLog, [][]string{
		{"johns-bars", "marshwalk", "2026-03-14T19:30:00Z"},
		{"johns-bars", "murphys", "garbage"},
	})

	code, out := post(t, srv, map[string]string{
		"type": TypeGetBarSyncs, "ownerID": "johns-bars",
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SUCCESS", out["status"])
	syncs := out["barSyncs"].(map[string]any)
	assert.Equal(t, "2026-03-14T19:30:00Z", syncs["marshwalk"])
	assert.Nil(t, syncs["murphys"], "unparseable timestamps report as never synced")
}

// =============================================================================
// DEMO SEEDING
// =============================================================================

func TestSeedDemoData(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scenarios/seed", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// The seeded owner validates and a seeded customer resolves.
	code, out := post(t, srv, map[string]string{
		"type": TypeValidateOwner, "ownerID": "johns-bars", "password": "demo123",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SUCCESS", out["status"])

	code, out = post(t, srv, map[string]string{
		"type": TypeLookupByPhone, "phone": "8435550105", "barID": "tikibar",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "SUCCESS", out["status"])
	cust := out["customer"].(map[string]any)
	assert.Equal(t, float64(15), cust["totalScans"])
}
