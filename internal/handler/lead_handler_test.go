package handler_test

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type leadItem struct {
	ID               int64   `json:"id"`
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	CompanyName      *string `json:"company_name"`
	FleetSize        *string `json:"fleet_size"`
	LocationZip      *string `json:"location_zip"`
	PrimaryInterests *string `json:"primary_interests"`
	CreatedAt        string  `json:"created_at"`
}

func listLeads(t *testing.T, env *testEnv) []leadItem {
	t.Helper()
	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var items []leadItem
	decodeJSON(t, resp, &items)
	return items
}

func TestLeadSubmitAndList(t *testing.T) {
	env := setupRouter(t, envOptions{})

	resp := env.postJSON(t, "/api/leads", map[string]interface{}{
		"full_name":         "  Jane Doe ",
		"email":             "Jane@Example.com",
		"company_name":      "Acme Fleet",
		"primary_interests": []string{"Depot charging", "Energy management"},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created struct {
		Success bool  `json:"success"`
		ID      int64 `json:"id"`
	}
	decodeJSON(t, resp, &created)
	require.True(t, created.Success)
	require.NotZero(t, created.ID)

	items := listLeads(t, env)
	require.Len(t, items, 1)
	require.Equal(t, created.ID, items[0].ID)
	require.Equal(t, "Jane Doe", items[0].FullName)
	require.Equal(t, "jane@example.com", items[0].Email)
	require.NotNil(t, items[0].CompanyName)
	require.Equal(t, "Acme Fleet", *items[0].CompanyName)
	require.NotNil(t, items[0].PrimaryInterests)
	require.Equal(t, "Depot charging, Energy management", *items[0].PrimaryInterests)
	require.NotEmpty(t, items[0].CreatedAt)
}

func TestLeadSubmitNameAndEmailOnly(t *testing.T) {
	env := setupRouter(t, envOptions{})
	resp := env.postJSON(t, "/api/leads", map[string]string{"full_name": "Sam", "email": "sam@example.com"})
	require.Equal(t, http.StatusCreated, resp.Code)

	items := listLeads(t, env)
	require.Len(t, items, 1)
	require.Nil(t, items[0].CompanyName)
	require.Nil(t, items[0].PrimaryInterests)
}

func TestLeadSubmitAcceptsFormPost(t *testing.T) {
	env := setupRouter(t, envOptions{})
	form := url.Values{
		"full_name":         {"Form User"},
		"email":             {"form@example.com"},
		"primary_interests": {"Fleet electrification", "Solar"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := env.do(t, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	items := listLeads(t, env)
	require.Len(t, items, 1)
	require.Equal(t, "Fleet electrification, Solar", *items[0].PrimaryInterests)
}

func TestLeadSubmitRequiresEmail(t *testing.T) {
	env := setupRouter(t, envOptions{})
	resp := env.postJSON(t, "/api/leads", map[string]string{"full_name": "No Email"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	var body struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp, &body)
	require.Equal(t, "full_name and email are required", body.Error)
	require.Empty(t, listLeads(t, env))
}

func TestLeadSubmitMalformedBodyIsMissingFields(t *testing.T) {
	env := setupRouter(t, envOptions{})
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp := env.do(t, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "full_name and email are required")
}

func TestLeadSubmitRejectsOverlongField(t *testing.T) {
	env := setupRouter(t, envOptions{})
	resp := env.postJSON(t, "/api/leads", map[string]string{
		"full_name":    "Long Zip",
		"email":        "zip@example.com",
		"location_zip": strings.Repeat("9", 21),
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "location_zip must be at most 20 characters")
	require.Empty(t, listLeads(t, env))
}

func TestLeadSubmitLimitsApplyAfterTrim(t *testing.T) {
	env := setupRouter(t, envOptions{})
	name := strings.Repeat("a", 119)
	resp := env.postJSON(t, "/api/leads", map[string]string{
		"full_name": "  " + name,
		"email":     "trim@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	items := listLeads(t, env)
	require.Len(t, items, 1)
	require.Equal(t, name, items[0].FullName)
}

func TestLeadSubmitAcceptsNumericFields(t *testing.T) {
	env := setupRouter(t, envOptions{})
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(
		`{"full_name":"Jane Doe","email":"jane@example.com","fleet_size":50,"location_zip":94107}`))
	req.Header.Set("Content-Type", "application/json")
	resp := env.do(t, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	items := listLeads(t, env)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].FleetSize)
	require.Equal(t, "50", *items[0].FleetSize)
	require.NotNil(t, items[0].LocationZip)
	require.Equal(t, "94107", *items[0].LocationZip)
}

func TestLeadSubmitWrongTypeNamesField(t *testing.T) {
	env := setupRouter(t, envOptions{})
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(
		`{"full_name":"Jane Doe","email":"jane@example.com","company_name":42}`))
	req.Header.Set("Content-Type", "application/json")
	resp := env.do(t, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	var body struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp, &body)
	require.Equal(t, "company_name has the wrong type (got number)", body.Error)
	require.Empty(t, listLeads(t, env))
}

func TestLeadSubmitEmptyBodyIsMissingFields(t *testing.T) {
	env := setupRouter(t, envOptions{})
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	resp := env.do(t, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "full_name and email are required")
}

func TestLeadListAdminToken(t *testing.T) {
	env := setupRouter(t, envOptions{adminToken: "s3cret"})
	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set("X-Admin-Token", "s3cret")
	resp = env.do(t, req)
	require.Equal(t, http.StatusOK, resp.Code)

	// Submitting stays public.
	resp = env.postJSON(t, "/api/leads", map[string]string{"full_name": "Pub", "email": "pub@example.com"})
	require.Equal(t, http.StatusCreated, resp.Code)
}

func TestLeadExportCSV(t *testing.T) {
	env := setupRouter(t, envOptions{})
	for _, email := range []string{"a@example.com", "b@example.com"} {
		resp := env.postJSON(t, "/api/leads", map[string]string{"full_name": "Lead", "email": email})
		require.Equal(t, http.StatusCreated, resp.Code)
	}
	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/leads/export", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Header().Get("Content-Disposition"), "attachment;")
	require.Contains(t, resp.Header().Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "id", records[0][0])
	require.Equal(t, "b@example.com", records[1][2])
}

func TestPublicPostsAreRateLimited(t *testing.T) {
	env := setupRouter(t, envOptions{rateLimit: rateLimitForTest()})
	body := map[string]string{"full_name": "Spam", "email": "spam@example.com"}
	require.Equal(t, http.StatusCreated, env.postJSON(t, "/api/leads", body).Code)
	require.Equal(t, http.StatusCreated, env.postJSON(t, "/api/leads", body).Code)
	require.Equal(t, http.StatusTooManyRequests, env.postJSON(t, "/api/leads", body).Code)

	// Reads are not limited.
	require.Len(t, listLeads(t, env), 2)
}

func TestLeadSubmitBodyTooLarge(t *testing.T) {
	env := setupRouter(t, envOptions{bodyLimit: 256})
	resp := env.postJSON(t, "/api/leads", map[string]string{
		"full_name": "Big",
		"email":     "big@example.com",
		"comments":  strings.Repeat("c", 512),
	})
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	require.Empty(t, listLeads(t, env))
}
