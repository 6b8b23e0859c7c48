package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// ProductListOptions Tests
// =============================================================================

func TestProductListOptions_QueryString_Nil(t *testing.T) {
	var opts *ProductListOptions
	if qs := opts.QueryString(); qs != "" {
		t.Errorf("expected empty string for nil opts, got %q", qs)
	}
}

func TestProductListOptions_QueryString_Empty(t *testing.T) {
	opts := &ProductListOptions{}
	if qs := opts.QueryString(); qs != "" {
		t.Errorf("expected empty string for zero-value opts, got %q", qs)
	}
}

func TestProductListOptions_QueryString_AllFields(t *testing.T) {
	minPrice, maxPrice := 5.5, 100.0
	opts := &ProductListOptions{
		Page:       2,
		PageSize:   50,
		CategoryID: 3,
		SellerID:   7,
		Search:     "red kettle",
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
		InStock:    true,
	}
	qs := opts.QueryString()
	if !strings.HasPrefix(qs, "?") {
		t.Fatalf("expected query string to start with ?, got %q", qs)
	}
	for _, expected := range []string{"page=2", "page_size=50", "category_id=3", "seller_id=7", "search=red+kettle", "min_price=5.5", "max_price=100", "in_stock=true"} {
		if !strings.Contains(qs, expected) {
			t.Errorf("query string %q missing %q", qs, expected)
		}
	}
}

// =============================================================================
// APIError Tests
// =============================================================================

func TestAPIError_Hints(t *testing.T) {
	tests := []struct {
		status int
		hint   string
	}{
		{401, "bazaarctl login"},
		{403, "Permission denied"},
		{404, "not found"},
		{409, "already exists"},
		{429, "Rate limit"},
	}
	for _, tt := range tests {
		err := &APIError{StatusCode: tt.status, ErrorCode: "Error", Message: "msg"}
		if !strings.Contains(err.Error(), tt.hint) {
			t.Errorf("status %d: expected hint containing %q, got %q", tt.status, tt.hint, err.Error())
		}
	}
}

func TestAPIError_NoCode(t *testing.T) {
	err := &APIError{StatusCode: 500, Message: "boom"}
	if err.Error() != "HTTP 500: boom" {
		t.Errorf("unexpected error string %q", err.Error())
	}
}

// =============================================================================
// HTTP Tests
// =============================================================================

func TestLogin_SendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/token" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("expected form content type, got %q", ct)
		}
		if r.FormValue("username") != "ann@example.com" || r.FormValue("password") != "pw123456" {
			t.Errorf("unexpected form %v", r.Form)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "acc", "refresh_token": "ref", "token_type": "bearer",
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Login(context.Background(), "ann@example.com", "pw123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken != "acc" || resp.RefreshToken != "ref" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestRefresh_ChainsBothExchanges(t *testing.T) {
	var calls []string
	mux := http.NewServeMux()
	mux.HandleFunc("/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		json.NewDecoder(r.Body).Decode(&req)
		calls = append(calls, "refresh:"+req.RefreshToken)
		json.NewEncoder(w).Encode(map[string]string{"refresh_token": "ref-2", "token_type": "bearer"})
	})
	mux.HandleFunc("/users/access-token", func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		json.NewDecoder(r.Body).Decode(&req)
		calls = append(calls, "access:"+req.RefreshToken)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "acc-2", "token_type": "bearer"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := New(srv.URL).Refresh(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken != "acc-2" || resp.RefreshToken != "ref-2" {
		t.Errorf("unexpected tokens %+v", resp)
	}
	if strings.Join(calls, ",") != "refresh:ref-1,access:ref-2" {
		t.Errorf("unexpected call order %v", calls)
	}
}

func TestMe_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer acc" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": "Unauthorized", "code": 401, "message": "Could not validate credentials",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 4, "email": "ann@example.com", "role": "buyer", "is_active": true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Me(context.Background())
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Could not validate credentials" {
		t.Fatalf("expected 401 APIError, got %v", err)
	}

	c.Token = "acc"
	account, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID != 4 || account.Role != "buyer" {
		t.Errorf("unexpected account %+v", account)
	}
}

func TestHandleResponse_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListCategories(context.Background())
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "upstream down" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	if c := New("http://localhost:8000/"); c.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected base URL %q", c.BaseURL)
	}
}
