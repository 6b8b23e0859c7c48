package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesDomainAndCode(t *testing.T) {
	custom := ErrProductNotFound.WithMessagef("Product %d not found", 12)
	if !Is(custom, ErrProductNotFound) {
		t.Fatal("customised copy should match its sentinel")
	}
	if Is(custom, ErrCategoryNotFound) {
		t.Fatal("same code in another domain must not match")
	}
	if ErrProductNotFound.Message == custom.Message {
		t.Fatal("WithMessagef modified the sentinel")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := ErrDatabaseQuery.WithCause(sql.ErrConnDone)
	if !Is(err, sql.ErrConnDone) {
		t.Fatal("cause should be reachable through errors.Is")
	}

	wrapped := fmt.Errorf("listing products: %w", err)
	if GetHTTPStatus(wrapped) != http.StatusInternalServerError {
		t.Fatalf("GetHTTPStatus = %d", GetHTTPStatus(wrapped))
	}
	if GetDomain(wrapped) != DomainDatabase || GetCode(wrapped) != "query_failed" {
		t.Fatalf("unexpected domain/code %s/%s", GetDomain(wrapped), GetCode(wrapped))
	}
}

func TestPlainErrorsAreInternal(t *testing.T) {
	plain := fmt.Errorf("no such table: products")
	if GetHTTPStatus(plain) != http.StatusInternalServerError || GetCode(plain) != "" {
		t.Fatal("plain errors should map to 500 without a code")
	}

	resp := NewResponse(plain)
	if resp.Error != "internal.internal_error" {
		t.Fatalf("unexpected error field %q", resp.Error)
	}
	if resp.Message != "Internal server error" {
		t.Fatalf("driver message leaked: %q", resp.Message)
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse(ErrEmailAlreadyExists)
	if resp.Error != "user.email_exists" {
		t.Fatalf("Error = %q", resp.Error)
	}
	if resp.Message != ErrEmailAlreadyExists.Message {
		t.Fatalf("Message = %q", resp.Message)
	}
}
