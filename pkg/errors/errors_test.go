package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized},
		{code: CodeForbidden, status: http.StatusForbidden},
		{code: CodeNotFound, status: http.StatusNotFound},
		{code: CodeStateConflict, status: http.StatusConflict, detailsOK: true},
		{code: CodeTransient, status: http.StatusBadGateway, retryable: true},
		{code: CodeStorageCorruption, status: http.StatusInternalServerError},
		{code: CodeInternal, status: http.StatusInternalServerError, retryable: true},
		{code: CodeDependency, status: http.StatusBadGateway, retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("code %s has no public message", tt.code)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	cause := stdErrors.New("dial tcp: refused")
	wrapped := Wrap(CodeTransient, cause, "network unavailable")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("expected wrapped error to unwrap to cause")
	}
	outer := fmt.Errorf("login: %w", wrapped)
	if CodeOf(outer) != CodeTransient {
		t.Fatalf("expected transient code through fmt wrapping, got %s", CodeOf(outer))
	}
	if !Is(outer, CodeTransient) || Is(outer, CodeValidation) {
		t.Fatalf("unexpected Is results")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(CodeValidation, "Email already registered")); got != "Email already registered" {
		t.Fatalf("expected verbatim message, got %q", got)
	}
	if got := UserMessage(New(CodeTransient, "")); got != MetadataFor(CodeTransient).PublicMessage {
		t.Fatalf("expected public message fallback, got %q", got)
	}
	if got := UserMessage(stdErrors.New("raw")); got != MetadataFor(CodeInternal).PublicMessage {
		t.Fatalf("untyped errors should not leak, got %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Fatalf("expected empty message for nil, got %q", got)
	}
}

func TestDumpCapturesPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42P01", TableName: "storefront_kv", Message: "relation does not exist"}
	err := Wrap(CodeInternal, pgErr, "write storage")

	d := Dump(err)
	if d.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", d.Code)
	}
	if d.PGCode != "42P01" || d.PGTable != "storefront_kv" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", d.Chain)
	}
	fields := d.Fields()
	if fields["pg_code"] != "42P01" {
		t.Fatalf("expected pg_code field, got %v", fields)
	}
}
