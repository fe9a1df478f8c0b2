package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
)

type loginBody struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a","password":"b"}`))
	var body loginBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Username != "a" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsMissingFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := pkgerrors.As(err).Details().(map[string]string)
	if details["password"] != "is required" {
		t.Fatalf("expected password detail, got %v", details)
	}
}

func TestDecodeStrictness(t *testing.T) {
	payload := `{"username":"a","password":"b","extra":true}`
	var body loginBody
	if err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload)), &body); err == nil {
		t.Fatalf("strict decode should reject unknown fields")
	}
	if err := DecodeLooseJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload)), &body); err != nil {
		t.Fatalf("loose decode should accept unknown fields: %v", err)
	}
	if err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &body); err == nil {
		t.Fatalf("empty body should be rejected")
	}
}

func TestPathID(t *testing.T) {
	r := chi.NewRouter()
	var got string
	var gotErr error
	r.Get("/items/{productId}", func(w http.ResponseWriter, req *http.Request) {
		id, err := PathID(req, "productId")
		got, gotErr = id.String(), err
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/%20abc%20", nil))
	if gotErr != nil || got != "abc" {
		t.Fatalf("expected abc, got %q err=%v", got, gotErr)
	}
}

func TestSanitizeStringKeepsRunesWhole(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"  plain  ", 0, "plain"},
		{"abcdef", 3, "abc"},
		{"Zoë", 3, "Zo"},
		{"Zoë", 4, "Zoë"},
		{"日本語", 4, "日"},
		{"日本語", 2, ""},
	}
	for _, tc := range cases {
		got := SanitizeString(tc.in, tc.maxLen)
		if got != tc.want {
			t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("SanitizeString(%q, %d) produced invalid UTF-8", tc.in, tc.maxLen)
		}
	}
}
