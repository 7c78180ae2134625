package web

import (
	"net/http/httptest"
	"strings"
	"testing"
)

type payload struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"title":"a","author":"b"}`, false},
		{"empty body", ``, true},
		{"malformed", `{"title":`, true},
		{"unknown field", `{"title":"a","extra":true}`, true},
		{"wrong type", `{"title":123}`, true},
		{"trailing data", `{"title":"a"}{"title":"b"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))

			var v payload
			err := Decode(r, &v)
			if (err != nil) != tt.wantErr {
				t.Errorf("Decode(%q) err = %v, wantErr = %t", tt.body, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeFillsFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"buy milk","author":"ann"}`))

	var v payload
	if err := Decode(r, &v); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Title != "buy milk" || v.Author != "ann" {
		t.Errorf("decoded %+v", v)
	}
}
