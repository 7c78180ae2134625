package errs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNewfCapturesCaller(t *testing.T) {
	err := Newf(InvalidArgument, "Title is required")

	if err.Message != "Title is required" {
		t.Errorf("Message = %q, want %q", err.Message, "Title is required")
	}
	if !strings.Contains(err.FileName, "errs_test.go") {
		t.Errorf("FileName = %q, want caller file", err.FileName)
	}
	if err.FuncName == "" {
		t.Error("FuncName is empty")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code ErrCode
		want int
	}{
		{InvalidArgument, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{Internal, http.StatusInternalServerError},
		{InternalOnlyLog, http.StatusInternalServerError},
		{ErrCode(99), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := Newf(tt.code, "x").HTTPStatus(); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestEncodeWireShape(t *testing.T) {
	data, contentType, err := New(NotFound, errors.New("Todo not found")).Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(contentType, "application/json") {
		t.Errorf("contentType = %q", contentType)
	}

	var body map[string]string
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body) != 1 || body["message"] != "Todo not found" {
		t.Errorf("body = %v, want only message field", body)
	}
}
