package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondProblem(rec, http.StatusConflict, "no_changes", "no new changes")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no_changes", body["code"])
	assert.Equal(t, "Conflict", body["title"])
	assert.Equal(t, float64(http.StatusConflict), body["status"])
	assert.Equal(t, "no new changes", body["detail"])
}

func TestRespondJSONKeepsHTMLCharacters(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, json.RawMessage(`{"text":"a<b & c>d"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"text":"a<b & c>d"}`, strings.TrimSpace(rec.Body.String()))
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"draft"}`, want: "draft"},
		{name: "empty", body: ``, wantErr: "request body is required"},
		{name: "broken", body: `{"name":`, wantErr: "invalid JSON"},
		{name: "trailing value", body: `{"name":"a"} {"name":"b"}`, wantErr: "unexpected data"},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, wantErr: ErrBodyTooLarge.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got payload
			err := ParseJSON(httptest.NewRecorder(), req, &got)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestUserIDContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetUserID(req))
	assert.Equal(t, "user-1", GetUserID(WithUserID(req, "user-1")))
}
