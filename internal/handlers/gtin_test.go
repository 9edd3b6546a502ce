package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/catalog-import/internal/types"
)

func TestValidateGTIN(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/gtin/validate", ValidateGTIN)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		want       []GTINResult
	}{
		{
			name:       "mixed codes keep request order",
			body:       `{"codes": ["4006381333931", "4006381333932", "abc"]}`,
			wantStatus: http.StatusOK,
			want: []GTINResult{
				{Code: "4006381333931", IdentifierValidationResult: types.IdentifierValidationResult{Valid: true, Normalized: "4006381333931", Kind: types.KindGTIN13}},
				{Code: "4006381333932", IdentifierValidationResult: types.IdentifierValidationResult{Reason: "invalid check digit: expected 1, got 2"}},
				{Code: "abc", IdentifierValidationResult: types.IdentifierValidationResult{Reason: "identifier contains non-digit characters"}},
			},
		},
		{
			name:       "empty list",
			body:       `{"codes": []}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"codes":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/gtin/validate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.want == nil {
				return
			}
			var got ValidateGTINResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got.Results)
		})
	}
}
