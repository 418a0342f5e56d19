package endpoints

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusEndpoint(t *testing.T) {
	testCases := []struct {
		description    string
		response       string
		expectedStatus int
		expectedBody   string
	}{
		{description: "no content", response: "", expectedStatus: http.StatusNoContent},
		{description: "configured body", response: "ready", expectedStatus: http.StatusOK, expectedBody: "ready"},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			handler := NewStatusEndpoint(test.response)
			w := httptest.NewRecorder()

			handler(w, httptest.NewRequest("GET", "/status", nil), nil)

			assert.Equal(t, test.expectedStatus, w.Code)
			assert.Equal(t, test.expectedBody, w.Body.String())
		})
	}
}
