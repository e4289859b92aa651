package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chickencore/order-service/internal/apperr"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{apperr.New(apperr.Validation, "bad input"), http.StatusBadRequest, "validation"},
		{apperr.New(apperr.NotFound, "missing"), http.StatusNotFound, "not_found"},
		{apperr.New(apperr.InsufficientStock, "no stock"), http.StatusConflict, "insufficient_stock"},
		{apperr.New(apperr.SchedulingRejected, "closed"), http.StatusConflict, "scheduling_rejected"},
		{apperr.New(apperr.InvalidTransition, "no"), http.StatusConflict, "invalid_transition"},
		{apperr.New(apperr.Conflict, "dup"), http.StatusConflict, "conflict"},
		{apperr.New(apperr.Unauthorized, "who"), http.StatusUnauthorized, "unauthorized"},
		{apperr.New(apperr.Forbidden, "denied"), http.StatusForbidden, "forbidden"},
	}

	for _, tc := range cases {
		w, body := respond(t, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.kind)
		assert.Equal(t, tc.kind, body["kind"])
	}
}

func TestErrorHidesInternals(t *testing.T) {
	w, body := respond(t, errors.New("pq: duplicate key value violates unique constraint"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, body["error"], "pq:")
}
