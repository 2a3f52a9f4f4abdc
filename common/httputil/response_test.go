package httputil_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mentorship-service/common/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponses(t *testing.T) {
	t.Run("Error_OmitsEmptyReason", func(t *testing.T) {
		w := httptest.NewRecorder()
		httputil.RespondWithError(w, http.StatusNotFound, "Batch not found")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"Batch not found"}`, w.Body.String())
	})

	t.Run("Reason", func(t *testing.T) {
		w := httptest.NewRecorder()
		httputil.RespondWithReason(w, http.StatusForbidden, "verify first", "verify_email")

		var body httputil.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "verify_email", body.Reason)
	})

	t.Run("FieldErrors", func(t *testing.T) {
		w := httptest.NewRecorder()
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "validation failed", map[string]string{"email": "taken"})

		var body httputil.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "taken", body.Fields["email"])
	})

	t.Run("Attachment", func(t *testing.T) {
		w := httptest.NewRecorder()
		httputil.RespondWithAttachment(w, "application/pdf", "Batch_A_Report.pdf", []byte("%PDF"))

		assert.Equal(t, `attachment; filename="Batch_A_Report.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF", w.Body.String())
	})
}
