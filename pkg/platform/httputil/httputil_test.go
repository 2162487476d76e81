package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "attestgate/pkg/domain-errors"
)

// =============================================================================
// HTTP Utility Test Suite
// =============================================================================
// The status mapping and internal-error redaction are a contract with every
// handler; pin them here.

type HTTPUtilSuite struct {
	suite.Suite
}

func TestHTTPUtilSuite(t *testing.T) {
	suite.Run(t, new(HTTPUtilSuite))
}

func (s *HTTPUtilSuite) TestWriteError() {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input maps to 400", dErrors.New(dErrors.CodeInvalidInput, "cannot be 0"), http.StatusBadRequest},
		{"unauthorized maps to 403", dErrors.New(dErrors.CodeUnauthorized, "admin only"), http.StatusForbidden},
		{"not found maps to 404", dErrors.New(dErrors.CodeNotFound, "missing"), http.StatusNotFound},
		{"conflict maps to 409", dErrors.New(dErrors.CodeConflict, "already paused"), http.StatusConflict},
		{"failed dependency maps to 424", dErrors.New(dErrors.CodeFailedDependency, "price <= 0"), http.StatusFailedDependency},
		{"internal maps to 500", dErrors.New(dErrors.CodeInternal, "secret detail"), http.StatusInternalServerError},
		{"uncoded error maps to 500", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)
			s.Equal(tc.wantStatus, rec.Code)
			s.Equal("application/json", rec.Header().Get("Content-Type"))
		})
	}

	s.Run("domain message survives to the body", func() {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.New(dErrors.CodeConflict, "treasury already set to this address"))

		var body map[string]string
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal("treasury already set to this address", body["error_description"])
	})

	s.Run("internal details are redacted", func() {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.Wrap(errors.New("dial tcp: refused"), dErrors.CodeInternal, "store down"))

		var body map[string]string
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Empty(body["error_description"])
	})
}

type probeRequest struct {
	Count int `json:"count"`
}

func (r probeRequest) Validate() error {
	if r.Count < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "count must be non-negative")
	}
	return nil
}

func (s *HTTPUtilSuite) TestDecodeAndPrepare() {
	s.Run("decodes and validates", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"count": 3}`))

		got, ok := DecodeAndPrepare[probeRequest](rec, req, nil, req.Context(), "")
		s.True(ok)
		s.Equal(3, got.Count)
	})

	s.Run("malformed body writes 400", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{`))

		_, ok := DecodeAndPrepare[probeRequest](rec, req, nil, req.Context(), "")
		s.False(ok)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("validation failure writes the domain error", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"count": -1}`))

		_, ok := DecodeAndPrepare[probeRequest](rec, req, nil, req.Context(), "")
		s.False(ok)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "count must be non-negative")
	})
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
