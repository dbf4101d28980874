package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func paramsFor(t *testing.T, query string) ListParams {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/chats"+query, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return GetListParams(c)
}

func TestGetListParamsDefaults(t *testing.T) {
	p := paramsFor(t, "")
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestGetListParamsExplicit(t *testing.T) {
	p := paramsFor(t, "?limit=50&offset=10")
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 10, p.Offset)
}

func TestGetListParamsClamping(t *testing.T) {
	p := paramsFor(t, "?limit=500&offset=-3")
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = paramsFor(t, "?limit=0")
	assert.Equal(t, 20, p.Limit)

	p = paramsFor(t, "?limit=abc&offset=xyz")
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)
}
