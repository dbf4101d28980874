package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListParams is the limit/offset window for room and message listings.
type ListParams struct {
	Limit  int
	Offset int
}

// GetListParams reads the limit/offset query parameters, clamping the limit
// to the service maximum. Listings page by offset because both room and
// message lists are re-sorted by activity between requests.
func GetListParams(c echo.Context) ListParams {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	return ListParams{
		Limit:  limit,
		Offset: offset,
	}
}
