// internal/utils/pagination_test.go
package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsForQuery(query string) PaginationParams {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	p := paramsForQuery("")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, "created_at", p.Sort)
	assert.Equal(t, "desc", p.Order)
}

func TestGetPaginationParamsClamping(t *testing.T) {
	p := paramsForQuery("page=0&limit=1000&order=sideways")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, "desc", p.Order)

	p = paramsForQuery("page=3&limit=50&order=asc&sort=price")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, "asc", p.Order)
	assert.Equal(t, "price", p.Sort)
}

func TestCreatePaginationResult(t *testing.T) {
	params := PaginationParams{Page: 2, Limit: 10}
	result := CreatePaginationResult([]string{"a"}, 25, params)

	assert.Equal(t, 2, result.Page)
	assert.Equal(t, int64(25), result.Total)
	assert.Equal(t, 3, result.TotalPages)
}
