package server

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func filterFor(t *testing.T, query string) areaFilter {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/offers?"+query, nil)
	return parseAreaFilter(c)
}

func TestParseAreaFilter(t *testing.T) {
	f := filterFor(t, "max-price=9000&rooms=1,2,3&lat=29,25&lon=39,41")

	assert.Equal(t, float64(9000), f.MaxPrice)
	assert.Equal(t, []int{1, 2, 3}, f.Rooms)
	// Ranges come back ordered regardless of the query order.
	assert.Equal(t, [2]float64{25, 29}, f.Lat)
	assert.Equal(t, [2]float64{39, 41}, f.Lon)
}

func TestParseAreaFilter_IgnoresGarbage(t *testing.T) {
	f := filterFor(t, "max-price=cheap&rooms=x,0,2&lat=25&lon=a,b")

	assert.Zero(t, f.MaxPrice)
	assert.Equal(t, []int{2}, f.Rooms)
	assert.Equal(t, [2]float64{}, f.Lat)
	assert.Equal(t, [2]float64{}, f.Lon)
}
