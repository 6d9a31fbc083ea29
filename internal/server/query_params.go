package server

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// areaFilter is the query-string form of the offers/history filter:
// max-price=9000&rooms=1,2,3&lat=25,29&lon=39,41
type areaFilter struct {
	MaxPrice float64
	Rooms    []int
	Lat      [2]float64
	Lon      [2]float64
}

func parseAreaFilter(c *gin.Context) areaFilter {
	var f areaFilter
	f.MaxPrice, _ = strconv.ParseFloat(c.Query("max-price"), 64)
	f.Rooms = parseIntList(c.Query("rooms"))
	f.Lat = parseRange(c.Query("lat"))
	f.Lon = parseRange(c.Query("lon"))
	return f
}

func parseIntList(raw string) []int {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n == 0 {
			continue
		}
		out = append(out, n)
	}
	return out
}

func parseRange(raw string) [2]float64 {
	var vals []float64
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			continue
		}
		vals = append(vals, v)
	}
	sort.Float64s(vals)
	if len(vals) < 2 {
		return [2]float64{}
	}
	return [2]float64{vals[0], vals[1]}
}
