package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	historydomain "github.com/flatwatch/flatwatch/internal/history/domain"
	ingestdomain "github.com/flatwatch/flatwatch/internal/ingest/domain"
	offerdomain "github.com/flatwatch/flatwatch/internal/offer/domain"
	subscriberdomain "github.com/flatwatch/flatwatch/internal/subscriber/domain"
	"go.uber.org/zap"
)

// offersLimit caps one map query; the response flags when it is hit.
const offersLimit = 5000

func (s *Server) putSnapshot(c *gin.Context) {
	var items []map[string]any
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed snapshot body"})
		return
	}

	result, err := s.ingestSvc.Ingest(c.Request.Context(), c.Param("name"), items, c.Param("ts"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"added":   len(result.Added),
		"removed": len(result.Removed),
		"updated": len(result.Updated),
		"same":    len(result.Same),
	})
}

func (s *Server) getOffers(c *gin.Context) {
	f := parseAreaFilter(c)
	offers, err := s.offerSvc.List(c.Request.Context(), offerdomain.ListFilter{
		Rooms:    f.Rooms,
		MaxPrice: f.MaxPrice,
		Lat:      f.Lat,
		Lon:      f.Lon,
		Limit:    offersLimit,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	var limitErr *string
	if len(offers) == offersLimit {
		msg := "hit results limit, try narrowing the area"
		limitErr = &msg
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers, "error": limitErr})
}

func (s *Server) getHistory(c *gin.Context) {
	f := parseAreaFilter(c)
	points, err := s.historySvc.Query(c.Request.Context(), historydomain.QueryFilter{
		Lat:      f.Lat,
		Lon:      f.Lon,
		MaxPrice: f.MaxPrice,
		Rooms:    f.Rooms,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) getUpdates(c *gin.Context) {
	logs, err := s.ingestSvc.Updates(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (s *Server) postSubscriber(c *gin.Context) {
	var req subscriberdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed subscriber body"})
		return
	}

	sub, err := s.subscriberSvc.Create(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// fail maps a service error onto an HTTP status. Validation problems are
// the caller's fault; everything else is a 500.
func (s *Server) fail(c *gin.Context, err error) {
	var validationErr *offerdomain.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, ingestdomain.ErrInvalidSource),
		errors.Is(err, ingestdomain.ErrInvalidSnapshotTime),
		errors.Is(err, offerdomain.ErrMissingLimit),
		errors.Is(err, offerdomain.ErrMissingRooms),
		errors.Is(err, subscriberdomain.ErrInvalidEmail),
		errors.Is(err, subscriberdomain.ErrInvalidRegion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
