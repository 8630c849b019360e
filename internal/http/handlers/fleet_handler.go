// README: Car catalogue handlers; public search and detail, admin inventory management.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carrental/internal/modules/fleet"
	"carrental/internal/modules/review"
)

// PriceWindow is the price range applied when a search omits its bounds.
type PriceWindow struct {
	Min float64
	Max float64
}

type FleetHandler struct {
	fleet   *fleet.Service
	reviews *review.Service
	window  PriceWindow
}

func NewFleetHandler(fleetSvc *fleet.Service, reviewSvc *review.Service, window PriceWindow) *FleetHandler {
	return &FleetHandler{fleet: fleetSvc, reviews: reviewSvc, window: window}
}

// Search answers GET /api/cars?q=&category=&fuel_type=&transmission=&seating=&min_price=&max_price=
func (h *FleetHandler) Search(c *gin.Context) {
	criteria, err := h.criteria(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.fleet.Search(c.Request.Context(), criteria)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (h *FleetHandler) criteria(c *gin.Context) (fleet.FilterCriteria, error) {
	minPrice, err := floatQuery(c, "min_price", h.window.Min)
	if err != nil {
		return fleet.FilterCriteria{}, err
	}
	maxPrice, err := floatQuery(c, "max_price", h.window.Max)
	if err != nil {
		return fleet.FilterCriteria{}, err
	}
	return fleet.FilterCriteria{
		Query:        c.Query("q"),
		Category:     c.DefaultQuery("category", fleet.All),
		FuelType:     c.DefaultQuery("fuel_type", fleet.All),
		Transmission: c.DefaultQuery("transmission", fleet.All),
		Seating:      c.DefaultQuery("seating", fleet.All),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
	}, nil
}

func floatQuery(c *gin.Context, key string, fallback float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

type carDetail struct {
	*fleet.Vehicle
	Reviews []review.Review `json:"reviews"`
}

func (h *FleetHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	v, err := h.fleet.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	reviews, err := h.reviews.ListByCar(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, carDetail{Vehicle: v, Reviews: reviews})
}

func (h *FleetHandler) ListAll(c *gin.Context) {
	cars, err := h.fleet.ListAll(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if cars == nil {
		cars = []fleet.Vehicle{}
	}
	writeJSON(c, http.StatusOK, gin.H{"cars": cars})
}

// featureList accepts either a JSON array or the comma separated string the
// admin form submits.
type featureList []string

func (f *featureList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = fleet.ParseFeatures(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*f = items
	return nil
}

type carRequest struct {
	fleet.VehicleInput
	Features featureList `json:"features"`
}

func (r carRequest) input() fleet.VehicleInput {
	in := r.VehicleInput
	in.Features = r.Features
	return in
}

func (h *FleetHandler) Create(c *gin.Context) {
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.fleet.Create(c.Request.Context(), req.input())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, v)
}

func (h *FleetHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.fleet.Update(c.Request.Context(), id, req.input())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *FleetHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.fleet.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
