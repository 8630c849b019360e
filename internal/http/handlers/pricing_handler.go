// README: Quote handlers; add-on catalogue and price breakdown for a car.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/modules/pricing"
)

type PricingHandler struct {
	pricing *pricing.Service
}

func NewPricingHandler(svc *pricing.Service) *PricingHandler {
	return &PricingHandler{pricing: svc}
}

func (h *PricingHandler) AddOns(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"add_ons": h.pricing.Catalog()})
}

// Quote answers POST /api/cars/:id/quote. The duration unit defaults to days.
func (h *PricingHandler) Quote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var opts pricing.QuoteOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if opts.Unit == "" {
		opts.Unit = pricing.UnitDays
	}
	b, err := h.pricing.Quote(c.Request.Context(), id, opts)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}
