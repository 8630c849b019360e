// README: Booking handlers; checkout, renter history, reviews and admin management.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/http/middleware"
	"carrental/internal/modules/booking"
	"carrental/internal/modules/review"
	"carrental/internal/types"
)

type BookingHandler struct {
	bookings *booking.Service
	reviews  *review.Service
	admins   middleware.AdminChecker
}

func NewBookingHandler(bookingSvc *booking.Service, reviewSvc *review.Service, admins middleware.AdminChecker) *BookingHandler {
	return &BookingHandler{bookings: bookingSvc, reviews: reviewSvc, admins: admins}
}

type createBookingReq struct {
	CarID         string                 `json:"car_id"`
	StartDate     booking.Date           `json:"start_date"`
	EndDate       booking.Date           `json:"end_date"`
	DistanceKm    float64                `json:"distance_km"`
	IncludeDriver bool                   `json:"include_driver"`
	AddOns        []string               `json:"add_ons"`
	PaymentMethod string                 `json:"payment_method"`
	Payment       booking.PaymentDetails `json:"payment"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	method, ok := booking.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		writeError(c, http.StatusBadRequest, "payment_method must be upi, debit or cash")
		return
	}
	carID := types.ID(req.CarID)
	if !carID.Valid() {
		writeError(c, http.StatusBadRequest, "invalid car_id")
		return
	}
	b, err := h.bookings.Create(c.Request.Context(), booking.CreateCommand{
		UserID:        middleware.CallerUID(c),
		CarID:         carID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		DistanceKm:    req.DistanceKm,
		IncludeDriver: req.IncludeDriver,
		AddOns:        req.AddOns,
		Payment:       method,
		Details:       req.Payment,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, b)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	out, err := h.bookings.ListByUser(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": out})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	admin, err := middleware.IsAdmin(c, h.admins)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), id, middleware.CallerUID(c), admin)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

type reviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *BookingHandler) Review(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.reviews.Submit(c.Request.Context(), review.SubmitCommand{
		UserID:    middleware.CallerUID(c),
		BookingID: id,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *BookingHandler) ListAll(c *gin.Context) {
	out, err := h.bookings.ListAll(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": out})
}

type statusReq struct {
	Status booking.Status `json:"status"`
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		writeError(c, http.StatusBadRequest, "status is required")
		return
	}
	b, err := h.bookings.UpdateStatus(c.Request.Context(), booking.UpdateStatusCommand{
		BookingID: id,
		Status:    req.Status,
		ActorID:   middleware.CallerUID(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Stats(c *gin.Context) {
	stats, err := h.bookings.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, stats)
}
