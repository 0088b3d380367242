package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"speakersite/internal/booking"
)

func (h *Handler) submitBooking(c *gin.Context) {
	var req booking.Inquiry
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "api.submitBooking", "invalid request body")
		return
	}
	created, err := h.bookings.Submit(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"inquiryId": created.ID,
	})
}

func (h *Handler) listBookings(c *gin.Context) {
	items, err := h.bookings.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateBookingStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.badRequest(c, "api.updateBookingStatus", "invalid inquiry id")
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "api.updateBookingStatus", "invalid request body")
		return
	}
	updated, err := h.bookings.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
