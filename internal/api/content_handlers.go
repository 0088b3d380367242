package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"speakersite/internal/apperr"
	"speakersite/internal/storage"
)

func (h *Handler) listTalks(c *gin.Context) {
	talks, err := h.store.ListTalks(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, talks)
}

func (h *Handler) getTalk(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.badRequest(c, "api.getTalk", "invalid talk id")
		return
	}
	talk, err := h.store.GetTalk(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = apperr.NotFound("api.getTalk", "talk not found")
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, talk)
}

func (h *Handler) listEvents(c *gin.Context) {
	events, err := h.store.ListEvents(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) listTestimonials(c *gin.Context) {
	testimonials, err := h.store.ListTestimonials(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, testimonials)
}
