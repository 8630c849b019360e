// README: Profile handlers for the signed-in user.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/http/middleware"
	"carrental/internal/modules/profile"
)

type ProfileHandler struct {
	profiles *profile.Service
}

func NewProfileHandler(svc *profile.Service) *ProfileHandler {
	return &ProfileHandler{profiles: svc}
}

type profileResponse struct {
	*profile.Profile
	IsAdmin bool `json:"is_admin"`
}

func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context(), middleware.CallerUID(c), middleware.CallerEmail(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	admin, err := middleware.IsAdmin(c, h.profiles)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, profileResponse{Profile: p, IsAdmin: admin})
}

type updateProfileReq struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.profiles.Update(c.Request.Context(), profile.UpdateCommand{
		UserID:   middleware.CallerUID(c),
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    middleware.CallerEmail(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}
