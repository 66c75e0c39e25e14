package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherblog/internal/model"
	"gopherblog/internal/repository"
	"gopherblog/internal/transport/http/middleware"
	"gopherblog/internal/transport/http/response"
)

const recentActivityLimit = 50

type ActivityHandler struct {
	activityRepo *repository.ActivityRepository
}

func NewActivityHandler(activityRepo *repository.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{activityRepo: activityRepo}
}

// ListRecent is admin-only; the activity log exposes actor ids across all
// accounts.
func (h *ActivityHandler) ListRecent(c *gin.Context) {
	_, role, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "user not found in token")
		return
	}
	if role != model.RoleAdmin {
		response.Error(c, http.StatusForbidden, "admin access required")
		return
	}

	activities, err := h.activityRepo.ListRecent(recentActivityLimit)
	if err != nil {
		serviceError(c, err, "failed to fetch activities")
		return
	}

	response.OK(c, http.StatusOK, "", gin.H{"activities": activities})
}
