package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/appstate"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/users"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/middleware"
)

// UserHandler serves the signed-in user's profile and application state.
// Every route expects middleware.AuthMiddleware to run first.
type UserHandler struct {
	usersSvc *users.Service
	state    *appstate.Service
}

func NewUserHandler(u *users.Service, st *appstate.Service) *UserHandler {
	return &UserHandler{usersSvc: u, state: st}
}

type userView struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Image       string               `json:"image"`
	Preferences appstate.Preferences `json:"preferences"`
}

type updateUserRequest struct {
	Preferences *appstate.PreferencesPatch `json:"preferences"`
}

type updateSettingsRequest struct {
	Notifications *appstate.NotificationPatch `json:"notifications"`
	Display       *appstate.DisplayPatch      `json:"display"`
}

type favoriteRequest struct {
	Type string `json:"type" binding:"required"`
	ID   string `json:"id" binding:"required"`
}

// RegisterRoutes mounts /user under rg (normally the authenticated /api group).
func (h *UserHandler) RegisterRoutes(rg gin.IRouter) {
	u := rg.Group("/user")
	u.GET("", h.GetUser)
	u.PATCH("", h.UpdateUser)
	u.GET("/state", h.GetState)
	u.PATCH("/settings", h.UpdateSettings)
	u.POST("/favorites", h.AddFavorite)
	u.DELETE("/favorites", h.ClearFavorites)
	u.DELETE("/favorites/:type/:id", h.RemoveFavorite)
}

func (h *UserHandler) view(c *gin.Context, st *appstate.UserState) {
	u, err := h.usersSvc.GetByID(c.Request.Context(), st.UserID)
	if err != nil {
		logger.Errorf("user lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, userView{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Image:       u.Image,
		Preferences: st.Preferences,
	})
}

// writeStateError maps appstate errors to responses.
func writeStateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appstate.ErrUnknownFavoriteKind), errors.Is(err, appstate.ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("user state update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	st, err := h.state.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeStateError(c, err)
		return
	}
	h.view(c, st)
}

// UpdateUser merges a partial preferences object; omitted fields keep their values.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	var (
		st  *appstate.UserState
		err error
	)
	if req.Preferences != nil {
		st, err = h.state.UpdatePreferences(ctx, userID, *req.Preferences)
	} else {
		st, err = h.state.Get(ctx, userID)
	}
	if err != nil {
		writeStateError(c, err)
		return
	}
	h.view(c, st)
}

func (h *UserHandler) GetState(c *gin.Context) {
	st, err := h.state.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.state.UpdateSettings(c.Request.Context(), middleware.UserID(c), req.Notifications, req.Display)
	if err != nil {
		writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *UserHandler) AddFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.state.AddFavorite(c.Request.Context(), middleware.UserID(c), req.Type, req.ID)
	if err != nil {
		writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, st.Favorites)
}

func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	st, err := h.state.RemoveFavorite(c.Request.Context(), middleware.UserID(c), c.Param("type"), c.Param("id"))
	if err != nil {
		writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, st.Favorites)
}

func (h *UserHandler) ClearFavorites(c *gin.Context) {
	st, err := h.state.ClearFavorites(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, st.Favorites)
}
