package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/appstate"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/config"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/models"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/tokens"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/users"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	*authFixture
	token string
	user  *models.User
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	usersSvc := users.NewService(users.NewMemoryUserRepository())
	u, err := usersSvc.Register(context.Background(), "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	token, err := tokens.GenerateAccessToken(cfg, u, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api", middleware.AuthMiddleware(tokens.NewVerifier(testSecret)))
	NewUserHandler(usersSvc, appstate.NewService(appstate.NewMemoryRepository())).RegisterRoutes(api)

	return &userFixture{authFixture: &authFixture{cfg: cfg, router: r, users: usersSvc}, token: token, user: u}
}

func TestUser_RequiresAuth(t *testing.T) {
	f := newUserFixture(t)
	assert.Equal(t, http.StatusUnauthorized, f.do("GET", "/api/user", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do("GET", "/api/user/state", "", "bogus").Code)
}

func TestUser_GetReturnsProfileWithDefaultPreferences(t *testing.T) {
	f := newUserFixture(t)
	w := f.do("GET", "/api/user", "", f.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[userView](t, w)
	assert.Equal(t, f.user.ID, got.ID)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, []string{"technology", "business"}, got.Preferences.NewsCategories)
	assert.Equal(t, "us", got.Preferences.Country)
}

func TestUser_PatchMergesPreferences(t *testing.T) {
	f := newUserFixture(t)
	w := f.do("PATCH", "/api/user", `{"preferences":{"movieGenres":["horror"],"country":"de"}}`, f.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[userView](t, w)
	assert.Equal(t, []string{"horror"}, got.Preferences.MovieGenres)
	assert.Equal(t, "de", got.Preferences.Country)
	assert.Equal(t, []string{"technology", "business"}, got.Preferences.NewsCategories)

	// no preferences key leaves everything as it was
	w = f.do("PATCH", "/api/user", `{}`, f.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "de", decode[userView](t, w).Preferences.Country)
}

func TestUser_UnknownUserIs404(t *testing.T) {
	f := newUserFixture(t)
	token, err := tokens.GenerateAccessToken(f.cfg, &models.User{ID: "ghost"}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, f.do("GET", "/api/user", "", token).Code)
}

func TestUser_Settings(t *testing.T) {
	f := newUserFixture(t)
	w := f.do("PATCH", "/api/user/settings", `{"notifications":{"emailDigest":true},"display":{"itemsPerPage":50,"compactView":true}}`, f.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decode[appstate.UserState](t, w)
	assert.True(t, st.Notifications.EmailDigest)
	assert.True(t, st.Notifications.PushNotifications)
	assert.Equal(t, 50, st.Display.ItemsPerPage)
	assert.True(t, st.Display.CompactView)

	w = f.do("PATCH", "/api/user/settings", `{"display":{"itemsPerPage":0}}`, f.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do("GET", "/api/user/state", "", f.token)
	require.Equal(t, http.StatusOK, w.Code)
	st = decode[appstate.UserState](t, w)
	assert.Equal(t, f.user.ID, st.UserID)
	assert.Equal(t, 50, st.Display.ItemsPerPage)
}

func TestUser_Favorites(t *testing.T) {
	f := newUserFixture(t)

	for _, body := range []string{
		`{"type":"news","id":"news-a"}`,
		`{"type":"news","id":"news-a"}`,
		`{"type":"news","id":"news-b"}`,
		`{"type":"movies","id":"603"}`,
	} {
		require.Equal(t, http.StatusOK, f.do("POST", "/api/user/favorites", body, f.token).Code)
	}

	w := f.do("DELETE", "/api/user/favorites/news/news-a", "", f.token)
	require.Equal(t, http.StatusOK, w.Code)
	fav := decode[appstate.Favorites](t, w)
	assert.Equal(t, []string{"news-b"}, fav.News)
	assert.Equal(t, []string{"603"}, fav.Movies)

	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/api/user/favorites", `{"type":"podcasts","id":"x"}`, f.token).Code)
	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/api/user/favorites", `{"type":"news"}`, f.token).Code)
	assert.Equal(t, http.StatusBadRequest, f.do("DELETE", "/api/user/favorites/podcasts/x", "", f.token).Code)

	w = f.do("DELETE", "/api/user/favorites", "", f.token)
	require.Equal(t, http.StatusOK, w.Code)
	fav = decode[appstate.Favorites](t, w)
	assert.Empty(t, fav.News)
	assert.Empty(t, fav.Movies)
}
