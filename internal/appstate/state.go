package appstate

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrUnknownFavoriteKind is returned for a favorites bucket other than news, movies or social.
	ErrUnknownFavoriteKind = errors.New("unknown favorite kind")
	// ErrInvalidSettings is returned when a settings patch is out of range.
	ErrInvalidSettings = errors.New("invalid settings")
)

// MaxItemsPerPage bounds DisplaySettings.ItemsPerPage.
const MaxItemsPerPage = 100

type Preferences struct {
	NewsCategories []string `json:"newsCategories" bson:"newsCategories"`
	MovieGenres    []string `json:"movieGenres" bson:"movieGenres"`
	SocialHashtags []string `json:"socialHashtags" bson:"socialHashtags"`
	Country        string   `json:"country" bson:"country"`
}

// PreferencesPatch is a partial update. Nil fields are left untouched; an
// empty, non-nil slice clears the list.
type PreferencesPatch struct {
	NewsCategories []string `json:"newsCategories,omitempty"`
	MovieGenres    []string `json:"movieGenres,omitempty"`
	SocialHashtags []string `json:"socialHashtags,omitempty"`
	Country        *string  `json:"country,omitempty"`
}

type NotificationSettings struct {
	PushNotifications bool `json:"pushNotifications" bson:"pushNotifications"`
	EmailDigest       bool `json:"emailDigest" bson:"emailDigest"`
	TrendingAlerts    bool `json:"trendingAlerts" bson:"trendingAlerts"`
	FavoriteUpdates   bool `json:"favoriteUpdates" bson:"favoriteUpdates"`
}

type NotificationPatch struct {
	PushNotifications *bool `json:"pushNotifications,omitempty"`
	EmailDigest       *bool `json:"emailDigest,omitempty"`
	TrendingAlerts    *bool `json:"trendingAlerts,omitempty"`
	FavoriteUpdates   *bool `json:"favoriteUpdates,omitempty"`
}

type DisplaySettings struct {
	ItemsPerPage int  `json:"itemsPerPage" bson:"itemsPerPage"`
	AutoRefresh  bool `json:"autoRefresh" bson:"autoRefresh"`
	CompactView  bool `json:"compactView" bson:"compactView"`
	ShowImages   bool `json:"showImages" bson:"showImages"`
}

type DisplayPatch struct {
	ItemsPerPage *int  `json:"itemsPerPage,omitempty"`
	AutoRefresh  *bool `json:"autoRefresh,omitempty"`
	CompactView  *bool `json:"compactView,omitempty"`
	ShowImages   *bool `json:"showImages,omitempty"`
}

// Favorites holds saved content ids per bucket, in insertion order.
type Favorites struct {
	News   []string `json:"news" bson:"news"`
	Movies []string `json:"movies" bson:"movies"`
	Social []string `json:"social" bson:"social"`
}

// FavoriteKind names a favorites bucket.
type FavoriteKind string

const (
	FavoriteNews   FavoriteKind = "news"
	FavoriteMovies FavoriteKind = "movies"
	FavoriteSocial FavoriteKind = "social"
)

// ParseFavoriteKind validates a bucket name.
func ParseFavoriteKind(s string) (FavoriteKind, error) {
	switch k := FavoriteKind(s); k {
	case FavoriteNews, FavoriteMovies, FavoriteSocial:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFavoriteKind, s)
}

// UserState is everything the dashboard remembers for one user.
type UserState struct {
	UserID        string               `json:"userId" bson:"_id"`
	Preferences   Preferences          `json:"preferences" bson:"preferences"`
	Notifications NotificationSettings `json:"notificationSettings" bson:"notificationSettings"`
	Display       DisplaySettings      `json:"displaySettings" bson:"displaySettings"`
	Favorites     Favorites            `json:"favorites" bson:"favorites"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// DefaultState returns the state a user starts with.
func DefaultState(userID string) *UserState {
	return &UserState{
		UserID: userID,
		Preferences: Preferences{
			NewsCategories: []string{"technology", "business"},
			MovieGenres:    []string{"action", "drama"},
			SocialHashtags: []string{"tech", "programming"},
			Country:        "us",
		},
		Notifications: NotificationSettings{
			PushNotifications: true,
			EmailDigest:       false,
			TrendingAlerts:    true,
			FavoriteUpdates:   true,
		},
		Display: DisplaySettings{
			ItemsPerPage: 20,
			AutoRefresh:  true,
			CompactView:  false,
			ShowImages:   true,
		},
		Favorites: emptyFavorites(),
	}
}

func emptyFavorites() Favorites {
	return Favorites{News: []string{}, Movies: []string{}, Social: []string{}}
}

// Clone returns a deep copy.
func (s *UserState) Clone() *UserState {
	c := *s
	c.Preferences.NewsCategories = slices.Clone(s.Preferences.NewsCategories)
	c.Preferences.MovieGenres = slices.Clone(s.Preferences.MovieGenres)
	c.Preferences.SocialHashtags = slices.Clone(s.Preferences.SocialHashtags)
	c.Favorites = Favorites{
		News:   slices.Clone(s.Favorites.News),
		Movies: slices.Clone(s.Favorites.Movies),
		Social: slices.Clone(s.Favorites.Social),
	}
	return &c
}

func (s *UserState) ApplyPreferences(p PreferencesPatch) {
	if p.NewsCategories != nil {
		s.Preferences.NewsCategories = slices.Clone(p.NewsCategories)
	}
	if p.MovieGenres != nil {
		s.Preferences.MovieGenres = slices.Clone(p.MovieGenres)
	}
	if p.SocialHashtags != nil {
		s.Preferences.SocialHashtags = slices.Clone(p.SocialHashtags)
	}
	if p.Country != nil {
		s.Preferences.Country = *p.Country
	}
}

func (s *UserState) ApplyNotifications(p NotificationPatch) {
	setBool(&s.Notifications.PushNotifications, p.PushNotifications)
	setBool(&s.Notifications.EmailDigest, p.EmailDigest)
	setBool(&s.Notifications.TrendingAlerts, p.TrendingAlerts)
	setBool(&s.Notifications.FavoriteUpdates, p.FavoriteUpdates)
}

// ApplyDisplay merges p, rejecting an out-of-range page size.
func (s *UserState) ApplyDisplay(p DisplayPatch) error {
	if p.ItemsPerPage != nil {
		if n := *p.ItemsPerPage; n < 1 || n > MaxItemsPerPage {
			return fmt.Errorf("%w: itemsPerPage must be between 1 and %d", ErrInvalidSettings, MaxItemsPerPage)
		}
		s.Display.ItemsPerPage = *p.ItemsPerPage
	}
	setBool(&s.Display.AutoRefresh, p.AutoRefresh)
	setBool(&s.Display.CompactView, p.CompactView)
	setBool(&s.Display.ShowImages, p.ShowImages)
	return nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (s *UserState) bucket(k FavoriteKind) *[]string {
	switch k {
	case FavoriteNews:
		return &s.Favorites.News
	case FavoriteMovies:
		return &s.Favorites.Movies
	case FavoriteSocial:
		return &s.Favorites.Social
	}
	return nil
}

// AddFavorite appends id to the bucket unless it is already present.
func (s *UserState) AddFavorite(k FavoriteKind, id string) error {
	b := s.bucket(k)
	if b == nil {
		return fmt.Errorf("%w: %q", ErrUnknownFavoriteKind, k)
	}
	if !slices.Contains(*b, id) {
		*b = append(*b, id)
	}
	return nil
}

func (s *UserState) RemoveFavorite(k FavoriteKind, id string) error {
	b := s.bucket(k)
	if b == nil {
		return fmt.Errorf("%w: %q", ErrUnknownFavoriteKind, k)
	}
	*b = slices.DeleteFunc(*b, func(v string) bool { return v == id })
	return nil
}

func (s *UserState) ClearFavorites() {
	s.Favorites = emptyFavorites()
}
