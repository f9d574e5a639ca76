package content

import "strconv"

// Kind names a content variant. It doubles as the `type` field of search results.
type Kind string

const (
	KindNews   Kind = "news"
	KindMovie  Kind = "movie"
	KindSocial Kind = "social"
	KindSearch Kind = "search"
)

// Item is the closed set of normalized content variants returned to clients.
// Identity is (ItemType, ItemID).
type Item interface {
	ItemType() Kind
	ItemID() string
}

// Source identifies the publisher of a news article.
type Source struct {
	Name string `json:"name"`
}

// NewsItem is a normalized news article.
type NewsItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	URLToImage  string  `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
	Source      Source  `json:"source"`
	Category    string  `json:"category"`
	Author      *string `json:"author"`
	Content     *string `json:"content"`
}

func (n NewsItem) ItemType() Kind { return KindNews }
func (n NewsItem) ItemID() string { return n.ID }

// Movie is a normalized movie record. ID is assigned by the upstream provider.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
}

func (m Movie) ItemType() Kind { return KindMovie }
func (m Movie) ItemID() string { return strconv.FormatInt(m.ID, 10) }

// SocialPost is a social feed entry.
type SocialPost struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Author    string   `json:"author"`
	Avatar    string   `json:"avatar"`
	Timestamp string   `json:"timestamp"`
	Likes     int      `json:"likes"`
	Hashtags  []string `json:"hashtags"`
}

func (s SocialPost) ItemType() Kind { return KindSocial }
func (s SocialPost) ItemID() string { return s.ID }

// SearchResult is one entry of a unified search. Type selects which of the
// variant fields are populated.
type SearchResult struct {
	ID   string `json:"id"`
	Type Kind   `json:"type"`

	// news
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url,omitempty"`
	URLToImage  string  `json:"urlToImage,omitempty"`
	Source      *Source `json:"source,omitempty"`
	PublishedAt string  `json:"publishedAt,omitempty"`

	// movie
	Overview    string   `json:"overview,omitempty"`
	PosterPath  *string  `json:"poster_path,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	VoteAverage *float64 `json:"vote_average,omitempty"`

	// social
	Content   string   `json:"content,omitempty"`
	Author    string   `json:"author,omitempty"`
	Hashtags  []string `json:"hashtags,omitempty"`
	Likes     int      `json:"likes,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

func (r SearchResult) ItemType() Kind { return r.Type }
func (r SearchResult) ItemID() string { return r.ID }

// Query is the sealed set of per-kind content queries.
type Query interface {
	Kind() Kind
}

// NewsQuery selects news articles. Zero Page/PageSize mean the defaults (1, 20).
type NewsQuery struct {
	Category string
	Q        string
	Country  string
	Page     int
	PageSize int
}

func (NewsQuery) Kind() Kind { return KindNews }

// MovieQuery selects movies by free text, genre name, or neither (popular).
type MovieQuery struct {
	Genre string
	Q     string
	Page  int
}

func (MovieQuery) Kind() Kind { return KindMovie }

// SocialQuery filters the social feed by hashtag substring.
type SocialQuery struct {
	Hashtag string
}

func (SocialQuery) Kind() Kind { return KindSocial }

// SearchQuery runs a unified search. Type is "", "all", "news", "movie" or "social".
type SearchQuery struct {
	Q    string
	Type string
}

func (SearchQuery) Kind() Kind { return KindSearch }

// Defaults applied when the caller leaves fields empty.
const (
	DefaultNewsCategory = "general"
	DefaultCountry      = "us"
	DefaultPage         = 1
	DefaultPageSize     = 20
)

// WithDefaults fills unset fields of a news query.
func (q NewsQuery) WithDefaults() NewsQuery {
	if q.Category == "" {
		q.Category = DefaultNewsCategory
	}
	if q.Country == "" {
		q.Country = DefaultCountry
	}
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	return q
}

// WithDefaults fills unset fields of a movie query.
func (q MovieQuery) WithDefaults() MovieQuery {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	return q
}
