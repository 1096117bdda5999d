package models

import "time"

// GameListing is a row of the game catalog (PostgreSQL)
type GameListing struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"size:120;uniqueIndex"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Tags        []string  `json:"tags" gorm:"serializer:json;type:text"`
	Category    string    `json:"category" gorm:"size:60;index"`
	Plays       int64     `json:"plays"`
	Featured    bool      `json:"featured" gorm:"index"`
	Href        string    `json:"href"`
	PublishedAt time.Time `json:"publishedAt" gorm:"index"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// GameSort selects the ordering of a catalog listing
type GameSort string

const (
	GameSortNewest  GameSort = "newest"
	GameSortPopular GameSort = "popular"
	GameSortTitle   GameSort = "title"
)

// GameFilter narrows a catalog listing
type GameFilter struct {
	Tag      string   `query:"tag"`
	Search   string   `query:"q"`
	Featured bool     `query:"featured"`
	Sort     GameSort `query:"sort" validate:"omitempty,oneof=newest popular title"`
	Limit    int      `query:"limit" validate:"omitempty,min=1,max=100"`
}

// DefaultGameLimit is used when a listing does not specify a limit
const DefaultGameLimit = 24

// Normalize fills in defaults for an incoming filter
func (f GameFilter) Normalize() GameFilter {
	if f.Sort == "" {
		f.Sort = GameSortNewest
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = DefaultGameLimit
	}
	return f
}

// GameContent is the build-time artifact written per game slug
type GameContent struct {
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Tags        []string     `json:"tags"`
	Featured    bool         `json:"featured,omitempty"`
	Content     GameHTMLBody `json:"content"`
	Href        string       `json:"href"`
	FetchedAt   time.Time    `json:"fetchedAt"`
}

// GameHTMLBody holds the sanitized embed markup of a game page
type GameHTMLBody struct {
	HTML string `json:"html"`
}

// Listing converts the artifact into a catalog row
func (g *GameContent) Listing() *GameListing {
	return &GameListing{
		Slug:        g.Slug,
		Title:       g.Title,
		Description: g.Description,
		Image:       g.Image,
		Tags:        g.Tags,
		Featured:    g.Featured,
		Href:        g.Href,
		PublishedAt: g.FetchedAt,
	}
}
