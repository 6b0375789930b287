package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/construtorcheck/construtorcheck-backend/pkg/rating"
)

// StringArray stores a list of strings as a JSON column so the same model
// migrates on PostgreSQL and on the SQLite test database.
type StringArray []string

// Value implements database/sql/driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements database/sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("failed to scan StringArray")
	}
}

// Company is a construction company being reviewed. The aggregate fields
// (Ratings, AvgRating, ReviewsCount, Status) are only ever mutated inside
// the review submission/retraction transactions.
type Company struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"` // URL key derived from Name

	District string `gorm:"index;not null" json:"district"` // Portuguese district
	City     string `gorm:"not null" json:"city"`

	// Work categories offered (category ids, e.g. "remodelacao").
	Categories StringArray `gorm:"type:text" json:"categories"`

	// Running per-category means of all non-deleted reviews.
	Ratings rating.Breakdown `gorm:"embedded;embeddedPrefix:avg_" json:"ratings_breakdown"`

	// Running mean of all non-deleted reviews' overall rating.
	AvgRating float64 `gorm:"index;default:0" json:"avg_rating"`

	ReviewsCount int `gorm:"default:0" json:"reviews_count"`

	// Derived from AvgRating, never set independently. Meaningless while
	// ReviewsCount is 0.
	Status rating.Status `gorm:"type:varchar(20);index;default:'neutral'" json:"status"`
}

func (Company) TableName() string {
	return "companies"
}

// Slugify derives the unique URL key from a company name: lowercase,
// diacritics stripped, non-alphanumeric runs collapsed to single hyphens,
// leading/trailing hyphens trimmed. Lossy but deterministic; two names that
// normalize to the same slug are the same company.
func Slugify(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(name))

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from NFD, drop it
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
