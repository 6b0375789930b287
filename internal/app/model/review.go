package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/construtorcheck/construtorcheck-backend/pkg/rating"
)

type Recommendation string

const (
	RecommendYes              Recommendation = "yes"
	RecommendNo               Recommendation = "no"
	RecommendWithReservations Recommendation = "with-reservations"
)

// Review is a single user's multi-category evaluation of a company.
type Review struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID uint    `gorm:"not null;index" json:"company_id"`
	Company   Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	UserID    uint    `gorm:"not null;index" json:"user_id"`
	User      User    `gorm:"foreignKey:UserID" json:"user"`

	IsAnonymous bool `gorm:"default:false" json:"is_anonymous"`

	// Per-category scores, integers 1-5 at submission.
	Ratings rating.Breakdown `gorm:"embedded;embeddedPrefix:rating_" json:"ratings"`

	// Mean of the category scores, computed once at submission and stored
	// immutably. Fractional values only ever arise from this mean.
	OverallRating float64 `gorm:"not null" json:"overall_rating"`

	Title       string         `gorm:"not null" json:"title"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	WorkTypes   StringArray    `gorm:"type:text" json:"work_types"`
	ServiceDate time.Time      `json:"service_date"`
	Recommends  Recommendation `gorm:"type:varchar(20)" json:"would_recommend"`
	Photos      StringArray    `gorm:"type:text" json:"photos,omitempty"`

	// Count of "helpful" votes. Mutated only through atomic column
	// increments inside the vote transaction; never goes negative.
	HelpfulVotes int `gorm:"default:0" json:"helpful_votes"`
	ReportCount  int `gorm:"default:0" json:"report_count"`

	// Optional reply from the reviewed company, opaque passthrough.
	ResponseContent *string    `gorm:"type:text" json:"response_content,omitempty"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// VoteState is a user's helpfulness verdict on a review.
type VoteState string

const (
	VoteNone      VoteState = "none"
	VoteHelpful   VoteState = "helpful"
	VoteUnhelpful VoteState = "unhelpful"
)

// ReviewVote records one user's helpfulness vote on one review. The unique
// composite index guarantees at most one row per (review, user) pair.
type ReviewVote struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ReviewID uint `gorm:"not null;index:idx_review_user_vote,unique" json:"review_id"`
	UserID   uint `gorm:"not null;index:idx_review_user_vote,unique" json:"user_id"`

	// true = helpful, false = not helpful. Only helpful votes are counted
	// on the review.
	Helpful bool `gorm:"not null" json:"helpful"`

	Review Review `gorm:"foreignKey:ReviewID" json:"-"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
}

func (ReviewVote) TableName() string {
	return "review_votes"
}

// State reports the vote's polarity as a VoteState.
func (v ReviewVote) State() VoteState {
	if v.Helpful {
		return VoteHelpful
	}
	return VoteUnhelpful
}
