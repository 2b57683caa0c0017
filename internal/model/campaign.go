// Package model provides data models for the application.
package model

import "time"

// Action is a user reaction to a submission.
type Action string

// Supported actions
const (
	ActionVote  Action = "vote"
	ActionLike  Action = "like"
	ActionShare Action = "share"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionVote, ActionLike, ActionShare:
		return true
	}
	return false
}

// Campaign status values
const (
	CampaignStatusUpcoming = "upcoming"
	CampaignStatusActive   = "active"
	CampaignStatusClosed   = "closed"
)

// Counts holds the aggregate reactions of a submission.
type Counts struct {
	Votes    int `json:"votes"`
	Likes    int `json:"likes"`
	Shares   int `json:"shares"`
	Comments int `json:"comments"`
}

// Submission is one entry in a campaign gallery.
type Submission struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	AuthorName string    `json:"authorName"`
	ImageURL   string    `json:"imageUrl"`
	SizeClass  string    `json:"sizeClass,omitempty"`
	Counts     Counts    `json:"counts"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Campaign is a seasonal event with its submissions.
type Campaign struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	StartAt     time.Time    `json:"startAt"`
	EndAt       time.Time    `json:"endAt"`
	Submissions []Submission `json:"submissions"`
}

// IsOpen reports whether the campaign accepts reactions at t.
func (c *Campaign) IsOpen(t time.Time) bool {
	if c.Status == CampaignStatusClosed {
		return false
	}
	if !c.StartAt.IsZero() && t.Before(c.StartAt) {
		return false
	}
	if !c.EndAt.IsZero() && t.After(c.EndAt) {
		return false
	}
	return true
}

// UserActions records which submissions a user has reacted to.
type UserActions struct {
	UserID            string    `json:"userId"`
	VotedSubmissionID string    `json:"votedSubmissionId,omitempty"`
	LikedSubmissions  []string  `json:"likedSubmissions"`
	SharedSubmissions []string  `json:"sharedSubmissions"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// NewUserActions creates an empty record for userID.
func NewUserActions(userID string) *UserActions {
	return &UserActions{
		UserID:            userID,
		LikedSubmissions:  []string{},
		SharedSubmissions: []string{},
	}
}

// HasActed checks if the user already performed action on submissionID.
// A vote counts once per user regardless of the submission.
func (u *UserActions) HasActed(action Action, submissionID string) bool {
	switch action {
	case ActionVote:
		return u.VotedSubmissionID != ""
	case ActionLike:
		return contains(u.LikedSubmissions, submissionID)
	case ActionShare:
		return contains(u.SharedSubmissions, submissionID)
	}
	return false
}

// Apply records the action. It returns false if it was already recorded.
func (u *UserActions) Apply(action Action, submissionID string, now time.Time) bool {
	if u.HasActed(action, submissionID) {
		return false
	}

	switch action {
	case ActionVote:
		u.VotedSubmissionID = submissionID
	case ActionLike:
		u.LikedSubmissions = append(u.LikedSubmissions, submissionID)
	case ActionShare:
		u.SharedSubmissions = append(u.SharedSubmissions, submissionID)
	default:
		return false
	}

	u.LastUpdated = now
	return true
}

// Clone returns a deep copy.
func (u *UserActions) Clone() *UserActions {
	c := *u
	c.LikedSubmissions = append([]string{}, u.LikedSubmissions...)
	c.SharedSubmissions = append([]string{}, u.SharedSubmissions...)
	return &c
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
