package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserActions_Apply(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		setup  func(u *UserActions)
		action Action
		subID  string
		want   bool
	}{
		{
			name:   "正常系: 初めての投票",
			setup:  func(u *UserActions) {},
			action: ActionVote,
			subID:  "s1",
			want:   true,
		},
		{
			name:   "異常系: 別の作品にも投票できない",
			setup:  func(u *UserActions) { u.VotedSubmissionID = "s1" },
			action: ActionVote,
			subID:  "s2",
			want:   false,
		},
		{
			name:   "正常系: 別の作品にはいいねできる",
			setup:  func(u *UserActions) { u.LikedSubmissions = []string{"s1"} },
			action: ActionLike,
			subID:  "s2",
			want:   true,
		},
		{
			name:   "異常系: 同じ作品に2回いいね",
			setup:  func(u *UserActions) { u.LikedSubmissions = []string{"s1"} },
			action: ActionLike,
			subID:  "s1",
			want:   false,
		},
		{
			name:   "異常系: 同じ作品を2回シェア",
			setup:  func(u *UserActions) { u.SharedSubmissions = []string{"s3"} },
			action: ActionShare,
			subID:  "s3",
			want:   false,
		},
		{
			name:   "異常系: 未知のアクション",
			setup:  func(u *UserActions) {},
			action: Action("comment"),
			subID:  "s1",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUserActions("user-1")
			tt.setup(u)

			got := u.Apply(tt.action, tt.subID, now)

			assert.Equal(t, tt.want, got)
			if tt.want {
				assert.True(t, u.HasActed(tt.action, tt.subID))
				assert.Equal(t, now, u.LastUpdated)
			}
		})
	}
}

func TestUserActions_Clone(t *testing.T) {
	u := NewUserActions("user-1")
	u.Apply(ActionLike, "s1", time.Now())

	c := u.Clone()
	c.Apply(ActionLike, "s2", time.Now())

	assert.Equal(t, []string{"s1"}, u.LikedSubmissions)
	assert.Equal(t, []string{"s1", "s2"}, c.LikedSubmissions)
}

func TestCampaign_IsOpen(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		campaign Campaign
		at       time.Time
		want     bool
	}{
		{name: "期間中", campaign: Campaign{Status: CampaignStatusActive, StartAt: start, EndAt: end}, at: start.AddDate(0, 0, 3), want: true},
		{name: "開始前", campaign: Campaign{Status: CampaignStatusUpcoming, StartAt: start, EndAt: end}, at: start.AddDate(0, 0, -1), want: false},
		{name: "終了後", campaign: Campaign{Status: CampaignStatusActive, StartAt: start, EndAt: end}, at: end.AddDate(0, 0, 1), want: false},
		{name: "締切済み", campaign: Campaign{Status: CampaignStatusClosed}, at: start, want: false},
		{name: "期間未設定", campaign: Campaign{Status: CampaignStatusActive}, at: start, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.campaign.IsOpen(tt.at))
		})
	}
}

func TestAction_Valid(t *testing.T) {
	assert.True(t, ActionVote.Valid())
	assert.True(t, ActionLike.Valid())
	assert.True(t, ActionShare.Valid())
	assert.False(t, Action("comment").Valid())
}
