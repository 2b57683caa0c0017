package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kyiku/mall-event-back/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryPolicy{Attempts: 3, Delay: time.Millisecond}

func TestClient_GetCampaign(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/campaigns/mothers-day-2026" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.Campaign{
			ID:     "mothers-day-2026",
			Title:  "母の日フォトコンテスト",
			Status: model.CampaignStatusActive,
			Submissions: []model.Submission{
				{ID: "s1", Title: "ありがとう", Counts: model.Counts{Votes: 3}},
				{ID: "s2", Title: "花束", Counts: model.Counts{Likes: 7}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "secret", WithRetryPolicy(fastRetry))

	t.Run("正常系: キャンペーン取得", func(t *testing.T) {
		c, err := client.GetCampaign(context.Background(), "mothers-day-2026")

		require.NoError(t, err)
		assert.Equal(t, "mothers-day-2026", c.ID)
		assert.Len(t, c.Submissions, 2)
		assert.Equal(t, 3, c.Submissions[0].Counts.Votes)
		assert.Equal(t, "Bearer secret", gotAuth)
	})

	t.Run("異常系: 存在しないキャンペーン", func(t *testing.T) {
		_, err := client.GetCampaign(context.Background(), "unknown")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestClient_Act(t *testing.T) {
	tests := []struct {
		name       string
		action     model.Action
		wantPath   string
		status     int
		wantErr    error
		wantVotes  int
		wantAPIErr bool
	}{
		{name: "正常系: 投票", action: model.ActionVote, wantPath: "/submissions/s1/votes", status: http.StatusOK, wantVotes: 11},
		{name: "正常系: いいね", action: model.ActionLike, wantPath: "/submissions/s1/likes", status: http.StatusCreated, wantVotes: 11},
		{name: "正常系: シェア", action: model.ActionShare, wantPath: "/submissions/s1/shares", status: http.StatusOK, wantVotes: 11},
		{name: "異常系: 重複", action: model.ActionVote, wantPath: "/submissions/s1/votes", status: http.StatusConflict, wantErr: ErrDuplicate},
		{name: "異常系: 不正なリクエスト", action: model.ActionVote, wantPath: "/submissions/s1/votes", status: http.StatusBadRequest, wantAPIErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotUser, gotMethod string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotMethod = r.Method
				var body actionRequest
				_ = json.NewDecoder(r.Body).Decode(&body)
				gotUser = body.UserID

				w.WriteHeader(tt.status)
				if tt.status < 300 {
					_ = json.NewEncoder(w).Encode(actionResponse{Counts: model.Counts{Votes: 11, Likes: 2}})
				} else {
					_, _ = w.Write([]byte("rejected"))
				}
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "", WithRetryPolicy(fastRetry))

			counts, err := client.Act(context.Background(), tt.action, "s1", "09012345678")

			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, http.MethodPost, gotMethod)
			assert.Equal(t, "09012345678", gotUser)

			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr))
			case tt.wantAPIErr:
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.status, apiErr.Status)
				assert.Equal(t, "rejected", apiErr.Body)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantVotes, counts.Votes)
			}
		})
	}
}

func TestClient_Act_UnsupportedAction(t *testing.T) {
	client := NewClient("http://localhost", "")

	_, err := client.Act(context.Background(), model.Action("comment"), "s1", "u1")

	assert.Error(t, err)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(model.Campaign{ID: "c9"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", WithRetryPolicy(fastRetry))

	c, err := client.GetCampaign(context.Background(), "c9")

	require.NoError(t, err)
	assert.Equal(t, "c9", c.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", WithRetryPolicy(fastRetry))

	_, err := client.GetCampaign(context.Background(), "c9")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_ActIsNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		action model.Action
	}{
		{name: "異常系: 投票", action: model.ActionVote},
		{name: "異常系: いいね", action: model.ActionLike},
		{name: "異常系: シェア", action: model.ActionShare},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The first POST is applied upstream but the gateway answers 502.
			// A second POST would come back as 409.
			var posts int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&posts, 1) == 1 {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				w.WriteHeader(http.StatusConflict)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "", WithRetryPolicy(fastRetry))

			_, err := client.Act(context.Background(), tt.action, "s1", "u1")

			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrDuplicate))
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadGateway, apiErr.Status)
			assert.Equal(t, int32(1), atomic.LoadInt32(&posts))
		})
	}
}

func TestRetry(t *testing.T) {
	t.Run("retryable以外は即座に返す", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), fastRetry, func() error {
			calls++
			return errors.New("boom")
		})

		assert.EqualError(t, err, "boom")
		assert.Equal(t, 1, calls)
	})

	t.Run("キャンセルされたら中断", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		err := Retry(ctx, RetryPolicy{Attempts: 5, Delay: time.Second}, func() error {
			calls++
			return &RetryableError{Err: errors.New("temporary")}
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("成功したら終了", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), fastRetry, func() error {
			calls++
			if calls == 2 {
				return nil
			}
			return &RetryableError{Err: errors.New("temporary")}
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}
