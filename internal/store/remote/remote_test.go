package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
)

var today = srs.NewDate(2025, time.July, 1)

// fakeAPI is an in-memory document server keyed by request path.
type fakeAPI struct {
	mu        sync.Mutex
	documents map[string]string
}

func (api *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mu.Lock()
	defer api.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch r.Method {
	case http.MethodGet:
		doc, ok := api.documents[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, doc)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		api.documents[r.URL.Path] = string(body)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newClient(t *testing.T, url string, attempts uint) *Client {
	t.Helper()
	client, err := New(Options{
		BaseURL:       url + "/",
		APIKey:        "test-key",
		LearnerID:     "alice",
		Timeout:       5 * time.Second,
		RetryAttempts: attempts,
		RetryDelay:    time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNew(t *testing.T) {
	_, err := New(Options{LearnerID: "alice"})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestClient_RoundTrip(t *testing.T) {
	api := &fakeAPI{documents: map[string]string{}}
	server := httptest.NewServer(api)
	defer server.Close()

	ctx := context.Background()
	client := newClient(t, server.URL, 0)

	cards, err := client.LoadCards(ctx)
	require.NoError(t, err)
	assert.Nil(t, cards)

	session, err := client.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, srs.Session{}, session)

	want := []srs.Card{
		srs.New("apple", srs.Vocabulary, today),
		srs.ProcessReview(srs.New("th-sound", srs.Pronunciation, today), srs.Easy, today),
	}
	require.NoError(t, client.SaveCards(ctx, want))
	got, err := client.LoadCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal([]byte(api.documents["/learners/alice/srs_cards"]), &raw))
	assert.Equal(t, "pronunciation", raw[1]["item_kind"])
	assert.Equal(t, "2025-07-02", raw[1]["next_review_date"])
	assert.Nil(t, raw[0]["last_review_date"])

	wantSession := srs.Session{Date: today, ReviewedCount: 3, CorrectCount: 2, StreakDays: 1}
	require.NoError(t, client.SaveSession(ctx, wantSession))
	session, err = client.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantSession, session)

	wantStreak := srs.Streak{LastCompletedDate: today, StreakDays: 1}
	require.NoError(t, client.SaveStreak(ctx, wantStreak))
	streak, err := client.LoadStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantStreak, streak)
}

func TestClient_MalformedDocuments(t *testing.T) {
	api := &fakeAPI{documents: map[string]string{
		"/learners/alice/srs_cards":   `{"not": "a list"}`,
		"/learners/alice/srs_session": `{"date": "2025-07-01", "reviewed_count": "three"}`,
		"/learners/alice/srs_streak":  `null`,
	}}
	server := httptest.NewServer(api)
	defer server.Close()

	ctx := context.Background()
	client := newClient(t, server.URL, 0)

	_, err := client.LoadCards(ctx)
	assert.Error(t, err)

	session, err := client.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, srs.Session{}, session)

	streak, err := client.LoadStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, srs.Streak{}, streak)
}

func TestClient_Retry(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		attempts     uint
		wantCalls    int32
		wantErr      bool
		wantErrorMsg string
	}{
		{
			name:      "server errors are retried",
			statuses:  []int{http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusOK},
			attempts:  3,
			wantCalls: 3,
		},
		{
			name:         "client errors are not retried",
			statuses:     []int{http.StatusBadRequest, http.StatusOK},
			attempts:     3,
			wantCalls:    1,
			wantErr:      true,
			wantErrorMsg: "response error 400",
		},
		{
			name:         "gives up after the configured attempts",
			statuses:     []int{http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway},
			attempts:     1,
			wantCalls:    2,
			wantErr:      true,
			wantErrorMsg: "response error 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				status := tt.statuses[min(int(n)-1, len(tt.statuses)-1)]
				if status == http.StatusOK {
					w.Header().Set("Content-Type", "application/json")
					_, _ = io.WriteString(w, `{"last_completed_date": "2025-07-01", "streak_days": 5}`)
					return
				}
				w.WriteHeader(status)
			}))
			defer server.Close()

			client := newClient(t, server.URL, tt.attempts)
			streak, err := client.LoadStreak(context.Background())

			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantErr {
				assert.ErrorContains(t, err, tt.wantErrorMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5, streak.StreakDays)
		})
	}
}
