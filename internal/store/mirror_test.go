package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_store "github.com/at-ishikawa/reviewdeck/internal/mocks/store"
	"github.com/at-ishikawa/reviewdeck/internal/srs"
	"github.com/at-ishikawa/reviewdeck/internal/store"
)

var today = srs.NewDate(2025, time.April, 2)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	seed := []srs.Card{srs.New("a", srs.Vocabulary, today)}
	m := store.NewMemory(seed...)

	cards, err := m.LoadCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed, cards)

	cards[0].IntervalDays = 10
	again, _ := m.LoadCards(ctx)
	assert.Equal(t, 0, again[0].IntervalDays, "loaded slice must not alias the store")

	session := srs.Session{Date: today, ReviewedCount: 2}
	require.NoError(t, m.SaveSession(ctx, session))
	gotSession, err := m.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, gotSession)

	streak := srs.Streak{LastCompletedDate: today, StreakDays: 3}
	require.NoError(t, m.SaveStreak(ctx, streak))
	gotStreak, err := m.LoadStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, streak, gotStreak)

	assert.NoError(t, m.Close())
}

func TestMirror_LoadCards(t *testing.T) {
	local := []srs.Card{srs.New("local", srs.Vocabulary, today)}
	cloud := []srs.Card{srs.New("cloud", srs.Vocabulary, today)}

	tests := []struct {
		name    string
		setup   func(primary, secondary *mock_store.MockStore)
		want    []srs.Card
		wantErr bool
	}{
		{
			name: "primary has cards",
			setup: func(primary, secondary *mock_store.MockStore) {
				primary.EXPECT().LoadCards(gomock.Any()).Return(local, nil)
			},
			want: local,
		},
		{
			name: "empty primary falls back to secondary",
			setup: func(primary, secondary *mock_store.MockStore) {
				primary.EXPECT().LoadCards(gomock.Any()).Return(nil, nil)
				secondary.EXPECT().LoadCards(gomock.Any()).Return(cloud, nil)
			},
			want: cloud,
		},
		{
			name: "secondary failure is not fatal",
			setup: func(primary, secondary *mock_store.MockStore) {
				primary.EXPECT().LoadCards(gomock.Any()).Return([]srs.Card{}, nil)
				secondary.EXPECT().LoadCards(gomock.Any()).Return(nil, errors.New("offline"))
			},
			want: []srs.Card{},
		},
		{
			name: "primary failure is returned",
			setup: func(primary, secondary *mock_store.MockStore) {
				primary.EXPECT().LoadCards(gomock.Any()).Return(nil, errors.New("disk"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			primary := mock_store.NewMockStore(ctrl)
			secondary := mock_store.NewMockStore(ctrl)
			tt.setup(primary, secondary)

			got, err := store.NewMirror(primary, secondary).LoadCards(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMirror_Save(t *testing.T) {
	ctx := context.Background()
	cards := []srs.Card{srs.New("a", srs.Vocabulary, today)}
	session := srs.Session{Date: today, ReviewedCount: 1, CorrectCount: 1}
	streak := srs.Streak{LastCompletedDate: today, StreakDays: 2}

	t.Run("secondary errors are swallowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		primary := mock_store.NewMockStore(ctrl)
		secondary := mock_store.NewMockStore(ctrl)

		gomock.InOrder(
			primary.EXPECT().SaveCards(ctx, cards).Return(nil),
			secondary.EXPECT().SaveCards(ctx, cards).Return(errors.New("offline")),
		)
		primary.EXPECT().SaveSession(ctx, session).Return(nil)
		secondary.EXPECT().SaveSession(ctx, session).Return(errors.New("offline"))
		primary.EXPECT().SaveStreak(ctx, streak).Return(nil)
		secondary.EXPECT().SaveStreak(ctx, streak).Return(nil)

		m := store.NewMirror(primary, secondary)
		assert.NoError(t, m.SaveCards(ctx, cards))
		assert.NoError(t, m.SaveSession(ctx, session))
		assert.NoError(t, m.SaveStreak(ctx, streak))
	})

	t.Run("primary errors skip the secondary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		primary := mock_store.NewMockStore(ctrl)
		secondary := mock_store.NewMockStore(ctrl)

		primary.EXPECT().SaveCards(ctx, cards).Return(errors.New("disk full"))

		err := store.NewMirror(primary, secondary).SaveCards(ctx, cards)
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestMirror_SessionAndStreakFallback(t *testing.T) {
	ctx := context.Background()
	primary := store.NewMemory()
	secondary := store.NewMemory()
	require.NoError(t, secondary.SaveSession(ctx, srs.Session{Date: today, ReviewedCount: 4}))
	require.NoError(t, secondary.SaveStreak(ctx, srs.Streak{LastCompletedDate: today, StreakDays: 8}))

	m := store.NewMirror(primary, secondary)

	session, err := m.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, session.ReviewedCount)

	streak, err := m.LoadStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, streak.StreakDays)

	require.NoError(t, m.SaveStreak(ctx, srs.Streak{LastCompletedDate: today.AddDays(1), StreakDays: 9}))
	local, _ := primary.LoadStreak(ctx)
	assert.Equal(t, 9, local.StreakDays)

	assert.NoError(t, m.Close())
}
