package chat

import (
	"fmt"
	"testing"
	"time"

	"group-chat/domain"
	"group-chat/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func storedMessage(content string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		UserID:    "user-1",
		Username:  "alice",
		GroupID:   "g1",
		Content:   content,
		CreatedAt: at,
	}
}

func TestHistoryLoader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockIMessageStore(ctrl)
	loader := NewHistoryLoader(store, 50)

	t.Run("should reverse the newest-first page to chronological order", func(t *testing.T) {
		req := require.New(t)

		now := time.Now().UTC()
		newestFirst := []domain.Message{
			storedMessage("third", now),
			storedMessage("second", now.Add(-time.Minute)),
			storedMessage("first", now.Add(-2*time.Minute)),
		}
		store.EXPECT().RecentByGroup(domain.GroupID("g1"), 50).Return(newestFirst, nil)

		history, err := loader.LoadHistory("g1")

		req.NoError(err)
		req.Len(history, 3)
		req.Equal("first", history[0].Content)
		req.Equal("second", history[1].Content)
		req.Equal("third", history[2].Content)
	})

	t.Run("should return an empty history without error", func(t *testing.T) {
		req := require.New(t)

		store.EXPECT().RecentByGroup(domain.GroupID("empty"), 50).Return(nil, nil)

		history, err := loader.LoadHistory("empty")

		req.NoError(err)
		req.Empty(history)
	})

	t.Run("should propagate store failures", func(t *testing.T) {
		req := require.New(t)

		storeErr := fmt.Errorf("disk on fire")
		store.EXPECT().RecentByGroup(domain.GroupID("g1"), 50).Return(nil, storeErr)

		_, err := loader.LoadHistory("g1")

		req.ErrorIs(err, storeErr)
	})
}
