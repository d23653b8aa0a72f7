package chat

import (
	"group-chat/contract"
	"group-chat/domain"

	"github.com/samber/lo"
)

// HistoryLoader fetches the recent messages replayed to a newly admitted
// connection. The store hands back newest-first; replay reads
// top-to-bottom, so the page is reversed to chronological order.
type HistoryLoader struct {
	store contract.IMessageStore
	limit int
}

func NewHistoryLoader(store contract.IMessageStore, limit int) *HistoryLoader {
	return &HistoryLoader{store: store, limit: limit}
}

// LoadHistory returns the most recent messages of the group, oldest
// first. A group with no messages yields an empty slice, never an error.
func (l *HistoryLoader) LoadHistory(groupID domain.GroupID) ([]domain.Message, error) {
	messages, err := l.store.RecentByGroup(groupID, l.limit)
	if err != nil {
		return nil, err
	}
	return lo.Reverse(messages), nil
}
