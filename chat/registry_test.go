package chat

import (
	"fmt"
	"sync"
	"testing"

	"group-chat/domain"
	"group-chat/errors"

	"github.com/stretchr/testify/require"
)

type nopSink struct{}

func (nopSink) Deliver([]byte) error { return nil }

func sessionFor(handle string, groupID domain.GroupID) domain.Session {
	return domain.Session{
		Handle:   domain.Handle(handle),
		UserID:   "user-" + handle,
		Username: "name-" + handle,
		GroupID:  groupID,
	}
}

func TestRegistry(t *testing.T) {
	t.Run("should reject a duplicate handle", func(t *testing.T) {
		req := require.New(t)
		registry := NewRegistry()
		session := sessionFor("h1", "g1")

		req.NoError(registry.Insert(session.Handle, session, nopSink{}))
		err := registry.Insert(session.Handle, session, nopSink{})

		req.ErrorIs(err, errors.ErrDuplicateHandle)
		req.Equal(1, registry.Len())
	})

	t.Run("should remove idempotently", func(t *testing.T) {
		req := require.New(t)
		registry := NewRegistry()
		session := sessionFor("h1", "g1")

		req.NoError(registry.Insert(session.Handle, session, nopSink{}))
		registry.Remove(session.Handle)
		registry.Remove(session.Handle)
		registry.Remove("never-registered")

		req.Equal(0, registry.Len())
	})

	t.Run("should snapshot only the requested group", func(t *testing.T) {
		req := require.New(t)
		registry := NewRegistry()

		for i := 0; i < 3; i++ {
			session := sessionFor(fmt.Sprintf("a%d", i), "groupA")
			req.NoError(registry.Insert(session.Handle, session, nopSink{}))
		}
		other := sessionFor("b0", "groupB")
		req.NoError(registry.Insert(other.Handle, other, nopSink{}))

		snapshot := registry.SnapshotForGroup("groupA")

		req.Len(snapshot, 3)
		for _, entry := range snapshot {
			req.Equal(domain.GroupID("groupA"), entry.Session.GroupID)
		}
	})

	t.Run("should return an empty snapshot for an unknown group", func(t *testing.T) {
		req := require.New(t)
		registry := NewRegistry()

		req.Empty(registry.SnapshotForGroup("nobody-here"))
	})

	t.Run("should survive concurrent inserts, removes and snapshots", func(t *testing.T) {
		req := require.New(t)
		registry := NewRegistry()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				session := sessionFor(fmt.Sprintf("h%d", n), "g1")
				_ = registry.Insert(session.Handle, session, nopSink{})
				registry.SnapshotForGroup("g1")
				if n%2 == 0 {
					registry.Remove(session.Handle)
				}
			}(i)
		}
		wg.Wait()

		req.Equal(25, registry.Len())
	})
}
