package services

import (
	"testing"

	"group-chat/domain"
	"group-chat/errors"
	"group-chat/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGroupService_CreateGroup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIGroupRepository(ctrl)
	svc := NewGroupService(mockRepo)

	t.Run("should create a group with a trimmed name", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateGroup("team chat", "user-1").
			Return(domain.Group{ID: "g1", Name: "team chat"}, nil)

		group, err := svc.CreateGroup("  team chat  ", "user-1")

		req.NoError(err)
		req.Equal(domain.GroupID("g1"), group.ID)
	})

	t.Run("should reject an empty name without touching the repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().CreateGroup(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.CreateGroup("   ", "user-1")

		req.ErrorIs(err, errors.ErrGroupNameRequired)
	})
}

func TestGroupService_JoinGroup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIGroupRepository(ctrl)
	svc := NewGroupService(mockRepo)

	t.Run("should uppercase the invite code before resolving it", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			JoinGroup("AB12CD", "user-1").
			Return(domain.Group{ID: "g1"}, nil)

		group, err := svc.JoinGroup(" ab12cd ", "user-1")

		req.NoError(err)
		req.Equal(domain.GroupID("g1"), group.ID)
	})

	t.Run("should reject an empty code", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().JoinGroup(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.JoinGroup("", "user-1")

		req.ErrorIs(err, errors.ErrGroupCodeRequired)
	})

	t.Run("should propagate an unknown code", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			JoinGroup("ZZZZZZ", "user-1").
			Return(domain.Group{}, errors.ErrGroupNotFound)

		_, err := svc.JoinGroup("zzzzzz", "user-1")

		req.ErrorIs(err, errors.ErrGroupNotFound)
	})
}

func TestGroupService_ListGroups(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIGroupRepository(ctrl)
	svc := NewGroupService(mockRepo)

	req := require.New(t)
	expected := []domain.Group{{ID: "g1"}, {ID: "g2"}}
	mockRepo.EXPECT().GroupsForUser("user-1").Return(expected, nil)

	groups, err := svc.ListGroups("user-1")

	req.NoError(err)
	req.Equal(expected, groups)
}
