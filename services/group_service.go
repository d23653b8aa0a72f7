package services

import (
	"strings"

	"group-chat/domain"
	"group-chat/errors"
	"group-chat/repositories"
)

type IGroupService interface {
	CreateGroup(name, userID string) (domain.Group, error)
	JoinGroup(code, userID string) (domain.Group, error)
	ListGroups(userID string) ([]domain.Group, error)
}

type GroupService struct {
	groupRepository repositories.IGroupRepository
}

func NewGroupService(repo repositories.IGroupRepository) IGroupService {
	return &GroupService{groupRepository: repo}
}

func (s *GroupService) CreateGroup(name, userID string) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Group{}, errors.ErrGroupNameRequired
	}
	return s.groupRepository.CreateGroup(name, userID)
}

// JoinGroup resolves an invite code, case-insensitively the way users
// type them, and adds the caller to the member set.
func (s *GroupService) JoinGroup(code, userID string) (domain.Group, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Group{}, errors.ErrGroupCodeRequired
	}
	return s.groupRepository.JoinGroup(code, userID)
}

func (s *GroupService) ListGroups(userID string) ([]domain.Group, error) {
	return s.groupRepository.GroupsForUser(userID)
}
