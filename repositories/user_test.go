package repositories

import (
	"testing"

	"group-chat/errors"

	"github.com/stretchr/testify/require"
)

func Test_Create_And_Get_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	created, err := repository.CreateUser("alice", "$argon2id$fake-hash")
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.Equal("alice", created.Username)

	fetched, err := repository.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal(created.ID, fetched.ID)
	req.Equal("$argon2id$fake-hash", fetched.PasswordHash)
}

func Test_Create_User_Duplicate_Username(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice", "hash-one")
	req.NoError(err)

	_, err = repository.CreateUser("alice", "hash-two")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	// The original record is untouched.
	fetched, err := repository.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal("hash-one", fetched.PasswordHash)
}

func Test_Get_Unknown_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.GetUserByUsername("nobody")
	req.Error(err)
}
