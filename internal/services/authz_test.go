package services

import (
	"testing"

	"github.com/messagely/apiserver/types"
	"github.com/stretchr/testify/assert"
)

func detailBetween(from, to string) types.MessageDetail {
	return types.MessageDetail{
		ID:       1,
		Body:     "hi",
		FromUser: types.UserSummary{Username: from},
		ToUser:   types.UserSummary{Username: to},
	}
}

func TestAuthorizeRead(t *testing.T) {
	t.Parallel()

	message := detailBetween("alice", "bob")

	assert.True(t, AuthorizeRead(message, "alice"))
	assert.True(t, AuthorizeRead(message, "bob"))
	assert.False(t, AuthorizeRead(message, "mallory"))
	assert.False(t, AuthorizeRead(message, ""))
}

func TestAuthorizeMarkRead(t *testing.T) {
	t.Parallel()

	message := detailBetween("alice", "bob")

	assert.True(t, AuthorizeMarkRead(message, "bob"))
	assert.False(t, AuthorizeMarkRead(message, "alice"))
	assert.False(t, AuthorizeMarkRead(message, "mallory"))
}

func TestAuthorizeMarkRead_SelfMessage(t *testing.T) {
	t.Parallel()

	// A user messaging themselves is both sender and recipient, so the
	// recipient rule still admits them.
	message := detailBetween("alice", "alice")

	assert.True(t, AuthorizeMarkRead(message, "alice"))
	assert.False(t, AuthorizeMarkRead(message, "bob"))
}
