package services

import "github.com/messagely/apiserver/types"

// AuthorizeRead reports whether requester may read the message: only the
// sender and the recipient may.
func AuthorizeRead(message types.MessageDetail, requester string) bool {
	return requester == message.FromUser.Username || requester == message.ToUser.Username
}

// AuthorizeMarkRead reports whether requester may mark the message as read:
// only the recipient may, never the sender or a third party.
func AuthorizeMarkRead(message types.MessageDetail, requester string) bool {
	return requester == message.ToUser.Username
}
