package command

import (
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Commander[ProcessWebhookMessage]   = (*ProcessWebhookCommand)(nil)
	_ gocmd.Commander[PurgeDedupMessage]       = (*PurgeDedupCommand)(nil)
	_ gocmd.Commander[RegisterTemplateMessage] = (*RegisterTemplateCommand)(nil)
	_ gocmd.Commander[UpsertProjectMessage]    = (*UpsertProjectCommand)(nil)
)
