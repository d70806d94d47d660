package query

import (
	"github.com/bvcollective/sheetbridge/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[GetProjectMessage, core.Project]       = (*GetProjectQuery)(nil)
	_ gocmd.Querier[ListTemplatesMessage, []core.Template] = (*ListTemplatesQuery)(nil)
	_ gocmd.Querier[HealthMessage, core.HealthReport]      = (*HealthQuery)(nil)
)
