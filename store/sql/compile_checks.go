package sqlstore

import "github.com/bvcollective/sheetbridge/core"

var (
	_ core.ProjectStore           = (*ProjectStore)(nil)
	_ core.ProjectStore           = (*CachedProjectStore)(nil)
	_ core.TemplateStore          = (*TemplateStore)(nil)
	_ core.DedupRecordStore       = (*DedupRecordStore)(nil)
	_ core.BridgeStores           = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
