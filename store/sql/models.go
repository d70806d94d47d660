package sqlstore

import (
	"strings"
	"time"

	"github.com/bvcollective/sheetbridge/core"
	"github.com/uptrace/bun"
)

type projectRecord struct {
	bun.BaseModel `bun:"table:bridge_projects,alias:bp"`

	ID             string    `bun:"id,pk"`
	ProjectKey     string    `bun:"project_key,notnull"`
	CompanyName    string    `bun:"company_name"`
	ProjectName    string    `bun:"project_name"`
	ProjectType    string    `bun:"project_type,notnull"`
	SiteID         string    `bun:"site_id"`
	DriveID        string    `bun:"drive_id"`
	JobFolderID    string    `bun:"job_folder_id"`
	ParentFolderID string    `bun:"parent_folder_id"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *projectRecord) toDomain() core.Project {
	if r == nil {
		return core.Project{}
	}
	return core.Project{
		Key:            r.ProjectKey,
		CompanyName:    r.CompanyName,
		ProjectName:    r.ProjectName,
		ProjectType:    r.ProjectType,
		SiteID:         r.SiteID,
		DriveID:        r.DriveID,
		JobFolderID:    r.JobFolderID,
		ParentFolderID: r.ParentFolderID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r *projectRecord) applyDomain(project core.Project, now time.Time) {
	r.ProjectKey = strings.TrimSpace(project.Key)
	r.CompanyName = strings.TrimSpace(project.CompanyName)
	r.ProjectName = strings.TrimSpace(project.ProjectName)
	r.ProjectType = strings.TrimSpace(project.ProjectType)
	r.SiteID = strings.TrimSpace(project.SiteID)
	r.DriveID = strings.TrimSpace(project.DriveID)
	r.JobFolderID = strings.TrimSpace(project.JobFolderID)
	r.ParentFolderID = strings.TrimSpace(project.ParentFolderID)
	r.UpdatedAt = now
}

type templateRecord struct {
	bun.BaseModel `bun:"table:bridge_templates,alias:bt"`

	ID               string    `bun:"id,pk"`
	Category         string    `bun:"category,notnull"`
	Name             string    `bun:"name,notnull"`
	TemplateFolderID string    `bun:"template_folder_id,notnull"`
	DriveID          string    `bun:"drive_id"`
	SiteID           string    `bun:"site_id"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *templateRecord) toDomain() core.Template {
	if r == nil {
		return core.Template{}
	}
	return core.Template{
		Category:         r.Category,
		Name:             r.Name,
		TemplateFolderID: r.TemplateFolderID,
		DriveID:          r.DriveID,
		SiteID:           r.SiteID,
	}
}

type dedupRecord struct {
	bun.BaseModel `bun:"table:bridge_dedup_records,alias:bd"`

	ID        string    `bun:"id,pk"`
	Signature string    `bun:"signature,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
