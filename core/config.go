package core

import (
	"fmt"
	"strings"
)

// ListenerConfig controls webhook validation and classification.
type ListenerConfig struct {
	SharedSecret        string   `koanf:"shared_secret" mapstructure:"shared_secret"`
	SignatureHeader     string   `koanf:"signature_header" mapstructure:"signature_header"`
	StatusColumnID      string   `koanf:"status_column_id" mapstructure:"status_column_id"`
	ProjectColumnID     string   `koanf:"project_column_id" mapstructure:"project_column_id"`
	CategoryColumnID    string   `koanf:"category_column_id" mapstructure:"category_column_id"`
	ProjectNameColumnID string   `koanf:"project_name_column_id" mapstructure:"project_name_column_id"`
	CompanyColumnID     string   `koanf:"company_column_id" mapstructure:"company_column_id"`
	DealWonValue        string   `koanf:"deal_won_value" mapstructure:"deal_won_value"`
	EarlyStageValues    []string `koanf:"early_stage_values" mapstructure:"early_stage_values"`
}

// SmartsheetConfig holds the sheet API client settings.
type SmartsheetConfig struct {
	APIBase                 string `koanf:"api_base" mapstructure:"api_base"`
	Token                   string `koanf:"token" mapstructure:"token"`
	TimeoutSeconds          int    `koanf:"timeout_seconds" mapstructure:"timeout_seconds"`
	NotebookLinkColumnID    int64  `koanf:"notebook_link_column_id" mapstructure:"notebook_link_column_id"`
	DescriptionColumnID     string `koanf:"description_column_id" mapstructure:"description_column_id"`
	SiteAddressColumnID     string `koanf:"site_address_column_id" mapstructure:"site_address_column_id"`
	CustomerContactColumnID string `koanf:"customer_contact_column_id" mapstructure:"customer_contact_column_id"`
}

// GraphConfig holds the Microsoft Graph client settings.
type GraphConfig struct {
	APIBase               string `koanf:"api_base" mapstructure:"api_base"`
	TenantID              string `koanf:"tenant_id" mapstructure:"tenant_id"`
	ClientID              string `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret          string `koanf:"client_secret" mapstructure:"client_secret"`
	DelegatedClientID     string `koanf:"delegated_client_id" mapstructure:"delegated_client_id"`
	DelegatedRefreshToken string `koanf:"delegated_refresh_token" mapstructure:"delegated_refresh_token"`
	Scope                 string `koanf:"scope" mapstructure:"scope"`
	SharePointHostname    string `koanf:"sharepoint_hostname" mapstructure:"sharepoint_hostname"`
	TimeoutSeconds        int    `koanf:"timeout_seconds" mapstructure:"timeout_seconds"`
	CopyTimeoutSeconds    int    `koanf:"copy_timeout_seconds" mapstructure:"copy_timeout_seconds"`
	CopyPollSeconds       int    `koanf:"copy_poll_seconds" mapstructure:"copy_poll_seconds"`
}

// DedupConfig controls delivery deduplication windows.
type DedupConfig struct {
	PersistedTTLSeconds int `koanf:"persisted_ttl_seconds" mapstructure:"persisted_ttl_seconds"`
	MemoryTTLSeconds    int `koanf:"memory_ttl_seconds" mapstructure:"memory_ttl_seconds"`
	MaxMemoryEntries    int `koanf:"max_memory_entries" mapstructure:"max_memory_entries"`
}

type Config struct {
	ServiceName string           `koanf:"service_name" mapstructure:"service_name"`
	Listener    ListenerConfig   `koanf:"listener" mapstructure:"listener"`
	Smartsheet  SmartsheetConfig `koanf:"smartsheet" mapstructure:"smartsheet"`
	Graph       GraphConfig      `koanf:"graph" mapstructure:"graph"`
	Dedup       DedupConfig      `koanf:"dedup" mapstructure:"dedup"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "sheetbridge",
		Listener: ListenerConfig{
			SignatureHeader:     "Smartsheet-Hook-Signature",
			StatusColumnID:      "593432251944836",
			ProjectColumnID:     "3408182019051396",
			CategoryColumnID:    "5878702367002500",
			ProjectNameColumnID: "3534360453271428",
			CompanyColumnID:     "1475623376867204",
			DealWonValue:        "Closed Won",
			EarlyStageValues:    []string{"Prospecting", "Qualification", "Proposal"},
		},
		Smartsheet: SmartsheetConfig{
			APIBase:                 "https://api.smartsheet.com/2.0",
			TimeoutSeconds:          30,
			NotebookLinkColumnID:    3086497829048196,
			DescriptionColumnID:     "1375102739632004",
			SiteAddressColumnID:     "1611314616291204",
			CustomerContactColumnID: "7911781646421892",
		},
		Graph: GraphConfig{
			APIBase:            "https://graph.microsoft.com/v1.0",
			Scope:              "https://graph.microsoft.com/.default",
			TimeoutSeconds:     30,
			CopyTimeoutSeconds: 300,
			CopyPollSeconds:    5,
		},
		Dedup: DedupConfig{
			PersistedTTLSeconds: 1800,
			MemoryTTLSeconds:    300,
			MaxMemoryEntries:    8192,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Listener.StatusColumnID) == "" {
		return fmt.Errorf("core: listener.status_column_id is required")
	}
	if strings.TrimSpace(c.Listener.DealWonValue) == "" {
		return fmt.Errorf("core: listener.deal_won_value is required")
	}
	if c.Dedup.PersistedTTLSeconds <= 0 {
		return fmt.Errorf("core: dedup.persisted_ttl_seconds must be positive")
	}
	if c.Dedup.MemoryTTLSeconds <= 0 {
		return fmt.Errorf("core: dedup.memory_ttl_seconds must be positive")
	}
	if c.Smartsheet.TimeoutSeconds < 0 || c.Graph.TimeoutSeconds < 0 {
		return fmt.Errorf("core: client timeouts must not be negative")
	}
	return nil
}
