package core

import "testing"

func TestGoOptionsResolverRuntimeOverrides(t *testing.T) {
	defaults := DefaultConfig()

	runtime := Config{}
	runtime.Listener.ProjectNameColumnID = "111"
	runtime.Listener.CompanyColumnID = "222"
	runtime.Smartsheet.NotebookLinkColumnID = 333
	runtime.Smartsheet.DescriptionColumnID = "444"
	runtime.Smartsheet.SiteAddressColumnID = "555"
	runtime.Smartsheet.CustomerContactColumnID = "666"
	runtime.Graph.DelegatedClientID = "delegated-1"
	runtime.Graph.DelegatedRefreshToken = "refresh-1"
	runtime.Graph.Scope = "Notes.ReadWrite.All"
	runtime.Graph.SharePointHostname = "contoso.sharepoint.com"
	runtime.Graph.CopyTimeoutSeconds = 120
	runtime.Graph.CopyPollSeconds = 2

	resolved, err := GoOptionsResolver{}.Resolve(defaults, Config{}, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resolved.Listener.ProjectNameColumnID != "111" {
		t.Fatalf("project name column override lost: got %q", resolved.Listener.ProjectNameColumnID)
	}
	if resolved.Listener.CompanyColumnID != "222" {
		t.Fatalf("company column override lost: got %q", resolved.Listener.CompanyColumnID)
	}
	if resolved.Smartsheet.NotebookLinkColumnID != 333 {
		t.Fatalf("notebook link column override lost: got %d", resolved.Smartsheet.NotebookLinkColumnID)
	}
	if resolved.Smartsheet.DescriptionColumnID != "444" {
		t.Fatalf("description column override lost: got %q", resolved.Smartsheet.DescriptionColumnID)
	}
	if resolved.Smartsheet.SiteAddressColumnID != "555" {
		t.Fatalf("site address column override lost: got %q", resolved.Smartsheet.SiteAddressColumnID)
	}
	if resolved.Smartsheet.CustomerContactColumnID != "666" {
		t.Fatalf("customer contact column override lost: got %q", resolved.Smartsheet.CustomerContactColumnID)
	}
	if resolved.Graph.DelegatedClientID != "delegated-1" {
		t.Fatalf("delegated client override lost: got %q", resolved.Graph.DelegatedClientID)
	}
	if resolved.Graph.DelegatedRefreshToken != "refresh-1" {
		t.Fatalf("delegated refresh token override lost: got %q", resolved.Graph.DelegatedRefreshToken)
	}
	if resolved.Graph.Scope != "Notes.ReadWrite.All" {
		t.Fatalf("scope override lost: got %q", resolved.Graph.Scope)
	}
	if resolved.Graph.SharePointHostname != "contoso.sharepoint.com" {
		t.Fatalf("hostname override lost: got %q", resolved.Graph.SharePointHostname)
	}
	if resolved.Graph.CopyTimeoutSeconds != 120 {
		t.Fatalf("copy timeout override lost: got %d", resolved.Graph.CopyTimeoutSeconds)
	}
	if resolved.Graph.CopyPollSeconds != 2 {
		t.Fatalf("copy poll override lost: got %d", resolved.Graph.CopyPollSeconds)
	}

	// Fields with no override keep their defaults.
	if resolved.Listener.StatusColumnID != defaults.Listener.StatusColumnID {
		t.Fatalf("unexpected status column %q", resolved.Listener.StatusColumnID)
	}
	if resolved.Smartsheet.APIBase != defaults.Smartsheet.APIBase {
		t.Fatalf("unexpected api base %q", resolved.Smartsheet.APIBase)
	}
}

func TestGoOptionsResolverLoadedLayerPrecedence(t *testing.T) {
	defaults := DefaultConfig()

	loaded := Config{}
	loaded.Smartsheet.DescriptionColumnID = "loaded-col"
	loaded.Graph.CopyTimeoutSeconds = 60

	runtime := Config{}
	runtime.Graph.CopyTimeoutSeconds = 90

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resolved.Smartsheet.DescriptionColumnID != "loaded-col" {
		t.Fatalf("loaded layer lost: got %q", resolved.Smartsheet.DescriptionColumnID)
	}
	if resolved.Graph.CopyTimeoutSeconds != 90 {
		t.Fatalf("runtime layer must win over loaded: got %d", resolved.Graph.CopyTimeoutSeconds)
	}
}
