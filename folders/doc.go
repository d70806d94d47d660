// Package folders provisions SharePoint project folders by copying
// registered template folders, with cross-drive support and optional
// skip-existing semantics.
package folders
