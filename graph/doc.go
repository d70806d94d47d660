// Package graph is a Microsoft Graph client covering the drive, site,
// and OneNote surface the bridge provisions against. It holds both an
// application token and a delegated token, refreshing each lazily.
package graph
