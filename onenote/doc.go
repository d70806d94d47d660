// Package onenote publishes project documentation into OneNote notebooks
// hosted on SharePoint sites. Each company gets a shared notebook, each
// project a section inside it, and each section an initial page carrying a
// table of the project's row data.
package onenote
