// Package smartsheet is a minimal Smartsheet API client covering row
// fetches, column discovery, and the notebook-link write-back.
package smartsheet
