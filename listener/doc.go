// Package listener turns raw Smartsheet webhook deliveries into
// routed actions. It validates signatures, parses both envelope
// shapes, gates duplicates, normalizes row events, and classifies
// status changes.
package listener
