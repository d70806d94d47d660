// Package dedup layers a persisted record store with an in-process
// TTL cache to suppress duplicate webhook deliveries.
package dedup
