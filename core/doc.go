// Package core wires the webhook bridge together: configuration,
// error mapping, the dedup cache, and the Service that turns routed
// webhook events into folder and notebook provisioning work.
package core
