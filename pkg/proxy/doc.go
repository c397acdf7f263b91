// Package proxy implements the Container Proxy: the per-container actor
// that owns one runtime container's lifecycle (create, init, run,
// pause/resume, remove) and serializes jobs against it. A Proxy
// communicates with its supervisor only through Command and Event
// messages delivered over channels — no field of a Proxy is read or
// written from outside its own goroutine.
package proxy
