// Package runtime drives the OCI runtime backing pool containers. The
// ContainerDriver interface is the seam the Container Proxy uses for
// create/start/pause/resume/delete and status/IP lookups; ContainerdDriver
// implements it against a containerd daemon, and FakeDriver implements it
// in memory for tests.
//
// Unlike a long-running service's container, a pool container is expected
// to be paused rather than stopped between invocations, so Pause/Resume
// are first-class operations here, not an afterthought.
package runtime
