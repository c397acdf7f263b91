// Package log wraps zerolog with the invoker's component-logger
// conventions. See pkg/pool, pkg/proxy, and pkg/feed for the component
// names in use ("pool", "proxy", "feed").
package log
