/*
Package types defines the data model shared by the invoker's container
pool scheduler: action descriptors, invocation requests, and the
tagged-variant container data carried between the supervisor and its
container proxies.

All types here are plain value structs with no behavior beyond
equality and field extraction; the scheduling logic that consumes them
lives in pkg/policy, pkg/proxy, and pkg/pool.
*/
package types
