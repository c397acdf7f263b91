// Package config defines the invoker's top-level configuration surface,
// loaded from YAML by cmd/invoker and converted into the pool, proxy,
// and health configs those packages actually consume.
package config
