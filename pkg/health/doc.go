// Package health probes a container proxy's init-readiness endpoint over
// HTTP before the pool transitions a worker into PreWarmed or Warmed
// state. It also tracks consecutive pass/fail counts so a proxy can
// distinguish "still starting" from "broken".
package health
