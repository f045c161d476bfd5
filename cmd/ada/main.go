// Command ada is a personal process supervisor: a declarative list of
// long-running local jobs, lifecycle control over them, at-a-glance
// status, log tailing, and an optional background watcher that
// auto-restarts enabled services with crash-loop protection.
package main

import "os"

func main() {
	os.Exit(run())
}
