package main

import "fmt"

// Overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func versionCommand() {
	fmt.Println("mongobak " + version)
}
