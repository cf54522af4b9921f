// Package main is the entry point for shoald, the storage appliance
// management daemon.
package main

func main() {
	Execute()
}
