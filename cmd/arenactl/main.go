// Package main provides arenactl, the operator CLI for the battle arena:
// offline battle simulation, roster seeding, pet stats and trainer records.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
