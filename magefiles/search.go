//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the binary and runs one ranked search. Set QUERY to the
// search string.
func Search() error {
	mg.Deps(Build)
	q := getenv("QUERY", "transformers")
	fmt.Printf("[search] %q\n", q)
	return sh.RunV("bin/aihub", "search", q, "--log-format", "console")
}
