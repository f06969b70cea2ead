// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber
//
// Globe - host-side tooling for the framed LED serial link.

package main

import (
	"fmt"
	"os"

	"github.com/raziber/globe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
