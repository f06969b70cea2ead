// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.bug.st/serial"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	Long: `Enumerate the serial ports on this machine.

Useful for finding the right --port value when the controller's device
name is not known in advance.

Exit codes:
  0 - At least one port found
  1 - No serial ports available`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		return fmt.Errorf("enumerate serial ports: %w", err)
	}
	if len(ports) == 0 {
		return fmt.Errorf("no serial ports found")
	}

	for _, port := range ports {
		fmt.Println(port)
	}
	return nil
}
