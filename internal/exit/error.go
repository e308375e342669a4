/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package exit

import "fmt"

// Error is an error type that contains a process exit code. This is intended for situations where
// you want to call os.Exit only in one place, but also want some deeply nested functions to decide
// what should be the exit code.
type Error int

// Exit codes used by the commands:
const (
	// Failed is used when the run fails. The details have already been written to the log.
	Failed Error = 1

	// Interrupted is used when the process is terminated by a second exit signal.
	Interrupted Error = 130
)

// Error is the implementation of the error interface.
func (e Error) Error() string {
	return fmt.Sprintf("%d", e)
}

// Code returns the exit code.
func (e Error) Code() int {
	return int(e)
}
