// Package dispatch runs rule actions as shell commands.
//
// A Dispatcher is called synchronously from the driver loop. The Shell
// implementation runs "bash -c <command>" with the user's home directory as
// the working directory, so actions behave the same as typing them into an
// interactive shell. Failures are returned as *Error and are never fatal to
// the caller.
package dispatch
