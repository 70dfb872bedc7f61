// Package cli provides the interactive operator console of the scanner.
//
// It wires configuration, local storage, the authority client and the
// admission and sync services behind a line-oriented REPL. A connectivity
// watcher and a sync scheduler run in the background while the operator
// scans passes; admission itself never waits for the network.
//
// Typical flow: obtain an access token (flag or hidden prompt), pick a gate,
// download the entry list when online, then scan. Admitted scans are queued
// locally and uploaded by the scheduler, on reconnect or on request.
//
// The console is started via App.Run(ctx), which blocks until the operator
// exits. See Open for the production wiring and runREPL for the commands.
package cli
