// Package process runs helper binaries to completion with bounded time and
// output.
//
// The display drives the network stack through command-line tools such as
// nmcli. Each call runs in its own process group so a hung helper and any
// children it spawned are terminated together: SIGTERM first, SIGKILL once
// the grace period runs out.
//
// Example usage:
//
//	nmcli := process.NewRunner(process.Config{
//	    Name:    "nmcli",
//	    Binary:  "/usr/bin/nmcli",
//	    Timeout: 10 * time.Second,
//	})
//
//	res, err := nmcli.Run(ctx, "-t", "-f", "STATE", "general")
package process
