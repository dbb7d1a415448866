package connectivity

import "errors"

var (
	// ErrNoServers is returned by NTPSyncer when no servers are configured.
	ErrNoServers = errors.New("connectivity: no time servers configured")

	// ErrNoActiveNetwork is returned by Quality when the link is not
	// associated with any network.
	ErrNoActiveNetwork = errors.New("connectivity: no active wifi network")
)
