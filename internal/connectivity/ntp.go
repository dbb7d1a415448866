package connectivity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// TimeSyncer reports how far the local clock is from true time.
type TimeSyncer interface {
	Offset(ctx context.Context) (time.Duration, error)
}

// NTPSyncer queries NTP servers in order and returns the first valid
// offset.
type NTPSyncer struct {
	Servers []string
	Timeout time.Duration

	// query is ntp.QueryWithOptions, replaceable in tests.
	query func(host string, opt ntp.QueryOptions) (*ntp.Response, error)
}

func NewNTPSyncer(servers []string, timeout time.Duration) *NTPSyncer {
	return &NTPSyncer{Servers: servers, Timeout: timeout, query: ntp.QueryWithOptions}
}

func (s *NTPSyncer) Offset(ctx context.Context) (time.Duration, error) {
	if len(s.Servers) == 0 {
		return 0, ErrNoServers
	}

	var errs []error
	for _, host := range s.Servers {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		resp, err := s.query(host, ntp.QueryOptions{Timeout: s.Timeout})
		if err == nil {
			err = resp.Validate()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", host, err))
			continue
		}
		return resp.ClockOffset, nil
	}
	return 0, fmt.Errorf("querying time servers: %w", errors.Join(errs...))
}
