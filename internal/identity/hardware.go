package identity

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"

	"github.com/nerrad567/zen-display/internal/prefs"
)

// InterfaceLister is satisfied by net.Interfaces; tests inject their own.
type InterfaceLister func() ([]net.Interface, error)

// DetectHardwareID picks the id reported to the backend at registration.
//
// Order:
//  1. override, when non-empty
//  2. the MAC of the named interface, or of the first non-loopback
//     interface with a hardware address when name is empty or absent
//  3. a random UUID generated once and kept under hardware_id
func DetectHardwareID(ctx context.Context, override, name string, list InterfaceLister, store prefs.Store) (string, error) {
	if override != "" {
		return override, nil
	}

	if list != nil {
		if mac := pickMAC(list, name); mac != "" {
			return mac, nil
		}
	}

	if store == nil {
		return "", ErrNoHardwareID
	}
	if v, ok, err := store.Get(ctx, KeyHardwareID); err != nil {
		return "", fmt.Errorf("loading hardware id: %w", err)
	} else if ok && v != "" {
		return v, nil
	}

	id := uuid.NewString()
	if err := store.Put(ctx, map[string]string{KeyHardwareID: id}); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoHardwareID, err)
	}
	return id, nil
}

func pickMAC(list InterfaceLister, name string) string {
	ifaces, err := list()
	if err != nil {
		return ""
	}

	var first string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		mac := strings.ToUpper(iface.HardwareAddr.String())
		if name != "" && iface.Name == name {
			return mac
		}
		if first == "" {
			first = mac
		}
	}
	return first
}
