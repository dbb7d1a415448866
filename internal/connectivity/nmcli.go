package connectivity

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/zen-display/internal/process"
)

// NMCLILink drives NetworkManager through nmcli in terse mode.
type NMCLILink struct {
	nmcli process.Commander
	iface string
}

// NewNMCLILink returns a link for interface iface run through nmcli.
func NewNMCLILink(nmcli process.Commander, iface string) *NMCLILink {
	return &NMCLILink{nmcli: nmcli, iface: iface}
}

func (l *NMCLILink) Join(ctx context.Context, ssid, password string) error {
	args := []string{"--wait", "0", "device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	args = append(args, "ifname", l.iface)

	if _, err := l.nmcli.Run(ctx, args...); err != nil {
		return fmt.Errorf("joining %q: %w", ssid, err)
	}
	return nil
}

func (l *NMCLILink) Connected(ctx context.Context) bool {
	res, err := l.nmcli.Run(ctx, "-t", "-f", "DEVICE,STATE", "device", "status")
	if err != nil {
		return false
	}
	for _, fields := range terseLines(res.Stdout) {
		if len(fields) >= 2 && fields[0] == l.iface {
			return fields[1] == "connected"
		}
	}
	return false
}

func (l *NMCLILink) Quality(ctx context.Context) (Quality, error) {
	res, err := l.nmcli.Run(ctx, "-t", "-f", "ACTIVE,SSID,SIGNAL", "device", "wifi", "list", "ifname", l.iface, "--rescan", "no")
	if err != nil {
		return Quality{}, fmt.Errorf("listing networks: %w", err)
	}
	for _, fields := range terseLines(res.Stdout) {
		if len(fields) < 3 || fields[0] != "yes" {
			continue
		}
		signal, err := strconv.Atoi(fields[2])
		if err != nil {
			return Quality{}, fmt.Errorf("parsing signal %q: %w", fields[2], err)
		}
		return Quality{SSID: fields[1], RSSI: SignalToDBm(signal)}, nil
	}
	return Quality{}, ErrNoActiveNetwork
}

// SignalToDBm converts NetworkManager's 0-100 signal percentage to an
// approximate RSSI, using the same linear mapping NetworkManager uses in
// the other direction.
func SignalToDBm(signal int) int {
	signal = max(0, min(signal, 100))
	return signal/2 - 100
}

// terseLines splits nmcli -t output into fields. Colons inside values are
// escaped as "\:" and backslashes as "\\".
func terseLines(out []byte) [][]string {
	var lines [][]string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		lines = append(lines, splitTerse(line))
	}
	return lines
}

func splitTerse(line string) []string {
	var fields []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cur.String())
}
