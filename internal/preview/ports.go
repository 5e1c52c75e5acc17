package preview

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrPortsExhausted is returned when every port in the configured
// range is already bound.
var ErrPortsExhausted = errors.New("preview: no free port in range")

// AllocatePort probes the inclusive range and returns the first port
// that accepts a listener. The listener is closed again immediately;
// the caller is expected to hand the port to the studio process right
// away.
func AllocatePort(min, max int) (int, error) {
	if min <= 0 || max < min {
		return 0, fmt.Errorf("preview: invalid port range %d-%d", min, max)
	}
	for port := min; port <= max; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err != nil {
			continue
		}
		l.Close()
		return port, nil
	}
	return 0, ErrPortsExhausted
}
