package wait

import (
	"net"
	"time"
)

// ForTCP waits until a TCP connection can be established
func ForTCP(address string, opts ...*Options) error {
	return Until(func() (bool, error) {
		conn, err := net.DialTimeout("tcp", address, 5*time.Second)
		if err != nil {
			return false, nil // Ignore error and retry
		}
		conn.Close()
		return true, nil
	}, opts...)
}
