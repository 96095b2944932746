package tmi

import "sort"

// Accessor methods for the Client struct

// Host returns the host from the last Connect.
func (c *Client) Host() string {
	c.RLock()
	defer c.RUnlock()
	return c.host
}

// Port returns the port from the last Connect.
func (c *Client) Port() int {
	c.RLock()
	defer c.RUnlock()
	return c.port
}

// Username returns the username from the last Login.
func (c *Client) Username() string {
	c.RLock()
	defer c.RUnlock()
	return c.username
}

// LoggedIn reports whether the server has confirmed the login handshake.
func (c *Client) LoggedIn() bool {
	c.RLock()
	defer c.RUnlock()
	return c.loggedIn
}

// ReceiveBufferSize returns the maximum bytes pulled per Receive call.
func (c *Client) ReceiveBufferSize() int {
	c.RLock()
	defer c.RUnlock()
	return c.maxBuf
}

// SetReceiveBufferSize sets the maximum bytes pulled per Receive call.
// Values below one are ignored.
func (c *Client) SetReceiveBufferSize(n int) {
	if n < 1 {
		return
	}
	c.Lock()
	defer c.Unlock()
	c.maxBuf = n
}

// ChannelNames returns the names of all registered channels, sorted.
func (c *Client) ChannelNames() []string {
	c.RLock()
	names := make([]string, 0, len(c.channels))
	for name := range c.channels {
		names = append(names, name)
	}
	c.RUnlock()
	sort.Strings(names)
	return names
}
