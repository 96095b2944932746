package tmi

import (
	"fmt"
	"sync"
)

// Channel represents a joined channel and its roster: the set of usernames
// currently believed to be present. A username appears at most once.
type Channel struct {
	sync.RWMutex
	name  string
	users map[string]bool
}

func newChannel(name string) *Channel {
	return &Channel{
		name:  name,
		users: make(map[string]bool),
	}
}

// addUser adds a username to the roster. Returns false if already present.
func (ch *Channel) addUser(username string) bool {
	ch.Lock()
	defer ch.Unlock()
	if ch.users[username] {
		return false
	}
	ch.users[username] = true
	return true
}

// removeUser removes a username from the roster. Returns false if absent.
func (ch *Channel) removeUser(username string) bool {
	ch.Lock()
	defer ch.Unlock()
	if !ch.users[username] {
		return false
	}
	delete(ch.users, username)
	return true
}

// Join sends JOIN for the channel and registers it with an empty roster.
// Registration is optimistic: it happens before any server acknowledgment,
// and a repeated Join replaces the previous entry.
func (c *Client) Join(name string) error {
	if err := c.sendRaw(fmt.Sprintf("JOIN #%s", name)); err != nil {
		return err
	}
	c.Lock()
	c.channels[name] = newChannel(name)
	c.Unlock()
	return nil
}

// Leave sends PART for the channel and removes it from the registry. PART is
// sent whether or not the channel is registered; the channel-left event fires
// either way, with a nil Channel when the name was unknown.
func (c *Client) Leave(name string) error {
	channel := c.GetChannelByName(name)
	if err := c.sendRaw(fmt.Sprintf("PART #%s", name)); err != nil {
		return err
	}
	if channel != nil {
		c.Lock()
		delete(c.channels, name)
		c.Unlock()
	}
	c.fireLeave(LeaveEvent{Channel: channel, Username: c.Username()})
	return nil
}

// IsConnectedTo reports whether the channel name is registered.
func (c *Client) IsConnectedTo(name string) bool {
	return c.GetChannelByName(name) != nil
}

// GetChannelByName returns the registered channel with the exact name, or nil.
func (c *Client) GetChannelByName(name string) *Channel {
	c.RLock()
	defer c.RUnlock()
	return c.channels[name]
}

// SendMessage sends a PRIVMSG to a joined channel. It refuses, without
// transmitting, when the channel is not registered.
func (c *Client) SendMessage(channelName, text string) error {
	if !c.IsConnectedTo(channelName) {
		return fmt.Errorf("%w: %s", ErrNotJoined, channelName)
	}
	return c.sendRaw(fmt.Sprintf("PRIVMSG #%s :%s", channelName, text))
}

// clearChannels drops the whole registry. Called on Login and Logout.
func (c *Client) clearChannels() {
	c.Lock()
	c.channels = make(map[string]*Channel)
	c.Unlock()
}
