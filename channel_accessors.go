package tmi

import "sort"

// Accessor methods for the Channel struct

// Name returns the channel name.
func (ch *Channel) Name() string {
	ch.RLock()
	defer ch.RUnlock()
	return ch.name
}

// HasUser reports whether a username is in the roster.
func (ch *Channel) HasUser(username string) bool {
	ch.RLock()
	defer ch.RUnlock()
	return ch.users[username]
}

// Users returns the roster as a sorted slice.
func (ch *Channel) Users() []string {
	ch.RLock()
	defer ch.RUnlock()
	users := make([]string, 0, len(ch.users))
	for u := range ch.users {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// UserCount returns the roster size.
func (ch *Channel) UserCount() int {
	ch.RLock()
	defer ch.RUnlock()
	return len(ch.users)
}
