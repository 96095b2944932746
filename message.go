package tmi

import (
	"fmt"
	"strings"
)

// Code returns the code token of a raw protocol line: the verb or numeric
// reply found between the first and second space-delimited fields. If the
// line has no second field the remainder after the first space is returned;
// a line without any space has no code.
func Code(line string) string {
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return ""
	}
	rest := line[i+1:]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		return rest[:j]
	}
	return rest
}

// ChannelToken extracts the channel name from a line, delimited by '#' and
// the following space. A trailing carriage return is stripped. The second
// return value is false when the line carries no channel token.
func ChannelToken(line string) (string, bool) {
	i := strings.IndexByte(line, '#')
	if i < 0 {
		return "", false
	}
	name := line[i+1:]
	if j := strings.IndexByte(name, ' '); j >= 0 {
		name = name[:j]
	}
	name = strings.TrimSuffix(name, "\r")
	if name == "" {
		return "", false
	}
	return name, true
}

// Trailing returns the trailing field of a line: the text after the first
// " :" separator, which is permitted to contain spaces.
func Trailing(line string) string {
	i := strings.Index(line, " :")
	if i < 0 {
		return ""
	}
	return line[i+2:]
}

// ParseHostmask parses a hostmask (nick!user@host).
func ParseHostmask(hostmask string) (nick, user, host string) {
	nickParts := strings.SplitN(hostmask, "!", 2)
	if len(nickParts) < 2 {
		nick = hostmask
		return
	}
	nick = nickParts[0]

	userHostParts := strings.SplitN(nickParts[1], "@", 2)
	if len(userHostParts) < 2 {
		user = nickParts[1]
		return
	}
	user = userHostParts[0]
	host = userHostParts[1]

	return
}

// FormatHostmask formats a hostmask.
func FormatHostmask(nick, user, host string) string {
	return fmt.Sprintf("%s!%s@%s", nick, user, host)
}

// prefixNick extracts the acting username from an IRC-style prefix: the
// substring between the leading ':' and the following '!'. An empty result
// means the line carries no usable prefix.
func prefixNick(line string) string {
	if len(line) == 0 || line[0] != ':' {
		return ""
	}
	if !strings.ContainsRune(line, '!') {
		return ""
	}
	nick, _, _ := ParseHostmask(line[1:])
	return nick
}
