package tmi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultReceiveBufferSize bounds a single Receive call.
const DefaultReceiveBufferSize = 512

const (
	// vendorPrefix marks provider control lines routed to the vendor handler.
	vendorPrefix = ":jtv "
	// subscriptionNotifier is the vendor identity whose messages announce
	// channel subscriptions.
	subscriptionNotifier = "twitchnotify"

	// anonymousNick is the prefix of the provider's read-only login identities.
	anonymousNick = "justinfan"
	// anonymousToken is the dummy token accepted for anonymous logins.
	anonymousToken = "oauth:99999"
)

// Login replies that confirm registration, and the tokens that reject it.
const (
	codeMyInfo      = "004"
	codeMOTDStart   = "375"
	codeNamesReply  = "353"
	codeNotice      = "NOTICE"
	loginSuccessMsg = "Login successful."
)

var (
	// ErrNotConnected is returned by operations that require an open transport.
	ErrNotConnected = errors.New("tmi: not connected")
	// ErrNotLoggedIn is returned by Logout when no login is active.
	ErrNotLoggedIn = errors.New("tmi: not logged in")
	// ErrNotJoined is returned by SendMessage for an unregistered channel.
	ErrNotJoined = errors.New("tmi: not joined to channel")
)

// Client is the protocol engine for a line-oriented chat session. It owns the
// session identity, the login state, and the channel registry, and dispatches
// inbound lines to event subscribers.
//
// The engine is synchronous: ProcessNextLine blocks on the transport and
// fully processes one chunk before returning. The embedded lock makes the
// intended single-writer discipline explicit for callers that drive the
// polling loop from one goroutine and issue commands from another.
type Client struct {
	sync.RWMutex
	transport Transport
	host      string
	port      int
	username  string
	loggedIn  bool
	channels  map[string]*Channel
	events    *Events
	maxBuf    int

	// Debug enables receive/send line tracing to the standard logger.
	Debug bool
}

// NewClient creates a client engine on the given transport.
func NewClient(transport Transport) *Client {
	return &Client{
		transport: transport,
		channels:  make(map[string]*Channel),
		events:    newEvents(),
		maxBuf:    DefaultReceiveBufferSize,
	}
}

// AnonymousCredentials returns a username/token pair for the provider's
// read-only anonymous login convention.
func AnonymousCredentials() (username, token string) {
	u := uuid.New()
	return fmt.Sprintf("%s%d", anonymousNick, binary.BigEndian.Uint32(u[0:4])), anonymousToken
}

// Alive reports whether the transport is open.
func (c *Client) Alive() bool {
	return c.transport != nil && c.transport.Connected()
}

// Connect opens the transport to host:port. An already-open transport is
// closed first. On success the connect event fires with the stored endpoint.
func (c *Client) Connect(host string, port int) error {
	if c.Alive() {
		c.transport.Close()
	}
	if err := c.transport.Connect(host, port); err != nil {
		return err
	}
	c.Lock()
	c.host = host
	c.port = port
	c.Unlock()
	connectsTotal.Inc()
	c.fireConnect(ConnectEvent{Host: host, Port: port})
	return nil
}

// ConnectAndLogin connects then performs the login handshake.
func (c *Client) ConnectAndLogin(host string, port int, username, password string) error {
	if err := c.Connect(host, port); err != nil {
		return err
	}
	return c.Login(username, password)
}

// Login starts the PASS/NICK/USER handshake. It requires an open transport;
// an already-logged-in session is fully reconnected first, which drops the
// channel registry. The logged-in flag is not set here: the transition is
// driven by the server's registration numeric (004 or 375).
func (c *Client) Login(username, password string) error {
	if !c.Alive() {
		return ErrNotConnected
	}
	if c.LoggedIn() {
		if err := c.Reconnect(); err != nil {
			return err
		}
	}

	c.Lock()
	c.loggedIn = false
	c.username = username
	c.Unlock()
	c.clearChannels()

	if err := c.sendRaw(fmt.Sprintf("PASS %s", password)); err != nil {
		return err
	}
	if err := c.sendRaw(fmt.Sprintf("NICK %s", username)); err != nil {
		return err
	}
	return c.sendRaw(fmt.Sprintf("USER %s 8 * :%s", username, username))
}

// Logout quits the session. It requires an active login; it clears the
// logged-in flag, sends QUIT, fires the logout event, and drops the channel
// registry.
func (c *Client) Logout() error {
	if !c.LoggedIn() {
		return ErrNotLoggedIn
	}
	c.Lock()
	c.loggedIn = false
	username := c.username
	c.Unlock()

	if err := c.sendRaw("QUIT :Logout"); err != nil {
		return err
	}
	c.fireLogout(LogoutEvent{Username: username})
	c.clearChannels()
	return nil
}

// Reconnect re-invokes Connect with the stored endpoint, dropping the
// transport and any channel or login state tied to it. It is a no-op before
// the first Connect.
func (c *Client) Reconnect() error {
	host, port := c.Host(), c.Port()
	if host == "" {
		return nil
	}
	return c.Connect(host, port)
}

// Close shuts the transport down. Safe to call on a closed session.
func (c *Client) Close() error {
	c.Lock()
	c.loggedIn = false
	c.Unlock()
	if c.transport == nil {
		return nil
	}
	return c.transport.Close()
}

// sendRaw sends one protocol line over the transport.
func (c *Client) sendRaw(line string) error {
	if c.Debug {
		log.Printf("[%s] => %s", c.Username(), line)
	}
	verb := line
	if i := strings.IndexByte(verb, ' '); i >= 0 {
		verb = verb[:i]
	}
	linesSent.WithLabelValues(verb).Inc()
	return c.transport.Send([]byte(line + "\r\n"))
}

// ProcessNextLine pulls one chunk from the transport and dispatches every
// line in it. It is a no-op when the transport is closed. A zero-length read
// means the remote closed the connection; the session is closed with no
// further event. Lines are split on '\n' with empty segments skipped; a
// partial line at a chunk boundary is processed as-is, not reassembled.
func (c *Client) ProcessNextLine() error {
	if !c.Alive() {
		return nil
	}
	chunk, err := c.transport.Receive(c.ReceiveBufferSize())
	if err != nil {
		return err
	}
	if len(chunk) == 0 {
		return c.Close()
	}

	for _, line := range strings.Split(string(chunk), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if c.Debug {
			log.Printf("[%s] <= %#v", c.Username(), line)
		}

		code := Code(line)
		if code != "" {
			linesProcessed.WithLabelValues(code).Inc()
			c.processCode(line, code)
		}
		if strings.HasPrefix(line, vendorPrefix) {
			c.processVendorLine(line)
		} else {
			c.processLine(line, code)
		}
	}
	return nil
}

// processCode handles numeric replies and server-level command tokens. The
// registration branch and the failure branch are deliberately independent
// checks, not arms of one switch: a line is allowed to satisfy both.
func (c *Client) processCode(line, code string) {
	if code == codeNamesReply {
		c.mergeNamesReply(line)
	}

	if (code == codeMyInfo || code == codeMOTDStart) && !c.LoggedIn() {
		c.Lock()
		c.loggedIn = true
		c.Unlock()
		c.fireLogin(LoginEvent{
			Success:  true,
			Code:     code,
			Message:  loginSuccessMsg,
			Username: c.Username(),
		})
	}

	if code[0] == '5' || code[0] == '4' || code == codeNotice {
		c.fireLogin(LoginEvent{
			Success:  false,
			Code:     code,
			Message:  Trailing(line),
			Username: c.Username(),
		})
	}
}

// mergeNamesReply folds a 353 NAMES reply into the channel's roster. Names
// already present are skipped, so redelivery leaves the roster unchanged.
func (c *Client) mergeNamesReply(line string) {
	name, ok := ChannelToken(line)
	if !ok {
		return
	}
	channel := c.GetChannelByName(name)
	if channel == nil {
		return
	}
	for _, username := range strings.Fields(Trailing(line)) {
		channel.addUser(username)
	}
}

// processLine handles general commands addressed to a channel.
func (c *Client) processLine(line, code string) {
	if strings.HasPrefix(line, "PING") {
		token := strings.TrimPrefix(line, "PING ")
		// A failed PONG surfaces as a transport error on the next read.
		_ = c.sendRaw(fmt.Sprintf("PONG %s", token))
		c.firePing()
		return
	}

	name, ok := ChannelToken(line)
	if !ok {
		return
	}
	channel := c.GetChannelByName(name)
	if channel == nil {
		return
	}

	username := prefixNick(line)
	if username == "" {
		return
	}

	if username == subscriptionNotifier {
		subscriber := Trailing(line)
		if i := strings.IndexByte(subscriber, ' '); i >= 0 {
			subscriber = subscriber[:i]
		}
		c.fireSubscription(SubscriptionEvent{Channel: channel, Username: subscriber})
		return
	}

	switch code {
	case "PRIVMSG":
		c.fireMessage(MessageEvent{
			Channel:  channel,
			Username: username,
			Text:     Trailing(line),
		})
	case "JOIN":
		if channel.addUser(username) {
			c.fireJoin(JoinEvent{Channel: channel, Username: username})
		}
	case "PART":
		if channel.removeUser(username) {
			c.fireLeave(LeaveEvent{Channel: channel, Username: username})
		}
	}
}

// processVendorLine is the extension point for provider control lines.
// Nothing is dispatched for them yet.
func (c *Client) processVendorLine(_ string) {}
