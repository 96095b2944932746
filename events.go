package tmi

import "github.com/tmipkg/tmi/hooks"

// ConnectEvent is fired when the transport is established.
type ConnectEvent struct {
	Host string
	Port int
}

// LoginEvent reports the outcome of the login handshake. Success carries the
// numeric that confirmed registration; failure carries the rejecting code and
// the server's trailing text.
type LoginEvent struct {
	Success  bool
	Code     string
	Message  string
	Username string
}

// JoinEvent is fired when a user enters a channel's roster.
type JoinEvent struct {
	Channel  *Channel
	Username string
}

// PingEvent is fired for every server PING after the PONG reply is sent.
type PingEvent struct{}

// MessageEvent carries a channel message.
type MessageEvent struct {
	Channel  *Channel
	Username string
	Text     string
}

// SubscriptionEvent is fired for subscription notices from the vendor's
// notifier identity.
type SubscriptionEvent struct {
	Channel  *Channel
	Username string
}

// LeaveEvent is fired when a user leaves a channel's roster, and when the
// session itself leaves a channel. Channel is nil when the session left a
// channel it never had registered.
type LeaveEvent struct {
	Channel  *Channel
	Username string
}

// LogoutEvent is fired when the session logs out.
type LogoutEvent struct {
	Username string
}

// Events holds one hook registry per event kind. Each registry fans out to
// its subscribers in registration order.
type Events struct {
	Connect      *hooks.Registry[ConnectEvent]
	Login        *hooks.Registry[LoginEvent]
	Join         *hooks.Registry[JoinEvent]
	Ping         *hooks.Registry[PingEvent]
	Message      *hooks.Registry[MessageEvent]
	Subscription *hooks.Registry[SubscriptionEvent]
	Leave        *hooks.Registry[LeaveEvent]
	Logout       *hooks.Registry[LogoutEvent]
}

func newEvents() *Events {
	return &Events{
		Connect:      hooks.NewRegistry[ConnectEvent](),
		Login:        hooks.NewRegistry[LoginEvent](),
		Join:         hooks.NewRegistry[JoinEvent](),
		Ping:         hooks.NewRegistry[PingEvent](),
		Message:      hooks.NewRegistry[MessageEvent](),
		Subscription: hooks.NewRegistry[SubscriptionEvent](),
		Leave:        hooks.NewRegistry[LeaveEvent](),
		Logout:       hooks.NewRegistry[LogoutEvent](),
	}
}

// Events exposes the hook registries for advanced subscribers (priorities,
// clearing). Most callers use the On* helpers below.
func (c *Client) Events() *Events {
	return c.events
}

// OnConnect registers a hook fired after the transport is established.
func (c *Client) OnConnect(h hooks.Hook[ConnectEvent]) {
	c.events.Connect.Register(h)
}

// OnLogin registers a hook fired for login results, success and failure alike.
func (c *Client) OnLogin(h hooks.Hook[LoginEvent]) {
	c.events.Login.Register(h)
}

// OnJoin registers a hook fired when a user joins a registered channel.
func (c *Client) OnJoin(h hooks.Hook[JoinEvent]) {
	c.events.Join.Register(h)
}

// OnPing registers a hook fired for every server PING.
func (c *Client) OnPing(h hooks.Hook[PingEvent]) {
	c.events.Ping.Register(h)
}

// OnMessage registers a hook fired for channel messages.
func (c *Client) OnMessage(h hooks.Hook[MessageEvent]) {
	c.events.Message.Register(h)
}

// OnUserSubscribed registers a hook fired for subscription notices.
func (c *Client) OnUserSubscribed(h hooks.Hook[SubscriptionEvent]) {
	c.events.Subscription.Register(h)
}

// OnLeave registers a hook fired when a user or the session leaves a channel.
func (c *Client) OnLeave(h hooks.Hook[LeaveEvent]) {
	c.events.Leave.Register(h)
}

// OnLogout registers a hook fired when the session logs out.
func (c *Client) OnLogout(h hooks.Hook[LogoutEvent]) {
	c.events.Logout.Register(h)
}

func (c *Client) fireConnect(ev ConnectEvent) {
	eventsFired.WithLabelValues("connect").Inc()
	c.events.Connect.RunHooks(ev)
}

func (c *Client) fireLogin(ev LoginEvent) {
	eventsFired.WithLabelValues("login").Inc()
	c.events.Login.RunHooks(ev)
}

func (c *Client) fireJoin(ev JoinEvent) {
	eventsFired.WithLabelValues("join").Inc()
	c.events.Join.RunHooks(ev)
}

func (c *Client) firePing() {
	eventsFired.WithLabelValues("ping").Inc()
	c.events.Ping.RunHooks(PingEvent{})
}

func (c *Client) fireMessage(ev MessageEvent) {
	eventsFired.WithLabelValues("message").Inc()
	c.events.Message.RunHooks(ev)
}

func (c *Client) fireSubscription(ev SubscriptionEvent) {
	eventsFired.WithLabelValues("subscription").Inc()
	c.events.Subscription.RunHooks(ev)
}

func (c *Client) fireLeave(ev LeaveEvent) {
	eventsFired.WithLabelValues("leave").Inc()
	c.events.Leave.RunHooks(ev)
}

func (c *Client) fireLogout(ev LogoutEvent) {
	eventsFired.WithLabelValues("logout").Inc()
	c.events.Logout.RunHooks(ev)
}
