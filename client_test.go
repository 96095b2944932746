package tmi_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmipkg/tmi"
)

// scriptTransport is an in-memory Transport. Receive serves pre-loaded chunks
// in order and signals a graceful close once they run out; Send records every
// line the client transmits.
type scriptTransport struct {
	connected bool
	chunks    [][]byte
	sent      []string
	sendErr   error
}

func (t *scriptTransport) Connect(host string, port int) error {
	t.connected = true
	return nil
}

func (t *scriptTransport) Send(data []byte) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, strings.TrimSuffix(string(data), "\r\n"))
	return nil
}

func (t *scriptTransport) Receive(max int) ([]byte, error) {
	if len(t.chunks) == 0 {
		return nil, nil
	}
	chunk := t.chunks[0]
	t.chunks = t.chunks[1:]
	if len(chunk) > max {
		chunk = chunk[:max]
	}
	return chunk, nil
}

func (t *scriptTransport) Close() error {
	t.connected = false
	return nil
}

func (t *scriptTransport) Connected() bool {
	return t.connected
}

// serve queues one server chunk for the next Receive call.
func (t *scriptTransport) serve(chunk string) {
	t.chunks = append(t.chunks, []byte(chunk))
}

// sentSince returns the lines sent after the first n.
func (t *scriptTransport) sentSince(n int) []string {
	return t.sent[n:]
}

// newTestClient returns a connected and handshake-started client on a script
// transport.
func newTestClient(t *testing.T) (*tmi.Client, *scriptTransport) {
	transport := &scriptTransport{}
	client := tmi.NewClient(transport)
	err := client.ConnectAndLogin("irc.example.net", 6667, "bot", "oauth:secret")
	assert.NoError(t, err, "Connect and login handshake should succeed")
	return client, transport
}

// process feeds one chunk through the client.
func process(t *testing.T, client *tmi.Client, transport *scriptTransport, chunk string) {
	transport.serve(chunk)
	err := client.ProcessNextLine()
	assert.NoError(t, err, "Processing should not fail")
}

func TestLoginHandshake(t *testing.T) {
	transport := &scriptTransport{}
	client := tmi.NewClient(transport)

	err := client.Login("bot", "oauth:secret")
	assert.ErrorIs(t, err, tmi.ErrNotConnected, "Login without a transport should be refused")
	assert.Empty(t, transport.sent, "Nothing should be sent before connecting")

	err = client.Connect("irc.example.net", 6667)
	assert.NoError(t, err, "Connect should succeed")
	assert.True(t, client.Alive(), "Transport should be open after Connect")

	err = client.Login("bot", "oauth:secret")
	assert.NoError(t, err, "Login should succeed on an open transport")
	assert.Equal(t, []string{
		"PASS oauth:secret",
		"NICK bot",
		"USER bot 8 * :bot",
	}, transport.sent, "Handshake should send PASS, NICK, USER in order")

	assert.Equal(t, "bot", client.Username(), "Username should be stored")
	assert.False(t, client.LoggedIn(), "Login state waits for the server numeric")
}

func TestConnectEvent(t *testing.T) {
	transport := &scriptTransport{}
	client := tmi.NewClient(transport)

	var events []tmi.ConnectEvent
	client.OnConnect(func(ev tmi.ConnectEvent) error {
		events = append(events, ev)
		return nil
	})

	err := client.Connect("irc.example.net", 6667)
	assert.NoError(t, err, "Connect should succeed")
	assert.Len(t, events, 1, "Connect event should fire once")
	assert.Equal(t, "irc.example.net", events[0].Host, "Event should carry the host")
	assert.Equal(t, 6667, events[0].Port, "Event should carry the port")
	assert.Equal(t, "irc.example.net", client.Host(), "Host accessor should match")
	assert.Equal(t, 6667, client.Port(), "Port accessor should match")
}

func TestLoginSuccessNumeric(t *testing.T) {
	client, transport := newTestClient(t)

	var events []tmi.LoginEvent
	client.OnLogin(func(ev tmi.LoginEvent) error {
		events = append(events, ev)
		return nil
	})

	process(t, client, transport, ":irc.example.net 004 bot irc.example.net tmi 0 0\r\n")
	assert.True(t, client.LoggedIn(), "004 should complete the login")
	assert.Len(t, events, 1, "Login event should fire once")
	assert.True(t, events[0].Success, "Event should report success")
	assert.Equal(t, "004", events[0].Code, "Event should carry the numeric")
	assert.Equal(t, "Login successful.", events[0].Message, "Event should carry the success message")
	assert.Equal(t, "bot", events[0].Username, "Event should carry the username")

	// A second confirmation numeric is ignored once logged in.
	process(t, client, transport, ":irc.example.net 004 bot irc.example.net tmi 0 0\r\n")
	process(t, client, transport, ":irc.example.net 375 bot :- Message of the day\r\n")
	assert.Len(t, events, 1, "Repeated confirmations should not re-fire the event")
}

func TestLoginSuccessMOTD(t *testing.T) {
	client, transport := newTestClient(t)

	var events []tmi.LoginEvent
	client.OnLogin(func(ev tmi.LoginEvent) error {
		events = append(events, ev)
		return nil
	})

	process(t, client, transport, ":irc.example.net 375 bot :- Message of the day\r\n")
	assert.True(t, client.LoggedIn(), "375 should complete the login")
	assert.Len(t, events, 1, "Login event should fire once")
	assert.Equal(t, "375", events[0].Code, "Event should carry the numeric")
}

func TestLoginFailure(t *testing.T) {
	cases := []struct {
		name string
		line string
		code string
		msg  string
	}{
		{"notice", ":irc.example.net NOTICE * :Login authentication failed\r\n", "NOTICE", "Login authentication failed"},
		{"4xx", ":irc.example.net 464 bot :Password incorrect\r\n", "464", "Password incorrect"},
		{"5xx", ":irc.example.net 502 bot :Cannot change mode\r\n", "502", "Cannot change mode"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, transport := newTestClient(t)

			var events []tmi.LoginEvent
			client.OnLogin(func(ev tmi.LoginEvent) error {
				events = append(events, ev)
				return nil
			})

			process(t, client, transport, tc.line)
			assert.False(t, client.LoggedIn(), "A failure line should not log the session in")
			assert.Len(t, events, 1, "Failure event should fire once")
			assert.False(t, events[0].Success, "Event should report failure")
			assert.Equal(t, tc.code, events[0].Code, "Event should carry the rejecting code")
			assert.Equal(t, tc.msg, events[0].Message, "Event should carry the trailing text")
		})
	}
}

func TestPingPong(t *testing.T) {
	client, transport := newTestClient(t)

	pings := 0
	client.OnPing(func(tmi.PingEvent) error {
		pings++
		return nil
	})
	messages := 0
	client.OnMessage(func(tmi.MessageEvent) error {
		messages++
		return nil
	})

	before := len(transport.sent)
	process(t, client, transport, "PING :irc.example.net\r\n")
	assert.Equal(t, []string{"PONG :irc.example.net"}, transport.sentSince(before),
		"PING should be answered with exactly one PONG echoing the token")
	assert.Equal(t, 1, pings, "Ping event should fire once")
	assert.Equal(t, 0, messages, "PING should not dispatch any other event")
}

func TestPingPongSendFailure(t *testing.T) {
	client, transport := newTestClient(t)

	pings := 0
	client.OnPing(func(tmi.PingEvent) error {
		pings++
		return nil
	})

	transport.sendErr = errors.New("wire down")
	transport.serve("PING :irc.example.net\r\n")
	err := client.ProcessNextLine()
	assert.NoError(t, err, "A failed PONG reply does not abort line processing")
	assert.Equal(t, 1, pings, "Ping event still fires when the PONG could not be sent")
}

func TestFailureLineAfterLogin(t *testing.T) {
	client, transport := newTestClient(t)
	process(t, client, transport, ":irc.example.net 004 bot irc.example.net tmi 0 0\r\n")
	assert.True(t, client.LoggedIn(), "Session should be logged in")

	var events []tmi.LoginEvent
	client.OnLogin(func(ev tmi.LoginEvent) error {
		events = append(events, ev)
		return nil
	})

	process(t, client, transport, ":irc.example.net NOTICE * :Slow down\r\n")
	assert.Len(t, events, 1, "A NOTICE after login still fires a failure-shaped event")
	assert.False(t, events[0].Success, "Event should report failure")
	assert.Equal(t, "NOTICE", events[0].Code, "Event should carry the code")
	assert.Equal(t, "Slow down", events[0].Message, "Event should carry the trailing text")
	assert.True(t, client.LoggedIn(), "The login state is untouched by the failure branch")

	process(t, client, transport, ":irc.example.net 421 bot FOO :Unknown command\r\n")
	assert.Len(t, events, 2, "A 4xx after login fires the failure branch too")
	assert.True(t, client.LoggedIn(), "The login state is untouched by numerics")
}

func TestMessageRouting(t *testing.T) {
	client, transport := newTestClient(t)
	err := client.Join("gamer")
	assert.NoError(t, err, "Join should succeed")

	var events []tmi.MessageEvent
	client.OnMessage(func(ev tmi.MessageEvent) error {
		events = append(events, ev)
		return nil
	})

	process(t, client, transport, ":alice!alice@host.example.net PRIVMSG #gamer :hello there\r\n")
	assert.Len(t, events, 1, "Message event should fire")
	assert.Equal(t, "gamer", events[0].Channel.Name(), "Event should carry the channel")
	assert.Equal(t, "alice", events[0].Username, "Sender is the prefix nick")
	assert.Equal(t, "hello there", events[0].Text, "Text is the trailing field")

	// Unknown channel: dropped.
	process(t, client, transport, ":alice!alice@host.example.net PRIVMSG #other :hello\r\n")
	assert.Len(t, events, 1, "Messages for unregistered channels should be dropped")

	// No '!' in the prefix: no usable sender, dropped.
	process(t, client, transport, ":irc.example.net PRIVMSG #gamer :hello\r\n")
	assert.Len(t, events, 1, "Lines without a nick prefix should be dropped")
}

func TestJoinPartRoster(t *testing.T) {
	client, transport := newTestClient(t)
	err := client.Join("gamer")
	assert.NoError(t, err, "Join should succeed")
	channel := client.GetChannelByName("gamer")
	assert.NotNil(t, channel, "Joined channel should be registered")

	joins, leaves := 0, 0
	client.OnJoin(func(ev tmi.JoinEvent) error {
		joins++
		return nil
	})
	client.OnLeave(func(ev tmi.LeaveEvent) error {
		leaves++
		return nil
	})

	process(t, client, transport, ":alice!alice@host PART #gamer\r\n")
	assert.Equal(t, 0, leaves, "PART for an absent user should be ignored")

	process(t, client, transport, ":alice!alice@host JOIN #gamer\r\n")
	assert.Equal(t, 1, joins, "JOIN should add the user and fire")
	assert.True(t, channel.HasUser("alice"), "Roster should contain the user")

	process(t, client, transport, ":alice!alice@host JOIN #gamer\r\n")
	assert.Equal(t, 1, joins, "A duplicate JOIN should not fire again")
	assert.Equal(t, 1, channel.UserCount(), "Roster holds each user once")

	process(t, client, transport, ":alice!alice@host PART #gamer\r\n")
	assert.Equal(t, 1, leaves, "PART should remove the user and fire")
	assert.False(t, channel.HasUser("alice"), "Roster should no longer contain the user")
}

func TestNamesReplyMergesRoster(t *testing.T) {
	client, transport := newTestClient(t)
	err := client.Join("gamer")
	assert.NoError(t, err, "Join should succeed")
	channel := client.GetChannelByName("gamer")

	process(t, client, transport, ":irc.example.net 353 bot = #gamer :alice bob carol\r\n")
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, channel.Users(),
		"NAMES reply should populate the roster")

	// Redelivery with an overlap only adds the new name.
	process(t, client, transport, ":irc.example.net 353 bot = #gamer :bob dave\r\n")
	assert.ElementsMatch(t, []string{"alice", "bob", "carol", "dave"}, channel.Users(),
		"NAMES replies union into the roster")

	// A reply for an unregistered channel is dropped.
	process(t, client, transport, ":irc.example.net 353 bot = #other :eve\r\n")
	assert.Nil(t, client.GetChannelByName("other"), "NAMES must not create channels")
}

func TestSubscriptionNotice(t *testing.T) {
	client, transport := newTestClient(t)
	err := client.Join("gamer")
	assert.NoError(t, err, "Join should succeed")

	var events []tmi.SubscriptionEvent
	client.OnUserSubscribed(func(ev tmi.SubscriptionEvent) error {
		events = append(events, ev)
		return nil
	})
	messages := 0
	client.OnMessage(func(tmi.MessageEvent) error {
		messages++
		return nil
	})

	process(t, client, transport, ":twitchnotify!twitchnotify@host PRIVMSG #gamer :dave just subscribed!\r\n")
	assert.Len(t, events, 1, "Subscription event should fire")
	assert.Equal(t, "dave", events[0].Username, "Subscriber is the first trailing word")
	assert.Equal(t, "gamer", events[0].Channel.Name(), "Event should carry the channel")
	assert.Equal(t, 0, messages, "Notifier lines must not double as chat messages")
}

func TestJoinLeaveRegistry(t *testing.T) {
	client, transport := newTestClient(t)

	before := len(transport.sent)
	err := client.Join("gamer")
	assert.NoError(t, err, "Join should succeed")
	assert.Equal(t, []string{"JOIN #gamer"}, transport.sentSince(before), "Join should send JOIN")
	assert.True(t, client.IsConnectedTo("gamer"), "Channel should be registered immediately")

	var leaves []tmi.LeaveEvent
	client.OnLeave(func(ev tmi.LeaveEvent) error {
		leaves = append(leaves, ev)
		return nil
	})

	before = len(transport.sent)
	err = client.Leave("gamer")
	assert.NoError(t, err, "Leave should succeed")
	assert.Equal(t, []string{"PART #gamer"}, transport.sentSince(before), "Leave should send PART")
	assert.False(t, client.IsConnectedTo("gamer"), "Channel should be unregistered")
	assert.Len(t, leaves, 1, "Leave event should fire")
	assert.NotNil(t, leaves[0].Channel, "Known channel rides along on the event")
	assert.Equal(t, "bot", leaves[0].Username, "The session user is the leaver")

	// Leaving an unknown channel still sends PART and fires with a nil channel.
	before = len(transport.sent)
	err = client.Leave("nowhere")
	assert.NoError(t, err, "Leave of an unknown channel should not error")
	assert.Equal(t, []string{"PART #nowhere"}, transport.sentSince(before), "PART is sent regardless")
	assert.Len(t, leaves, 2, "Leave event fires for unknown channels too")
	assert.Nil(t, leaves[1].Channel, "Unknown channel yields a nil Channel")
}

func TestSendMessage(t *testing.T) {
	client, transport := newTestClient(t)

	before := len(transport.sent)
	err := client.SendMessage("gamer", "hello")
	assert.ErrorIs(t, err, tmi.ErrNotJoined, "Sending to an unjoined channel should be refused")
	assert.Empty(t, transport.sentSince(before), "Nothing should be transmitted on refusal")

	err = client.Join("gamer")
	assert.NoError(t, err, "Join should succeed")

	before = len(transport.sent)
	err = client.SendMessage("gamer", "hello world")
	assert.NoError(t, err, "Sending to a joined channel should succeed")
	assert.Equal(t, []string{"PRIVMSG #gamer :hello world"}, transport.sentSince(before),
		"Message should be framed as PRIVMSG")
}

func TestGracefulClose(t *testing.T) {
	client, _ := newTestClient(t)

	// No chunks queued: the next Receive reports a remote close.
	err := client.ProcessNextLine()
	assert.NoError(t, err, "A graceful close is not an error")
	assert.False(t, client.Alive(), "Session should be closed after a zero-length read")
	assert.False(t, client.LoggedIn(), "Login state should be dropped on close")

	// Further calls are no-ops on a dead session.
	err = client.ProcessNextLine()
	assert.NoError(t, err, "Processing a closed session is a no-op")
}

func TestMultipleLinesPerChunk(t *testing.T) {
	client, transport := newTestClient(t)
	err := client.Join("gamer")
	assert.NoError(t, err, "Join should succeed")

	var texts []string
	client.OnMessage(func(ev tmi.MessageEvent) error {
		texts = append(texts, ev.Text)
		return nil
	})

	chunk := ":alice!a@h PRIVMSG #gamer :one\r\n" +
		"\r\n" +
		":bob!b@h PRIVMSG #gamer :two\r\n"
	process(t, client, transport, chunk)
	assert.Equal(t, []string{"one", "two"}, texts, "Every line in a chunk is dispatched, blanks skipped")
}

func TestLogout(t *testing.T) {
	client, transport := newTestClient(t)

	err := client.Logout()
	assert.ErrorIs(t, err, tmi.ErrNotLoggedIn, "Logout requires an active login")

	process(t, client, transport, ":irc.example.net 004 bot irc.example.net tmi 0 0\r\n")
	assert.True(t, client.LoggedIn(), "Session should be logged in")
	err = client.Join("gamer")
	assert.NoError(t, err, "Join should succeed")

	var logouts []tmi.LogoutEvent
	client.OnLogout(func(ev tmi.LogoutEvent) error {
		logouts = append(logouts, ev)
		return nil
	})

	before := len(transport.sent)
	err = client.Logout()
	assert.NoError(t, err, "Logout should succeed")
	assert.Equal(t, []string{"QUIT :Logout"}, transport.sentSince(before), "Logout should send QUIT")
	assert.False(t, client.LoggedIn(), "Login state should be cleared")
	assert.Len(t, logouts, 1, "Logout event should fire")
	assert.Equal(t, "bot", logouts[0].Username, "Event should carry the username")
	assert.Empty(t, client.ChannelNames(), "Channel registry should be dropped")
}

func TestReloginReconnects(t *testing.T) {
	client, transport := newTestClient(t)
	process(t, client, transport, ":irc.example.net 004 bot irc.example.net tmi 0 0\r\n")
	err := client.Join("gamer")
	assert.NoError(t, err, "Join should succeed")

	err = client.Login("otherbot", "oauth:other")
	assert.NoError(t, err, "Login over a live session should reconnect")
	assert.False(t, client.LoggedIn(), "Login state resets until the server confirms")
	assert.Equal(t, "otherbot", client.Username(), "New identity should be stored")
	assert.Empty(t, client.ChannelNames(), "Channel registry should be dropped")
}

func TestReconnectBeforeConnect(t *testing.T) {
	transport := &scriptTransport{}
	client := tmi.NewClient(transport)

	err := client.Reconnect()
	assert.NoError(t, err, "Reconnect before the first Connect is a no-op")
	assert.False(t, client.Alive(), "No transport should be opened")
}

func TestReceiveBufferSize(t *testing.T) {
	client := tmi.NewClient(&scriptTransport{})

	assert.Equal(t, tmi.DefaultReceiveBufferSize, client.ReceiveBufferSize(),
		"Default buffer size should apply")

	client.SetReceiveBufferSize(2048)
	assert.Equal(t, 2048, client.ReceiveBufferSize(), "Buffer size should be updated")

	client.SetReceiveBufferSize(0)
	assert.Equal(t, 2048, client.ReceiveBufferSize(), "Non-positive sizes should be ignored")
}

func TestChannelNamesSorted(t *testing.T) {
	client, _ := newTestClient(t)
	for _, name := range []string{"zulu", "alpha", "mike"} {
		err := client.Join(name)
		assert.NoError(t, err, "Join should succeed")
	}
	assert.Equal(t, []string{"alpha", "mike", "zulu"}, client.ChannelNames(),
		"Channel names should be sorted")
}

func TestAnonymousCredentials(t *testing.T) {
	username, token := tmi.AnonymousCredentials()
	assert.True(t, strings.HasPrefix(username, "justinfan"), "Anonymous nick should use the provider prefix")
	assert.Greater(t, len(username), len("justinfan"), "Anonymous nick should carry a random suffix")
	assert.Equal(t, "oauth:99999", token, "Anonymous token is the provider's dummy value")

	other, _ := tmi.AnonymousCredentials()
	assert.NotEqual(t, username, other, "Anonymous nicks should differ between calls")
}
