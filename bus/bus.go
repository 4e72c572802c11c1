// bus.go
package bus

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Wildcard tokens. "+" matches exactly one level, "#" matches the rest
// (including nothing) and must be last.
const (
	wildPlus = "+"
	wildHash = "#"
)

// Topic is a sequence of comparable tokens (normally strings or ints).
type Topic []any

// T builds a topic, panicking on tokens that cannot be map keys.
func T(tokens ...any) Topic {
	for _, tok := range tokens {
		if tok == nil || !reflect.TypeOf(tok).Comparable() {
			panic("bus: topic token is not comparable")
		}
	}
	return Topic(tokens)
}

// ParseTopic splits a slash-separated path into string tokens.
// Empty segments are dropped, so "/a//b" and "a/b" are the same topic.
func ParseTopic(s string) Topic {
	var t Topic
	for _, part := range strings.Split(s, "/") {
		if part != "" {
			t = append(t, part)
		}
	}
	return t
}

func (t Topic) Len() int     { return len(t) }
func (t Topic) At(i int) any { return t[i] }

func (t Topic) String() string {
	var sb strings.Builder
	for i, tok := range t {
		if i > 0 {
			sb.WriteByte('/')
		}
		switch v := tok.(type) {
		case string:
			sb.WriteString(v)
		case int:
			sb.WriteString(strconv.Itoa(v))
		default:
			sb.WriteByte('?')
		}
	}
	return sb.String()
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// NewMessage builds a message; retained messages are replayed to late subscribers.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// deliver never blocks: when the queue is full the oldest message is dropped.
func (s *Subscription) deliver(msg *Message) {
	select {
	case s.ch <- msg:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- msg:
	default:
	}
}

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok any, create bool) *node {
	if c, ok := n.children[tok]; ok || !create {
		return c
	}
	if n.children == nil {
		n.children = make(map[any]*node)
	}
	c := &node{}
	n.children[tok] = c
	return c
}

func (n *node) empty() bool {
	return len(n.subs) == 0 && len(n.children) == 0 && n.retained == nil
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.Mutex
	root *node
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{
		root: &node{},
		qLen: queueLen,
	}
}

// Publish delivers a message to every matching subscriber and, when
// retained, stores it (a nil payload clears the retained slot).
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		b.storeRetained(msg)
	}

	var targets []*Subscription
	collect(b.root, msg.Topic, &targets)
	for _, sub := range targets {
		sub.deliver(msg)
	}
}

func (b *Bus) storeRetained(msg *Message) {
	if msg.Payload == nil {
		path := []*node{b.root}
		n := b.root
		for _, tok := range msg.Topic {
			if n = n.child(tok, false); n == nil {
				return
			}
			path = append(path, n)
		}
		n.retained = nil
		prune(path, msg.Topic)
		return
	}
	n := b.root
	for _, tok := range msg.Topic {
		n = n.child(tok, true)
	}
	n.retained = msg
}

// collect gathers subscriptions whose pattern matches topic t.
func collect(n *node, t Topic, out *[]*Subscription) {
	if h := n.children[wildHash]; h != nil {
		*out = append(*out, h.subs...)
	}
	if len(t) == 0 {
		*out = append(*out, n.subs...)
		return
	}
	if c := n.children[t[0]]; c != nil {
		collect(c, t[1:], out)
	}
	if c := n.children[wildPlus]; c != nil {
		collect(c, t[1:], out)
	}
}

// retainedFor gathers retained messages matching subscription pattern p.
func retainedFor(n *node, p Topic, out *[]*Message) {
	if len(p) == 0 {
		if n.retained != nil {
			*out = append(*out, n.retained)
		}
		return
	}
	switch p[0] {
	case wildHash:
		retainedAll(n, out)
	case wildPlus:
		for tok, c := range n.children {
			if tok == wildPlus || tok == wildHash {
				continue
			}
			retainedFor(c, p[1:], out)
		}
	default:
		if c := n.children[p[0]]; c != nil {
			retainedFor(c, p[1:], out)
		}
	}
}

func retainedAll(n *node, out *[]*Message) {
	if n.retained != nil {
		*out = append(*out, n.retained)
	}
	for _, c := range n.children {
		retainedAll(c, out)
	}
}

// prune removes empty nodes bottom-up along path (path[i+1] = child of path[i] at topic[i]).
func prune(path []*node, topic Topic) {
	for i := len(topic) - 1; i >= 0; i-- {
		parent, child := path[i], path[i+1]
		if !child.empty() {
			return
		}
		delete(parent.children, topic[i])
	}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	var retained []*Message
	retainedFor(b.root, sub.topic, &retained)
	for _, m := range retained {
		sub.deliver(m)
	}
}

// removeSubscription detaches sub and closes its channel. It reports false
// if sub was already gone.
func (b *Bus) removeSubscription(sub *Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := []*node{b.root}
	n := b.root
	for _, tok := range sub.topic {
		if n = n.child(tok, false); n == nil {
			return false
		}
		path = append(path, n)
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			prune(path, sub.topic)
			close(sub.ch)
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	subs []*Subscription
	mu   sync.Mutex
	id   string
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{
		bus: b,
		id:  id,
	}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.addSubscription(sub)
	return sub
}

// Unsubscribe removes a subscription owned by this connection. Safe to call twice.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.removeSubscription(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.removeSubscription(sub)
	}
}
