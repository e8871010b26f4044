package homeassistant

import (
	"context"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotConfigured = errors.New("home assistant not configured")
	ErrAuthFailed    = errors.New("home assistant rejected the access token")
)

const cacheTTL = 2 * time.Second

// Websocket commands, one per registry.
const (
	cmdStates   = "get_states"
	cmdEntities = "config/entity_registry/list"
	cmdDevices  = "config/device_registry/list"
	cmdAreas    = "config/area_registry/list"
	cmdFloors   = "config/floor_registry/list"
)

var _ ports.SnapshotSource = (*Client)(nil)

// Client fetches the registries over the Home Assistant websocket API.
type Client struct {
	// Timeout bounds one fetch when the caller's context has no deadline.
	Timeout time.Duration

	url    string
	token  string
	dialer *websocket.Dialer
	logger *zap.Logger
	mu     sync.RWMutex

	cache     *model.Snapshot
	cacheTime time.Time
}

func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		dialer: websocket.DefaultDialer,
		logger: logger.Named("homeassistant"),
	}
}

func (c *Client) Configure(url, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = strings.TrimSuffix(url, "/")
	c.token = token
	c.cache = nil
}

func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.url != "" && c.token != ""
}

type message struct {
	ID          int             `json:"id,omitempty"`
	Type        string          `json:"type"`
	AccessToken string          `json:"access_token,omitempty"`
	Success     bool            `json:"success,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *resultError    `json:"error,omitempty"`
	Message     string          `json:"message,omitempty"`
}

type resultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Fetch returns the registries. Results younger than two seconds are reused.
func (c *Client) Fetch(ctx context.Context) (*model.Snapshot, error) {
	c.mu.RLock()
	if c.cache != nil && time.Since(c.cacheTime) < cacheTTL {
		res := c.cache
		c.mu.RUnlock()
		return res, nil
	}
	base := c.url
	token := c.token
	c.mu.RUnlock()

	if base == "" || token == "" {
		return nil, ErrNotConfigured
	}
	endpoint, err := websocketURL(base)
	if err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok && c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", endpoint, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}

	if err := authenticate(conn, token); err != nil {
		return nil, err
	}
	snap, err := c.fetchRegistries(ctx, conn)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache = snap
	c.cacheTime = time.Now()
	c.mu.Unlock()

	c.logger.Debug("registries fetched",
		zap.Int("states", len(snap.States)),
		zap.Int("entities", len(snap.Entities)),
		zap.Int("areas", len(snap.Areas)),
	)
	return snap, nil
}

func authenticate(conn *websocket.Conn, token string) error {
	var hello message
	if err := conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("reading auth request: %w", err)
	}
	if hello.Type != "auth_required" {
		return fmt.Errorf("unexpected greeting %q", hello.Type)
	}
	if err := conn.WriteJSON(message{Type: "auth", AccessToken: token}); err != nil {
		return fmt.Errorf("sending auth: %w", err)
	}
	var reply message
	if err := conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("reading auth reply: %w", err)
	}
	switch reply.Type {
	case "auth_ok":
		return nil
	case "auth_invalid":
		return fmt.Errorf("%w: %s", ErrAuthFailed, reply.Message)
	default:
		return fmt.Errorf("unexpected auth reply %q", reply.Type)
	}
}

// fetchRegistries sends every list command up front, then one reader hands
// each result to the goroutine decoding it. The snapshot is complete only
// when all of them are done.
func (c *Client) fetchRegistries(ctx context.Context, conn *websocket.Conn) (*model.Snapshot, error) {
	snap := &model.Snapshot{}
	decoders := []struct {
		command  string
		optional bool
		decode   func(json.RawMessage) error
	}{
		{cmdStates, false, func(raw json.RawMessage) (err error) { snap.States, err = decodeStates(raw); return }},
		{cmdEntities, false, func(raw json.RawMessage) error { return json.Unmarshal(raw, &snap.Entities) }},
		{cmdDevices, false, func(raw json.RawMessage) error { return json.Unmarshal(raw, &snap.Devices) }},
		{cmdAreas, false, func(raw json.RawMessage) error { return json.Unmarshal(raw, &snap.Areas) }},
		// older cores have no floor registry
		{cmdFloors, true, func(raw json.RawMessage) error { return json.Unmarshal(raw, &snap.Floors) }},
	}

	pending := make(map[int]chan message, len(decoders))
	for i, d := range decoders {
		id := i + 1
		pending[id] = make(chan message, 1)
		if err := conn.WriteJSON(message{ID: id, Type: d.command}); err != nil {
			return nil, fmt.Errorf("sending %s: %w", d.command, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	// a failed decoder must not leave the reader blocked
	stop := context.AfterFunc(gctx, func() { conn.Close() })
	defer stop()
	g.Go(func() error {
		for received := 0; received < len(pending); {
			var m message
			if err := conn.ReadJSON(&m); err != nil {
				return fmt.Errorf("reading result: %w", err)
			}
			ch, ok := pending[m.ID]
			if !ok || m.Type != "result" {
				continue
			}
			ch <- m
			received++
		}
		return nil
	})
	for i, d := range decoders {
		d := d
		ch := pending[i+1]
		g.Go(func() error {
			var m message
			select {
			case m = <-ch:
			case <-gctx.Done():
				return gctx.Err()
			}
			if !m.Success {
				if d.optional {
					c.logger.Debug("optional registry unavailable", zap.String("command", d.command))
					return nil
				}
				return fmt.Errorf("%s failed: %s", d.command, m.errorText())
			}
			if err := d.decode(m.Result); err != nil {
				return fmt.Errorf("decoding %s: %w", d.command, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (m message) errorText() string {
	if m.Error == nil {
		return "unknown error"
	}
	return m.Error.Code + ": " + m.Error.Message
}

func decodeStates(raw json.RawMessage) (map[string]model.EntityState, error) {
	var states []model.EntityState
	if err := json.Unmarshal(raw, &states); err != nil {
		return nil, err
	}
	// Optimization: strip large attributes to save RAM
	for _, s := range states {
		delete(s.Attributes, "entity_picture")
		delete(s.Attributes, "entity_picture_local")
		delete(s.Attributes, "source_list")
		delete(s.Attributes, "sound_mode_list")
	}
	return lo.Associate(states, func(s model.EntityState) (string, model.EntityState) {
		return s.EntityID, s
	}), nil
}

// websocketURL maps the instance base URL to its websocket endpoint.
func websocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid home assistant url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid home assistant url scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/api/websocket") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/api/websocket"
	}
	return u.String(), nil
}
