// Package telegram talks to the Telegram Bot API: the inbox poller's update
// source and the publisher's message sink.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Update is one envelope from getUpdates. Update identifiers are numeric and
// monotonically increasing; the poller persists the highest one it has seen.
type Update struct {
	ID      int64
	Message *Message
}

// Message is the payload the poller cares about.
type Message struct {
	ID     int64
	ChatID string
	Text   string
	Author string
	Date   time.Time
}

// Client is a minimal Bot API client.
type Client struct {
	baseURL  string
	botToken string
	http     *http.Client
}

// NewClient registers the bot token. A zero timeout falls back to 15s.
func NewClient(botToken string, timeout time.Duration) (*Client, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  defaultBaseURL,
		botToken: botToken,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// SetBaseURL overrides the API host; tests point it at a local server.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type wireUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64  `json:"message_id"`
		Date      int64  `json:"date"`
		Text      string `json:"text"`
		Chat      struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From *struct {
			Username string `json:"username"`
		} `json:"from"`
	} `json:"message"`
}

// GetUpdates fetches update envelopes with identifiers strictly greater than
// the given offset minus one (Telegram offset semantics: pass last seen + 1).
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d", c.baseURL, c.botToken, offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}

	var wire []wireUpdate
	if err := json.Unmarshal(env.Result, &wire); err != nil {
		return nil, fmt.Errorf("parse updates: %w", err)
	}

	updates := make([]Update, 0, len(wire))
	for _, w := range wire {
		u := Update{ID: w.UpdateID}
		if w.Message != nil {
			msg := &Message{
				ID:     w.Message.MessageID,
				ChatID: strconv.FormatInt(w.Message.Chat.ID, 10),
				Text:   w.Message.Text,
				Date:   time.Unix(w.Message.Date, 0).UTC(),
			}
			if w.Message.From != nil {
				msg.Author = w.Message.From.Username
			}
			u.Message = msg
		}
		updates = append(updates, u)
	}
	return updates, nil
}

// SendMessage posts a Markdown message to the given chat and returns the
// provider-assigned message identifier. Failure here is fatal for a publish
// run; the caller must not mark anything posted without the returned id.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (int64, error) {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)
	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}

	var result struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return 0, fmt.Errorf("parse send result: %w", err)
	}
	return result.MessageID, nil
}

func decodeEnvelope(resp *http.Response) (apiEnvelope, error) {
	var env apiEnvelope
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return env, fmt.Errorf("telegram error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return env, fmt.Errorf("decode response: %w", err)
	}
	if !env.OK {
		return env, fmt.Errorf("telegram rejected request: %s", env.Description)
	}
	return env, nil
}
