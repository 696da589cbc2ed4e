package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/notexe/medimind/internal/logger"
	"github.com/notexe/medimind/internal/reminder"
)

const defaultTelegramURL = "https://api.telegram.org"

// Callback data codes. Telegram limits callback data to 64 bytes, so the
// tag is recovered from the message id instead of being embedded.
var (
	actionCodes = map[string]string{
		ActionSnooze5:  "s5",
		ActionSnooze15: "s15",
		ActionSnooze30: "s30",
		ActionDismiss:  "d",
		ActionNone:     "o",
	}
	codeActions = map[string]string{
		"s5":  ActionSnooze5,
		"s15": ActionSnooze15,
		"s30": ActionSnooze30,
		"d":   ActionDismiss,
		"o":   ActionNone,
	}
)

// TelegramConfig configures the Telegram surface.
type TelegramConfig struct {
	BotToken    string
	ChatID      string
	BaseURL     string // defaults to the public Bot API
	PollTimeout int    // long polling timeout in seconds
}

// Telegram delivers alerts as Bot API messages with inline keyboards and
// reports button presses as interactions.
type Telegram struct {
	botToken    string
	chatID      string
	baseURL     string
	pollTimeout int
	client      *http.Client
	alerts      *AlertLog
	log         logger.Logger

	mu           sync.Mutex
	permission   Permission
	lastUpdateID int64
}

// NewTelegram creates a Telegram surface. alerts records shown messages so
// that a responder process can map button presses back to reminders.
func NewTelegram(cfg TelegramConfig, alerts *AlertLog, log logger.Logger) *Telegram {
	if log == nil {
		log = logger.NewNopLogger()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultTelegramURL
	}
	timeout := cfg.PollTimeout
	if timeout < 1 {
		timeout = 1
	}
	if timeout > 50 {
		timeout = 50 // Telegram max is 50 seconds
	}

	perm := PermissionDefault
	if cfg.BotToken == "" || cfg.ChatID == "" {
		perm = PermissionDenied
	}

	return &Telegram{
		botToken:    cfg.BotToken,
		chatID:      cfg.ChatID,
		baseURL:     baseURL,
		pollTimeout: timeout,
		client:      &http.Client{Timeout: 30 * time.Second},
		alerts:      alerts,
		log:         log,
		permission:  perm,
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Permission is denied without credentials, default until the token has been
// verified by RequestPermission, and granted afterwards.
func (t *Telegram) Permission() Permission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.permission
}

// RequestPermission verifies the bot token with getMe.
func (t *Telegram) RequestPermission(ctx context.Context) (Permission, error) {
	if t.botToken == "" || t.chatID == "" {
		return PermissionDenied, nil
	}

	perm := PermissionGranted
	_, err := t.call(ctx, t.client, "getMe", nil)
	if err != nil {
		perm = PermissionDenied
	}

	t.mu.Lock()
	t.permission = perm
	t.mu.Unlock()

	if err != nil {
		return perm, fmt.Errorf("telegram token check failed: %w", err)
	}
	return perm, nil
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type telegramMessage struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Show sends the alert. An earlier message with the same tag is deleted
// first, so repeated alerts replace rather than stack.
func (t *Telegram) Show(ctx context.Context, a Alert) error {
	if prev, ok := t.alerts.Get(a.Tag); ok && prev.MessageID != 0 {
		if err := t.deleteMessage(ctx, prev.MessageID); err != nil {
			t.log.Warning("failed to replace previous alert %s: %v", a.Tag, err)
		}
		if err := t.forgetMessage(prev.MessageID); err != nil {
			t.log.Warning("failed to drop message index for %s: %v", a.Tag, err)
		}
	}

	text := fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(a.Title), html.EscapeString(a.Body))
	payload := map[string]interface{}{
		"chat_id":    t.chatID,
		"parse_mode": "HTML",
	}
	if len(a.Actions) > 0 {
		payload["reply_markup"] = map[string]interface{}{
			"inline_keyboard": keyboardFor(a.Actions),
		}
	}
	// Without interaction required the alert may arrive silently.
	payload["disable_notification"] = !a.RequireInteraction && len(a.Actions) == 0

	method := "sendMessage"
	var photo *inlineImage
	switch {
	case isRemoteImage(a.ImageRef):
		method = "sendPhoto"
		payload["photo"] = a.ImageRef
	case strings.HasPrefix(a.ImageRef, "data:"):
		img, err := decodeDataURL(a.ImageRef)
		if err != nil {
			t.log.Warning("sending alert %s without its image: %v", a.Tag, err)
			break
		}
		method = "sendPhoto"
		photo = img
	case a.ImageRef != "":
		t.log.Warning("sending alert %s without its image: unsupported reference", a.Tag)
	}
	if method == "sendPhoto" {
		payload["caption"] = text
	} else {
		payload["text"] = text
	}

	var result json.RawMessage
	var err error
	if photo != nil {
		result, err = t.upload(ctx, method, payload, "photo", photo)
	} else {
		result, err = t.call(ctx, t.client, method, payload)
	}
	if err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}

	var msg telegramMessage
	if err := json.Unmarshal(result, &msg); err != nil {
		return fmt.Errorf("failed to parse telegram message: %w", err)
	}

	entry := LogEntry{Tag: a.Tag, MessageID: msg.MessageID, Payload: a.Payload, ShownAt: time.Now()}
	if err := t.alerts.Put(entry); err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}
	if err := t.alerts.kv.Set(messageKey(msg.MessageID), a.Tag); err != nil {
		return fmt.Errorf("failed to index alert: %w", err)
	}
	return nil
}

func keyboardFor(actions []Action) [][]inlineButton {
	row := make([]inlineButton, 0, len(actions))
	for _, act := range actions {
		row = append(row, inlineButton{Text: act.Label, CallbackData: actionCodes[act.ID]})
	}
	return [][]inlineButton{
		row,
		{
			{Text: "Open MediMind", CallbackData: actionCodes[ActionNone]},
			{Text: "Dismiss", CallbackData: actionCodes[ActionDismiss]},
		},
	}
}

func isRemoteImage(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}

// inlineImage is an image carried inside the alert itself.
type inlineImage struct {
	MimeType string
	Data     []byte
}

// decodeDataURL decodes a base64 "data:<mime>;base64,<data>" reference, the
// form images are persisted in when picked from the camera or gallery.
func decodeDataURL(ref string) (*inlineImage, error) {
	meta, data, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL")
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, fmt.Errorf("data URL is not base64 encoded")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("data URL is %q, not an image", mimeType)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URL: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	return &inlineImage{MimeType: mimeType, Data: raw}, nil
}

func messageKey(messageID int64) string {
	return reminder.KeyAlertMessagePrefix + strconv.FormatInt(messageID, 10)
}

// Close deletes the message shown for tag and forgets it.
func (t *Telegram) Close(ctx context.Context, tag string) error {
	entry, ok := t.alerts.Get(tag)
	if !ok {
		return nil
	}
	if err := t.alerts.Remove(tag); err != nil {
		t.log.Warning("failed to forget alert %s: %v", tag, err)
	}
	if entry.MessageID == 0 {
		return nil
	}
	if err := t.forgetMessage(entry.MessageID); err != nil {
		t.log.Warning("failed to drop message index for %s: %v", tag, err)
	}
	return t.deleteMessage(ctx, entry.MessageID)
}

// forgetMessage drops the message id to tag mapping written by Show.
func (t *Telegram) forgetMessage(messageID int64) error {
	if d, ok := t.alerts.kv.(reminder.Deleter); ok {
		return d.Delete(messageKey(messageID))
	}
	return t.alerts.kv.Set(messageKey(messageID), "")
}

func (t *Telegram) deleteMessage(ctx context.Context, messageID int64) error {
	_, err := t.call(ctx, t.client, "deleteMessage", map[string]interface{}{
		"chat_id":    t.chatID,
		"message_id": messageID,
	})
	return err
}

type telegramUpdate struct {
	UpdateID      int64 `json:"update_id"`
	CallbackQuery *struct {
		ID      string           `json:"id"`
		Data    string           `json:"data"`
		Message *telegramMessage `json:"message"`
	} `json:"callback_query"`
}

// Listen long-polls getUpdates for inline keyboard presses in the configured
// chat and reports each as an interaction. Errors are logged and retried;
// Listen returns when ctx is cancelled.
func (t *Telegram) Listen(ctx context.Context, onAction func(Interaction)) error {
	// Long polling needs a client that outlives the server-side timeout.
	client := &http.Client{Timeout: time.Duration(t.pollTimeout+10) * time.Second}

	t.log.Info("listening for alert actions (poll timeout %ds)", t.pollTimeout)
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := t.getUpdates(ctx, client)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			t.log.Error("getUpdates failed: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			if in, ok := t.interactionFor(ctx, u); ok {
				onAction(in)
			}
		}
	}
}

func (t *Telegram) getUpdates(ctx context.Context, client *http.Client) ([]telegramUpdate, error) {
	t.mu.Lock()
	offset := t.lastUpdateID
	t.mu.Unlock()

	payload := map[string]interface{}{
		"timeout":         t.pollTimeout,
		"allowed_updates": []string{"callback_query"},
	}
	if offset > 0 {
		payload["offset"] = offset + 1
	}

	result, err := t.call(ctx, client, "getUpdates", payload)
	if err != nil {
		return nil, err
	}

	var updates []telegramUpdate
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}

	if len(updates) > 0 {
		t.mu.Lock()
		if last := updates[len(updates)-1].UpdateID; last > t.lastUpdateID {
			t.lastUpdateID = last
		}
		t.mu.Unlock()
	}
	return updates, nil
}

func (t *Telegram) interactionFor(ctx context.Context, u telegramUpdate) (Interaction, bool) {
	cq := u.CallbackQuery
	if cq == nil || cq.Message == nil {
		return Interaction{}, false
	}
	if strconv.FormatInt(cq.Message.Chat.ID, 10) != t.chatID {
		return Interaction{}, false
	}

	// Stop the client-side spinner; failure only affects cosmetics.
	if _, err := t.call(ctx, t.client, "answerCallbackQuery", map[string]interface{}{
		"callback_query_id": cq.ID,
	}); err != nil {
		t.log.Warning("answerCallbackQuery failed: %v", err)
	}

	action, ok := codeActions[cq.Data]
	if !ok {
		t.log.Warning("ignoring unknown callback data %q", cq.Data)
		return Interaction{}, false
	}

	in := Interaction{Action: action}
	tag, ok, err := t.alerts.kv.Get(messageKey(cq.Message.MessageID))
	if err != nil || !ok {
		return in, true
	}
	in.Tag = tag
	if entry, ok := t.alerts.Get(tag); ok {
		in.Payload = entry.Payload
	}
	return in, true
}

// call invokes a Bot API method with a JSON body and returns the "result"
// field.
func (t *Telegram) call(ctx context.Context, client *http.Client, method string, payload map[string]interface{}) (json.RawMessage, error) {
	if payload == nil {
		return t.do(ctx, client, method, nil, "")
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return t.do(ctx, client, method, bytes.NewReader(jsonData), "application/json")
}

// upload invokes a Bot API method as multipart/form-data with img attached
// under field. Non-string payload values are sent JSON encoded.
func (t *Telegram) upload(ctx context.Context, method string, payload map[string]interface{}, field string, img *inlineImage) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range payload {
		str, ok := value.(string)
		if !ok {
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s: %w", key, err)
			}
			str = string(encoded)
		}
		if err := w.WriteField(key, str); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	filename := field + "." + strings.TrimPrefix(img.MimeType, "image/")
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s part: %w", field, err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", field, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload: %w", err)
	}

	return t.do(ctx, t.client, method, &buf, w.FormDataContentType())
}

func (t *Telegram) do(ctx context.Context, client *http.Client, method string, body io.Reader, contentType string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.botToken, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var tgResp telegramResponse
	if err := json.Unmarshal(respBody, &tgResp); err != nil {
		return nil, fmt.Errorf("failed to parse telegram response (status %d): %w", resp.StatusCode, err)
	}
	if !tgResp.OK {
		return nil, fmt.Errorf("telegram API error: %s", tgResp.Description)
	}
	return tgResp.Result, nil
}
