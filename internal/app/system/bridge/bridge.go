// Package bridge sends one-way notifications to the desktop NFC writer.
//
// The writer polls/receives JSON messages of the form
//
//	{"action": "registerNFC", "userId": <int>}
//
// and performs the physical NDEF write. There is no in-band
// acknowledgement channel: success or failure of the physical write is
// confirmed by the admin re-checking the user record.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const actionRegisterNFC = "registerNFC"

// Message is the wire format consumed by the NFC writer.
type Message struct {
	Action string `json:"action"`
	UserID int64  `json:"userId"`
}

// Notifier posts messages to the configured bridge endpoint.
// A Notifier with an empty endpoint is a no-op (bridge not deployed),
// which keeps local development and tests free of a writer dependency.
type Notifier struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

// New builds a Notifier for the given endpoint URL.
func New(endpoint string, logger *zap.Logger) *Notifier {
	return &Notifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      logger,
	}
}

// NotifyRegister tells the writer to program the tag for the given user
// number. The message is one-way; a transport error is returned so the
// registration handler can log it, but registration itself has already
// been persisted and is not rolled back.
func (n *Notifier) NotifyRegister(ctx context.Context, userNo int64) error {
	if n == nil || n.endpoint == "" {
		return nil
	}

	body, err := json.Marshal(Message{Action: actionRegisterNFC, UserID: userNo})
	if err != nil {
		return fmt.Errorf("bridge: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bridge: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("bridge: writer returned status %d", resp.StatusCode)
	}

	n.log.Info("notified NFC writer",
		zap.Int64("user_no", userNo),
		zap.String("endpoint", n.endpoint))
	return nil
}
