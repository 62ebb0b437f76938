package docserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/teamboardhq/teamboard/internal/config"
)

const commandPath = "/coauthoring/CommandService.ashx"

// CommandClient talks to the editor's command endpoint. Its only use here is
// the best-effort cache drop after a restore: without it the editor keeps
// serving the pre-restore content under the old document key.
type CommandClient struct {
	url    string
	secret []byte
	client *http.Client
}

func NewCommandClient(cfg config.DocServerConfig) *CommandClient {
	return &CommandClient{
		url:    strings.TrimSuffix(cfg.URL, "/") + commandPath,
		secret: []byte(cfg.Secret),
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type dropCommand struct {
	C     string `json:"c"`
	Key   string `json:"key"`
	Token string `json:"token,omitempty"`
}

func (c *CommandClient) DropCache(ctx context.Context, key string) error {
	cmd := dropCommand{C: "drop", Key: key}
	if len(c.secret) > 0 {
		token, err := signPayload(cmd, c.secret)
		if err != nil {
			return fmt.Errorf("sign drop command: %w", err)
		}
		cmd.Token = token
	}
	body, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("command service returned status %d", resp.StatusCode)
	}
	return nil
}
