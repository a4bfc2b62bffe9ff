package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const tokenFileName = "api_token"

// fileTokenSource keeps the API token in a 0600 file inside the data
// directory. A fresh token is generated on first run so the HTTP API is
// never left unauthenticated.
type fileTokenSource struct{}

func (fileTokenSource) Get(dataDir string) (string, error) {
	p := filepath.Join(dataDir, tokenFileName)

	data, err := os.ReadFile(p)
	if err == nil {
		token := strings.TrimSpace(string(data))
		if token != "" {
			return token, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("reading token file %s: %w", p, err)
	}

	token := uuid.New().String()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(p, []byte(token+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing token file %s: %w", p, err)
	}
	return token, nil
}
