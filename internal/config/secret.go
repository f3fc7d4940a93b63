package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingCredential 表示启动时无法获得补全服务凭证，属于致命错误。
var ErrMissingCredential = errors.New("missing completion credential")

// LoadCredential 返回补全服务的 API Key。显式传入的 key 优先，否则从本地密钥文件读取。
func LoadCredential(explicit, secretFile string) (string, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}

	if strings.TrimSpace(secretFile) == "" {
		return "", fmt.Errorf("%w: no COMPLETION_API_KEY and no SECRET_FILE", ErrMissingCredential)
	}

	raw, err := os.ReadFile(secretFile)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrMissingCredential, secretFile, err)
	}

	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingCredential, secretFile)
	}
	if strings.ContainsAny(key, " \t\r\n") {
		return "", fmt.Errorf("%w: %s contains whitespace", ErrMissingCredential, secretFile)
	}
	return key, nil
}
