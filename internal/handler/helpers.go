package handler

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// pathParam returns a decoded, trimmed path parameter.
func pathParam(c *fiber.Ctx, key string) (string, error) {
	raw := strings.TrimSpace(c.Params(key))
	if raw == "" {
		return "", errors.New("missing " + key)
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw, nil
	}

	return strings.TrimSpace(decoded), nil
}
