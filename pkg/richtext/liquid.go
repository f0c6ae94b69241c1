package richtext

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/osteele/liquid"
)

// Limits for merge-tag rendering
const (
	DefaultRenderTimeout   = 5 * time.Second
	DefaultMaxTemplateSize = 100 * 1024 // 100KB
)

// SecureLiquidEngine wraps the Liquid engine with a render timeout and a size limit
type SecureLiquidEngine struct {
	timeout time.Duration
	maxSize int
	engine  *liquid.Engine
}

// NewSecureLiquidEngine creates an engine with default limits
func NewSecureLiquidEngine() *SecureLiquidEngine {
	return NewSecureLiquidEngineWithOptions(DefaultRenderTimeout, DefaultMaxTemplateSize)
}

// NewSecureLiquidEngineWithOptions creates an engine with custom limits
func NewSecureLiquidEngineWithOptions(timeout time.Duration, maxSize int) *SecureLiquidEngine {
	return &SecureLiquidEngine{
		timeout: timeout,
		maxSize: maxSize,
		engine:  liquid.NewEngine(),
	}
}

// Render renders content with data, giving up after the configured timeout
func (s *SecureLiquidEngine) Render(ctx context.Context, content string, data map[string]interface{}) (string, error) {
	if len(content) > s.maxSize {
		return "", fmt.Errorf("template size (%d bytes) exceeds maximum allowed size (%d bytes)", len(content), s.maxSize)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resultChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errorChan <- fmt.Errorf("panic during liquid rendering: %v", r)
			}
		}()

		rendered, err := s.engine.ParseAndRenderString(content, data)
		if err != nil {
			errorChan <- fmt.Errorf("liquid rendering failed: %w", err)
			return
		}
		resultChan <- rendered
	}()

	select {
	case result := <-resultChan:
		return result, nil
	case err := <-errorChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("liquid rendering timeout after %v", s.timeout)
	}
}

// escapeData HTML-escapes every string reachable from data so merge values cannot
// inject markup into an already sanitized fragment
func escapeData(data interface{}) interface{} {
	switch v := data.(type) {
	case string:
		return html.EscapeString(v)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[k] = escapeData(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = escapeData(item)
		}
		return out
	default:
		return v
	}
}
