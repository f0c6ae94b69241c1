// Package richtext is the sanitize/compile collaborator for rich-text block content.
// Sanitize strips unsafe markup; Compile expands Liquid merge tags against a fixed data set.
package richtext

import (
	"context"
	"regexp"
	"strings"

	"github.com/Notifuse/mailblocks/pkg/logger"
)

var liquidTagPattern = regexp.MustCompile(`\{\{.*?\}\}|\{%.*?%\}`)

// only quotes are restored inside tags; angle brackets stay escaped
var quoteUnescaper = strings.NewReplacer("&#34;", `"`, "&quot;", `"`, "&#39;", "'")

// Processor implements blocks.RichText
type Processor struct {
	sanitizer *Sanitizer
	engine    *SecureLiquidEngine
	data      map[string]interface{}
	logger    logger.Logger
}

// Option configures a Processor
type Option func(*Processor)

// WithMergeData sets the data merge tags are rendered against
func WithMergeData(data map[string]interface{}) Option {
	return func(p *Processor) {
		if data != nil {
			p.data = escapeData(data).(map[string]interface{})
		}
	}
}

// WithEngine replaces the default Liquid engine
func WithEngine(engine *SecureLiquidEngine) Option {
	return func(p *Processor) {
		p.engine = engine
	}
}

// WithLogger reports merge-tag failures
func WithLogger(l logger.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// NewProcessor creates a processor with the default sanitizer and engine
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		sanitizer: NewSanitizer(),
		engine:    NewSecureLiquidEngine(),
		data:      map[string]interface{}{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Sanitize(raw string) string {
	return p.sanitizer.Sanitize(raw)
}

// Compile renders merge tags. When rendering fails the sanitized input is returned as is.
func (p *Processor) Compile(sanitized string) string {
	if !strings.Contains(sanitized, "{{") && !strings.Contains(sanitized, "{%") {
		return sanitized
	}

	// the sanitizer serializes quotes inside text as entities, liquid needs them literal
	source := liquidTagPattern.ReplaceAllStringFunc(sanitized, quoteUnescaper.Replace)

	out, err := p.engine.Render(context.Background(), source, p.data)
	if err != nil {
		if p.logger != nil {
			p.logger.WithField("error", err.Error()).Warn("Failed to compile merge tags")
		}
		return sanitized
	}
	return out
}
