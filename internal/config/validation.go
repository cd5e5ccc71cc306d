package config

import (
	"net/url"
	"time"

	"git.home.luguber.info/inful/kiln/internal/foundation"
	"git.home.luguber.info/inful/kiln/internal/markup"
)

// Validate reports every problem in cfg as one validation error.
func Validate(cfg *Config) error {
	chain := foundation.NewValidatorChain[*Config](
		validateEngine,
		validateURL,
		validateMarkdown,
		validateActivityPub,
		func(c *Config) foundation.ValidationResult {
			return foundation.Check(c.GalleryWorkers > 0, "gallery_workers", "range", "must be positive")
		},
	)
	return chain.Validate(cfg).ToError("invalid configuration")
}

func validateEngine(c *Config) foundation.ValidationResult {
	return foundation.OneOf("engine", EngineName(c.Engine), EngineLiquid, EngineGoTemplate)
}

func validateURL(c *Config) foundation.ValidationResult {
	if c.URL == "" {
		return foundation.Valid()
	}
	u, err := url.Parse(c.URL)
	return foundation.Check(err == nil && u.IsAbs() && u.Host != "", "url", "format", "must be an absolute URL")
}

func validateMarkdown(c *Config) foundation.ValidationResult {
	res := foundation.Valid()
	for _, ext := range c.Markdown.Extensions {
		res = res.Combine(foundation.Check(markup.KnownExtension(ext), "markdown.extensions", "unknown",
			"unknown extension "+ext))
	}
	return res
}

func validateActivityPub(c *Config) foundation.ValidationResult {
	ap := c.ActivityPub
	if !ap.Enabled() {
		return foundation.Valid()
	}
	res := foundation.NotBlank("actpub_username", ap.Username).
		Combine(foundation.NotBlank("url", c.URL)).
		Combine(foundation.Check(ap.PostsPerOutboxPage >= 0, "actpub_posts_per_outbox_page", "range", "must not be negative"))
	if ap.Created != "" {
		_, err := time.Parse(time.RFC3339, ap.Created)
		res = res.Combine(foundation.Check(err == nil, "actpub_created", "format", "must be an RFC 3339 timestamp"))
	}
	return res
}

// MarkdownOptions converts the markdown section for the markup engine.
func (c *Config) MarkdownOptions() markup.Options {
	return markup.Options{
		Extensions:          c.Markdown.Extensions,
		ExternalLinksNewTab: c.ExternalLinksNewTab(),
		HardWraps:           c.Markdown.HardWraps,
		Safe:                c.Markdown.Safe,
	}
}
