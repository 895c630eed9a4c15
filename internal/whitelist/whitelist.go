package whitelist

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Checker matches sender addresses and linked URLs against a list of
// trusted domains. Mail from a trusted domain bypasses classification
// entirely, which keeps internal newsletters from tripping the model.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a whitelist checker over the given trusted domains.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalized = append(normalized, domain)
		}
	}
	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trusted domain list", zap.Strings("domains", normalized))
	}
	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsSenderTrusted checks whether the sender address belongs to a trusted
// domain.
func (c *Checker) IsSenderTrusted(from string) bool {
	if len(c.domains) == 0 {
		return false
	}
	parts := strings.Split(from, "@")
	if len(parts) != 2 {
		return false
	}
	return c.matches(strings.ToLower(parts[1]))
}

// IsURLTrusted checks whether a URL found in the message body points at
// a trusted domain or one of its subdomains.
func (c *Checker) IsURLTrusted(raw string) bool {
	if len(c.domains) == 0 {
		return false
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	return c.matches(strings.ToLower(parsed.Hostname()))
}

func (c *Checker) matches(host string) bool {
	for _, trusted := range c.domains {
		if host == trusted || strings.HasSuffix(host, "."+trusted) {
			if c.logger != nil {
				c.logger.Debug("Domain is trusted", zap.String("domain", host))
			}
			return true
		}
	}
	return false
}
