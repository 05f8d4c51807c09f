package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type TLSConfig struct {
	CertPath string `yaml:"cert_path"`
	KeyPath  string `yaml:"key_path"`
}

type Config struct {
	ListenAddr     string        `yaml:"listen_addr"`
	UpstreamURL    string        `yaml:"upstream_url"`
	DefaultContext string        `yaml:"default_context"`
	DefaultBaseID  string        `yaml:"default_scl_id"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	SecureCookies  bool          `yaml:"secure_cookies"`
	LogLevel       string        `yaml:"log_level"`
	DatastarScript string        `yaml:"datastar_script"`
	TLS            TLSConfig     `yaml:"tls"`
	LDAP           LDAPConfig    `yaml:"ldap"`

	upstream *url.URL
}

const defaultDatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// loadConfig reads the optional YAML file at path, applies environment
// overrides and fills defaults. An empty path skips the file.
func loadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = "http://localhost:8080"
	}
	if cfg.DefaultContext == "" {
		cfg.DefaultContext = defaultContext
	}
	if cfg.DefaultBaseID == "" {
		cfg.DefaultBaseID = defaultBaseID
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = sessionTTL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DatastarScript == "" {
		cfg.DatastarScript = defaultDatastarScript
	}
	if cfg.LDAP.URL != "" {
		if cfg.LDAP.UserFilter == "" {
			cfg.LDAP.UserFilter = "(mail=%s)"
		}
		if cfg.LDAP.GroupAttribute == "" {
			cfg.LDAP.GroupAttribute = "memberOf"
		}
	}

	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("upstream url: %w", err)
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, errors.New("upstream url must be absolute")
	}
	cfg.upstream = upstream
	cfg.DefaultContext = normalizeContext(cfg.DefaultContext)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "RB_LISTEN_ADDR")
	setString(&cfg.UpstreamURL, "RB_UPSTREAM_URL")
	setString(&cfg.DefaultContext, "RB_CONTEXT")
	setString(&cfg.DefaultBaseID, "RB_SCL_ID")
	setString(&cfg.LogLevel, "RB_LOG_LEVEL")
	setString(&cfg.DatastarScript, "RB_DATASTAR_SCRIPT")
	setString(&cfg.TLS.CertPath, "RB_TLS_CERT")
	setString(&cfg.TLS.KeyPath, "RB_TLS_KEY")
	setDuration(&cfg.RequestTimeout, "RB_REQUEST_TIMEOUT")
	setDuration(&cfg.SessionTTL, "RB_SESSION_TTL")
	setBool(&cfg.SecureCookies, "RB_SECURE_COOKIES")

	setString(&cfg.LDAP.URL, "LDAP_URL")
	setString(&cfg.LDAP.BaseDN, "LDAP_BASE_DN")
	setString(&cfg.LDAP.UserFilter, "LDAP_USER_FILTER")
	setString(&cfg.LDAP.GroupAttribute, "LDAP_GROUP_ATTRIBUTE")
	setString(&cfg.LDAP.RequiredGroup, "LDAP_REQUIRED_GROUP")
	setString(&cfg.LDAP.UserMailDomain, "LDAP_USER_DOMAIN")
	setBool(&cfg.LDAP.StartTLS, "LDAP_STARTTLS")
	setBool(&cfg.LDAP.SkipTLSVerify, "LDAP_SKIP_TLS_VERIFY")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		*dst = b
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
		*dst = d
	}
}

// normalizeContext turns "om2m/", "/om2m" and " /om2m/ " into "/om2m".
func normalizeContext(ctx string) string {
	ctx = strings.Trim(strings.TrimSpace(ctx), "/")
	if ctx == "" {
		return ""
	}
	return "/" + ctx
}

func (c *Config) tlsEnabled() bool {
	return c.TLS.CertPath != "" && c.TLS.KeyPath != ""
}

func (c *Config) ldapEnabled() bool {
	return c.LDAP.URL != ""
}
