package main

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/sirupsen/logrus"
)

var errNotInGroup = errors.New("user is not a member of the required group")

// ldapAuthenticate binds as the user and, when a required group is
// configured, checks the user's group attribute for it.
func ldapAuthenticate(cfg LDAPConfig, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return errors.New("missing credentials")
	}

	conn, err := dialLDAP(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	mail := userMail(username, cfg.UserMailDomain)
	if err := conn.Bind(mail, password); err != nil {
		return fmt.Errorf("ldap bind failed: %w", err)
	}

	if cfg.RequiredGroup == "" {
		return nil
	}

	searchReq := ldap.NewSearchRequest(
		cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases, 1, 0, false,
		fmt.Sprintf(cfg.UserFilter, ldap.EscapeFilter(mail)),
		[]string{cfg.GroupAttribute},
		nil,
	)
	sr, err := conn.Search(searchReq)
	if err != nil {
		return fmt.Errorf("ldap search: %w", err)
	}
	if len(sr.Entries) == 0 {
		return fmt.Errorf("user %s not found", mail)
	}

	groups := sr.Entries[0].GetAttributeValues(cfg.GroupAttribute)
	log.WithFields(logrus.Fields{"user": username, "groups": groups}).Debug("ldap groups")
	if !hasGroup(groups, cfg.RequiredGroup) {
		return errNotInGroup
	}
	return nil
}

func userMail(username, domain string) string {
	username = strings.TrimSpace(username)
	if strings.Contains(username, "@") || domain == "" {
		return username
	}
	if !strings.HasPrefix(domain, "@") {
		domain = "@" + domain
	}
	return username + domain
}

func hasGroup(groups []string, required string) bool {
	for _, g := range groups {
		if strings.EqualFold(groupNameFromDN(g), required) || strings.EqualFold(g, required) {
			return true
		}
	}
	return false
}

func dialLDAP(cfg LDAPConfig) (*ldap.Conn, error) {
	// #nosec G402 -- skip TLS verification if configured
	conn, err := ldap.DialURL(cfg.URL, ldap.DialWithTLSConfig(&tls.Config{InsecureSkipVerify: cfg.SkipTLSVerify}))
	if err != nil {
		return nil, err
	}

	if cfg.StartTLS && strings.HasPrefix(cfg.URL, "ldap://") {
		// #nosec G402 -- skip TLS verification if configured
		if err := conn.StartTLS(&tls.Config{InsecureSkipVerify: cfg.SkipTLSVerify}); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

func groupNameFromDN(dn string) string {
	first, _, _ := strings.Cut(dn, ",")
	first = strings.TrimSpace(first)
	firstLower := strings.ToLower(first)

	switch {
	case strings.HasPrefix(firstLower, "cn="):
		return first[3:]
	case strings.HasPrefix(firstLower, "ou="):
		return first[3:]
	default:
		return dn
	}
}
