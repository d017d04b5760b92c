// Package rcon is the whitelist control client. Every call opens a fresh
// RCON connection, sends exactly one command and disconnects; there is no
// retry or backoff. Failures are logged and surface to callers as an empty
// response, never as an error — the control protocol is advisory.
package rcon

import (
	"log"
	"strings"

	"wlbot/backend/internal/config"

	"github.com/gorcon/rcon"
)

// Client issues admission-list commands against the game server.
type Client interface {
	// Send executes one raw command and returns the raw response, or ""
	// when the connection or the command failed.
	Send(cmd string) string
	// AddToWhitelist adds a nickname to the standard or the informal
	// (easywhitelist) list depending on the license text.
	AddToWhitelist(nick, license string) string
	// RemoveFromWhitelist issues both remove commands unconditionally,
	// regardless of which list the nickname is actually on.
	RemoveFromWhitelist(nick string) (string, string)
	// Whitelist returns the raw "whitelist list" response.
	Whitelist() string
}

type client struct {
	addr     string
	password string
}

// NewClient builds a Client for the given RCON endpoint.
func NewClient(addr, password string) Client {
	return &client{addr: addr, password: password}
}

func (c *client) Send(cmd string) string {
	conn, err := rcon.Dial(c.addr, c.password)
	if err != nil {
		log.Printf("ERROR: RCON connect to %s failed: %v", c.addr, err)
		return ""
	}
	defer conn.Close()

	resp, err := conn.Execute(cmd)
	if err != nil {
		log.Printf("ERROR: RCON command %q failed: %v", cmd, err)
		return ""
	}
	return resp
}

// IsPirate reports whether a license line selects the easywhitelist
// sub-protocol (an unlicensed client).
func IsPirate(license string) bool {
	return strings.Contains(strings.ToLower(license), config.PirateMarker)
}

func (c *client) AddToWhitelist(nick, license string) string {
	if IsPirate(license) {
		return c.Send("easywhitelist add " + nick)
	}
	return c.Send("whitelist add " + nick)
}

func (c *client) RemoveFromWhitelist(nick string) (string, string) {
	std := c.Send("whitelist remove " + nick)
	easy := c.Send("easywhitelist remove " + nick)
	return std, easy
}

func (c *client) Whitelist() string {
	return c.Send("whitelist list")
}
