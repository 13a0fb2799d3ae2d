// Package theme holds the light/dark colour scheme switch.
package theme

import (
	"fmt"
	"strings"
)

// Attribute is the root attribute a scheme is published under.
const Attribute = "data-theme"

// Scheme is one of exactly two colour schemes.
type Scheme int

const (
	Light Scheme = iota
	Dark
)

// String returns the attribute value for the scheme.
func (s Scheme) String() string {
	if s == Dark {
		return "dark"
	}
	return "light"
}

// Next returns the other scheme.
func Next(s Scheme) Scheme {
	if s == Light {
		return Dark
	}
	return Light
}

// ParseScheme accepts "light" or "dark", case-insensitively.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	default:
		return Light, fmt.Errorf("unknown theme %q (want light or dark)", s)
	}
}

// AttributeSetter is anything that can carry the scheme attribute.
type AttributeSetter interface {
	SetAttribute(name, value string)
}

// Apply publishes s on target.
func Apply(target AttributeSetter, s Scheme) {
	target.SetAttribute(Attribute, s.String())
}
