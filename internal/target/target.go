// Package target models the things pingraph measures: hosts pinged through the
// OS ping binary, or shell commands timed once per tick.
package target

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// Family is the address-family preference used when resolving hostnames.
type Family int

const (
	// FamilyAny accepts whatever the resolver returns first.
	FamilyAny Family = iota
	// FamilyV4 restricts resolution to IPv4 addresses.
	FamilyV4
	// FamilyV6 restricts resolution to IPv6 addresses.
	FamilyV6
)

func (f Family) String() string {
	switch f {
	case FamilyV4:
		return "ipv4"
	case FamilyV6:
		return "ipv6"
	default:
		return "any"
	}
}

// Kind says how a target is executed.
type Kind int

const (
	// KindHost is pinged with the OS ping binary.
	KindHost Kind = iota
	// KindCommand is run through a shell once per tick and timed.
	KindCommand
)

// Target identifies one measured host or command. Targets are immutable once
// measurement starts.
type Target struct {
	// Index is the display order, starting at 0.
	Index int
	// Label is what the legend shows.
	Label string
	// Input is the string the user supplied.
	Input string
	// Addr is the address handed to ping. It equals Input for commands and
	// for hosts that were not resolved.
	Addr string
	Kind Kind
}

// IsCommand reports whether the target runs a shell command.
func (t Target) IsCommand() bool {
	return t.Kind == KindCommand
}

// Parse builds targets from user input, preserving order.
func Parse(inputs []string, commands bool) []Target {
	out := make([]Target, 0, len(inputs))
	for _, in := range inputs {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		kind := KindHost
		if commands {
			kind = KindCommand
		}
		out = append(out, Target{
			Index: len(out),
			Label: in,
			Input: in,
			Addr:  in,
			Kind:  kind,
		})
	}
	return out
}

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Resolve returns the first address for host matching the family preference.
// IP literals are returned unchanged when they match the family.
func Resolve(ctx context.Context, r Resolver, host string, family Family) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if !familyMatches(ip, family) {
			return "", fmt.Errorf("%s is not an %s address", host, family)
		}
		return ip.String(), nil
	}

	addrs, err := r.LookupIPAddr(ctx, host)
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if familyMatches(a.IP, family) {
			return a.IP.String(), nil
		}
	}
	return "", fmt.Errorf("no %s address found for %s", family, host)
}

// ResolveAll resolves every host target in place order. Commands pass through.
// Targets that fail to resolve keep their input as Addr and are reported in
// the returned map keyed by target index, so each failure stays scoped to
// its own target.
func ResolveAll(ctx context.Context, r Resolver, targets []Target, family Family) ([]Target, map[int]error) {
	out := make([]Target, len(targets))
	failed := make(map[int]error)
	for i, t := range targets {
		out[i] = t
		if t.IsCommand() {
			continue
		}
		addr, err := Resolve(ctx, r, t.Input, family)
		if err != nil {
			failed[t.Index] = err
			continue
		}
		out[i].Addr = addr
		if addr != t.Input {
			out[i].Label = fmt.Sprintf("%s (%s)", t.Input, addr)
		}
	}
	return out, failed
}

// IsIPv6 reports whether addr is an IPv6 literal.
func IsIPv6(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && ip.To4() == nil
}

func familyMatches(ip net.IP, family Family) bool {
	switch family {
	case FamilyV4:
		return ip.To4() != nil
	case FamilyV6:
		return ip.To4() == nil
	default:
		return true
	}
}

// Labels returns the display labels in target order.
func Labels(targets []Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.Label
	}
	return out
}
