// Package qr decodes scanned pass payloads into claims.
//
// Two encodings are accepted and told apart by content:
//
//   - legacy "<entry_id>:<pass_type>:<signature>";
//   - a human-readable multi-line pass carrying a marker line and the labeled
//     fields Name, ID Type, ID Number and Session.
//
// Human-readable passes do not carry an entry id. Their ID number becomes the
// claim signature and EntryID is left zero so the caller resolves the entry by
// signature. The pass type is inferred from the session text by an ordered
// list of SessionRule values; a session that matches no rule yields
// models.PassUnknown.
package qr

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultMarker identifies a human-readable entry pass.
const DefaultMarker = "SWAVLAMBAN 2025 ENTRY PASS"

// ErrInvalidFormat is returned for any payload that is not a valid pass.
var ErrInvalidFormat = errors.New("invalid QR code format")

const (
	labelName     = "Name:"
	labelIDType   = "ID Type:"
	labelIDNumber = "ID Number:"
	labelSession  = "Session:"
)

// Claim is the decoded, not yet validated content of a QR code.
type Claim struct {
	EntryID   int64
	PassType  string
	Signature string

	// Name and IDType are only present in human-readable passes.
	Name   string
	IDType string
}

// Parser decodes payloads. The zero value is not usable; use NewParser or
// the package-level Parse.
type Parser struct {
	Marker string
	Rules  []SessionRule
}

// NewParser returns a parser with the default marker and session rules.
func NewParser() *Parser {
	return &Parser{Marker: DefaultMarker, Rules: DefaultSessionRules()}
}

var defaultParser = NewParser()

// Parse decodes raw with the default parser.
func Parse(raw string) (Claim, error) {
	return defaultParser.Parse(raw)
}

// Parse decodes raw into a Claim. Every failure, including a recovered
// panic, is reported as ErrInvalidFormat.
func (p *Parser) Parse(raw string) (c Claim, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = Claim{}, ErrInvalidFormat
		}
	}()

	if p.Marker != "" && strings.Contains(raw, p.Marker) {
		return p.parseReadable(raw)
	}
	return parseLegacy(raw)
}

func (p *Parser) parseReadable(raw string) (Claim, error) {
	var c Claim
	var session string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, labelName):
			c.Name = strings.TrimSpace(strings.TrimPrefix(line, labelName))
		case strings.HasPrefix(line, labelIDType):
			c.IDType = strings.TrimSpace(strings.TrimPrefix(line, labelIDType))
		case strings.HasPrefix(line, labelIDNumber):
			c.Signature = normalizeIDNumber(strings.TrimPrefix(line, labelIDNumber))
		case strings.HasPrefix(line, labelSession):
			session = strings.TrimSpace(strings.TrimPrefix(line, labelSession))
		}
	}

	if c.Name == "" || c.Signature == "" {
		return Claim{}, ErrInvalidFormat
	}

	c.PassType = InferPassType(p.Rules, session)
	return c, nil
}

// normalizeIDNumber strips the separators printed on passes ("1234-5678 9012").
func normalizeIDNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

func parseLegacy(raw string) (Claim, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return Claim{}, ErrInvalidFormat
	}

	if !isDigits(parts[0]) {
		return Claim{}, ErrInvalidFormat
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Claim{}, ErrInvalidFormat
	}

	return Claim{EntryID: id, PassType: parts[1], Signature: parts[2]}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
