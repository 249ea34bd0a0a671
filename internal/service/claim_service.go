package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"claimbot/internal/model"
)

// ErrInvalidArguments is returned when a claim does not carry two integers.
var ErrInvalidArguments = errors.New("claim needs two integer coordinates")

const (
	// ClaimCommand is the command token handled by the bot.
	ClaimCommand = "claim"
	gotoCommand  = "/goto"
)

// UsageMessage is sent back when the claim arguments cannot be parsed.
var UsageMessage = html.EscapeString("Usage: /claim <x> <y>")

// UserStore is the part of the user repository a claim needs.
type UserStore interface {
	FindOrCreate(ctx context.Context, platformID, displayName string) (*model.User, error)
	Update(ctx context.Context, id uint, platformID, displayName string) (*model.User, error)
}

// ClaimRequest is one inbound /claim invocation.
type ClaimRequest struct {
	AuthorID   string
	AuthorName string
	Text       string
}

// Claim is a reconciled user together with the coordinates they claimed.
type Claim struct {
	User *model.User
	X    int
	Y    int
}

// Message renders the acknowledgement for the chat.
func (c Claim) Message() string {
	return FormatClaim(c.User.DisplayName, c.User.PlatformID, c.X, c.Y)
}

// ClaimService reconciles the claiming user and parses the coordinates.
type ClaimService struct {
	users UserStore
}

func NewClaimService(users UserStore) *ClaimService {
	return &ClaimService{users: users}
}

// Claim refreshes the author's user record and parses the claimed coordinates.
// The user is reconciled even when the arguments turn out to be invalid.
func (s *ClaimService) Claim(ctx context.Context, req ClaimRequest) (*Claim, error) {
	user, err := s.users.FindOrCreate(ctx, req.AuthorID, req.AuthorName)
	if err != nil {
		return nil, err
	}
	user, err = s.users.Update(ctx, user.ID, req.AuthorID, req.AuthorName)
	if err != nil {
		return nil, err
	}

	x, y, err := ParseCoordinates(req.Text)
	if err != nil {
		return nil, err
	}

	return &Claim{User: user, X: x, Y: y}, nil
}

// ParseCoordinates extracts the first two integers following the command token.
// Commas count as separators and tokens that are not 32-bit integers are skipped.
func ParseCoordinates(text string) (int, int, error) {
	args := strings.TrimSpace(stripCommand(text))
	args = strings.ReplaceAll(args, ",", " ")

	values := make([]int, 0, 2)
	for _, token := range strings.Split(args, " ") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		value, err := strconv.ParseInt(token, 10, 32)
		if err != nil {
			continue
		}
		values = append(values, int(value))
		if len(values) == 2 {
			return values[0], values[1], nil
		}
	}
	return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidArguments, len(values))
}

// stripCommand drops a leading "/command" (or "/command@bot") token.
func stripCommand(text string) string {
	text = strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(text, "/") {
		return text
	}
	end := strings.IndexAny(text, " \t\r\n")
	if end < 0 {
		return ""
	}
	return text[end:]
}

// FormatClaim builds the HTML acknowledgement. Both user-controlled values are
// escaped so they render as literal text.
func FormatClaim(displayName, platformID string, x, y int) string {
	return fmt.Sprintf("<b>%s</b> ( <b>%s</b> ) has claimed %s %d %d",
		escape(displayName), escape(platformID), gotoCommand, x, y)
}

func escape(s string) string {
	return html.EscapeString(s)
}
