package forge

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// URLs are the two forge endpoints the publisher talks to.
type URLs struct {
	ManageCraft     string
	APICrafterItems string
}

func DefaultURLs() URLs {
	return URLs{
		ManageCraft:     "https://forge.fantasygrounds.com/crafter/manage-craft",
		APICrafterItems: "https://forge.fantasygrounds.com/api/crafter/items",
	}
}

// Credentials authenticate a crafter account. PasswordMD5 is what the forum
// expects in its session cookie; the plain password is only typed into the
// login form.
type Credentials struct {
	UserID      string
	Username    string
	Password    string
	PasswordMD5 string
}

func NewCredentials(userID, username, password, passwordMD5 string) (Credentials, error) {
	c := Credentials{
		UserID:      strings.TrimSpace(userID),
		Username:    strings.TrimSpace(username),
		Password:    password,
		PasswordMD5: strings.TrimSpace(passwordMD5),
	}
	var missing []string
	if c.UserID == "" {
		missing = append(missing, "user id")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if c.PasswordMD5 == "" {
		missing = append(missing, "password hash")
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("incomplete credentials: missing %s", strings.Join(missing, ", "))
	}
	return c, nil
}

// MarshalLogObject logs the account by user id only.
func (c Credentials) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("user_id", c.UserID)
	return nil
}

// Item identifies one listing owned by the credentials' account.
type Item struct {
	Creds Credentials
	ID    string
}

func NewItem(creds Credentials, id string) (Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Item{}, fmt.Errorf("missing item id")
	}
	return Item{Creds: creds, ID: id}, nil
}

// ReleaseChannel is the visible text of an option in a build's channel select.
type ReleaseChannel string

const (
	ChannelLive     ReleaseChannel = "Live"
	ChannelTest     ReleaseChannel = "Test"
	ChannelDisabled ReleaseChannel = "Disabled"
)

func (c ReleaseChannel) String() string { return string(c) }

func ParseReleaseChannel(raw string) (ReleaseChannel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "live":
		return ChannelLive, nil
	case "test":
		return ChannelTest, nil
	case "disabled", "none":
		return ChannelDisabled, nil
	default:
		return "", fmt.Errorf("unknown release channel %q (want Live, Test or Disabled)", raw)
	}
}
