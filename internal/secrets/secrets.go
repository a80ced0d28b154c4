package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups your app’s secrets in the OS keychain.
	KeyringService = "jobtrack"
)

// Credentials are a job-board login pair.
type Credentials struct {
	Email    string
	Password string
}

func boardAccount(userID int64, board string) string {
	return fmt.Sprintf("jobtrack:board:%d:%s", userID, board)
}

// GetBoardCredentials reads a user's stored login for a board.
// Stored as "email\npassword" under one keychain entry.
func GetBoardCredentials(userID int64, board string) (Credentials, error) {
	raw, err := keyring.Get(KeyringService, boardAccount(userID, board))
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials for %s not found (set them via the API): %w", board, err)
	}
	email, password, ok := strings.Cut(raw, "\n")
	if !ok || strings.TrimSpace(email) == "" {
		return Credentials{}, errors.New("stored credentials are malformed")
	}
	return Credentials{Email: email, Password: password}, nil
}

func SetBoardCredentials(userID int64, board string, creds Credentials) error {
	if strings.TrimSpace(creds.Email) == "" {
		return errors.New("email is empty")
	}
	if strings.TrimSpace(creds.Password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, boardAccount(userID, board), creds.Email+"\n"+creds.Password)
}

func DeleteBoardCredentials(userID int64, board string) error {
	return keyring.Delete(KeyringService, boardAccount(userID, board))
}
