package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/term"

	"github.com/illarion/svault/internal/crypto"
)

// PasswordEnv names the environment variable checked before prompting.
const PasswordEnv = "SVAULT_PASSWORD"

var ErrMismatch = errors.New("passwords do not match")

// ErrNoTerminal is returned when a password is needed but stdin is not a
// terminal and SVAULT_PASSWORD is unset.
var ErrNoTerminal = errors.New("password required: stdin is not a terminal (set " + PasswordEnv + ")")

// readPassword is swapped out in tests.
var readPassword = func() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNoTerminal
	}
	return term.ReadPassword(fd)
}

// ReadPassword reads a password from the terminal without echoing. The prompt
// goes to stderr so stdout stays clean for decrypted output.
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	password, err := readPassword()
	fmt.Fprintln(os.Stderr) // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm() ([]byte, error) {
	password1, err := ReadPassword("Enter new password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := ReadPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, ErrMismatch
	}

	// Return a copy of the password
	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// PasswordFromEnv reads the password from SVAULT_PASSWORD. It returns nil
// when the variable is unset or empty.
func PasswordFromEnv() []byte {
	password := os.Getenv(PasswordEnv)
	if password == "" {
		return nil
	}
	// Return a copy to avoid issues when clearing the bytes
	result := make([]byte, len(password))
	copy(result, password)
	return result
}

// Confirm asks a yes/no question on stderr and reads the answer from in.
// Only "y" or "yes" (any case) count as yes.
func Confirm(in io.Reader, question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// MinScore is the lowest zxcvbn score (0-4) accepted without a warning.
const MinScore = 2

// Strength rates password on the zxcvbn 0-4 scale. userInputs are words the
// password should not be built from, such as the vault file name.
func Strength(password []byte, userInputs ...string) int {
	return zxcvbn.PasswordStrength(string(password), userInputs).Score
}

// WeakPasswordWarning returns a warning message for passwords scoring below MinScore,
// or "" when the password is strong enough. An empty password gets its own
// message since it is accepted but offers no protection.
func WeakPasswordWarning(password []byte, userInputs ...string) string {
	if len(password) == 0 {
		return "empty password, the vault is only obfuscated"
	}
	if score := Strength(password, userInputs...); score < MinScore {
		return fmt.Sprintf("weak password (strength %d/4)", score)
	}
	return ""
}
