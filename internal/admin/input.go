package admin

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/writerlab/internal/common"
	"golang.org/x/term"
)

// readPassword is replaced in tests so they never touch a terminal.
var readPassword = term.ReadPassword

var ErrPasswordMismatch = errors.New("passwords do not match")

// promptPassword reads a password twice without echo and returns it once
// both entries agree.
func promptPassword(w io.Writer) (string, error) {
	first, err := readSecret(w, "Password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	second, err := readSecret(w, "Repeat password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		return "", ErrPasswordMismatch
	}
	return string(first), nil
}

func readSecret(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}
