package models

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/mdobak/go-xerrors"
)

// Fixtures is the full content of a freshly seeded store.
type Fixtures struct {
	Users     []FixtureUser `json:"users"`
	Tags      []Tag         `json:"tags"`
	Articles  []Article     `json:"articles"`
	Comments  []Comment     `json:"comments"`
	Follows   []Follow      `json:"follows"`
	Tagged    []Tagged      `json:"tagged"`
	Favorites []Favorite    `json:"favorites"`
}

// FixtureUser carries the password, which User never serializes.
type FixtureUser struct {
	User
	Password string `json:"password"`
}

func (u FixtureUser) ToUser() User {
	user := u.User
	user.Password = u.Password
	return user
}

// LoadFixtures reads fixtures from a JSON file. Unknown fields are rejected
// so a misspelled key does not silently seed an empty table.
func LoadFixtures(path string) (*Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, xerrors.New(err)
	}
	defer file.Close()

	fixtures, err := DecodeFixtures(file)
	if err != nil {
		return nil, xerrors.Newf("fixtures %s: %w", path, err)
	}
	return fixtures, nil
}

func DecodeFixtures(r io.Reader) (*Fixtures, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var fixtures Fixtures
	if err := decoder.Decode(&fixtures); err != nil {
		var (
			syntaxError        *json.SyntaxError
			unmarshalTypeError *json.UnmarshalTypeError
		)

		switch {
		case errors.As(err, &syntaxError):
			return nil, xerrors.Newf("badly-formed JSON at (character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, xerrors.Newf("badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return nil, xerrors.Newf("incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return nil, xerrors.Newf("incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return nil, xerrors.Newf("must not be empty")
		default:
			return nil, xerrors.Newf("error decoding JSON: %w", err)
		}
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, xerrors.Newf("must contain only a single JSON value")
	}

	return &fixtures, nil
}
