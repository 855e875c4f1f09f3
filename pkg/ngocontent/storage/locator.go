// Package storage holds helpers shared by the blob store backends.
package storage

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ErrForeignLocator is returned when a locator was not issued by the backend
// asked to resolve it.
var ErrForeignLocator = errors.New("locator does not belong to this store")

// Locators converts between object keys and the public URLs handed to
// records.
type Locators struct {
	prefix string
}

// NewLocators validates baseURL and returns a converter rooted at it.
func NewLocators(baseURL string) (Locators, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return Locators{}, fmt.Errorf("invalid public url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Locators{}, fmt.Errorf("public url %q must be absolute", baseURL)
	}
	return Locators{prefix: strings.TrimRight(baseURL, "/") + "/"}, nil
}

// Locator returns the public URL for key.
func (l Locators) Locator(key string) string {
	return l.prefix + (&url.URL{Path: strings.TrimLeft(key, "/")}).EscapedPath()
}

// Key recovers the object key from a locator produced by Locator.
func (l Locators) Key(locator string) (string, error) {
	if !strings.HasPrefix(locator, l.prefix) {
		return "", fmt.Errorf("%w: %s", ErrForeignLocator, locator)
	}
	key, err := url.PathUnescape(strings.TrimPrefix(locator, l.prefix))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrForeignLocator, locator)
	}
	if key == "" || slices.Contains(strings.Split(key, "/"), "..") {
		return "", fmt.Errorf("%w: %s", ErrForeignLocator, locator)
	}
	return key, nil
}

// Prefix is the base every locator starts with, including the trailing slash.
func (l Locators) Prefix() string {
	return l.prefix
}
