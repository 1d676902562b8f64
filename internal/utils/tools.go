package utils

import (
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// FileExtension returns the lowercased extension of a filename without the
// leading dot, or "" when there is none.
func FileExtension(filename string) string {
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(filename)))
	return strings.TrimPrefix(ext, ".")
}

// IsImageExtension classifies an extension the way the blob store expects:
// image uploads and raw uploads live in different namespaces.
func IsImageExtension(ext string) bool {
	return imageExtensions[strings.ToLower(ext)]
}

// ExtensionAllowed checks an extension against the configured allow-list.
func ExtensionAllowed(ext string, allowed []string) bool {
	ext = strings.ToLower(ext)
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}
