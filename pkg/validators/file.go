package validators

import (
	"errors"
	"mime/multipart"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrNoFile       = errors.New("no file provided")
	ErrNoFileName   = errors.New("no file selected")
	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// FileValidator checks the multipart part before anything is sent to storage
// and returns the sanitized file name. The sanitized name may be empty when
// nothing of the original name survives.
func FileValidator(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNoFile
	}

	if fh.Filename == "" {
		return "", ErrNoFileName
	}

	return SanitizeFilename(fh.Filename), nil
}

// SanitizeFilename reduces name to a flat ASCII file name that is safe to use
// on a remote file system. Slashes and whitespace are turned into underscores
// and every other unsafe character, backslashes included, is dropped.
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, name)

	name = strings.ReplaceAll(name, "/", " ")
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFileChars.ReplaceAllString(name, "")

	return strings.Trim(name, "._")
}

// FileExtension returns everything after the last dot of a sanitized name,
// keeping the case as given
func FileExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}

	return name[i+1:]
}
