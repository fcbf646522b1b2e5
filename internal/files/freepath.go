package files

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// FreePath returns the first of path+suffix, path+suffix+".1" .. ".9" that
// does not exist, falling back to a UUID-tagged name.
func FreePath(path, suffix string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	base := path + suffix
	for i := 0; i < 10; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s.%d", base, i)
		}
		_, err := os.Lstat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return base + "." + id.String(), nil
}
