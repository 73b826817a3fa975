package uploads

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tus/tusd/v2/pkg/handler"
)

// DefaultNaming builds a collision-resistant storage key from the declared
// filename: a random id plus the original extension. Uniqueness rests on the
// id generator alone; existing keys are not consulted.
func DefaultNaming(hook handler.HookEvent) string {
	ext := strings.ToLower(filepath.Ext(hook.Upload.MetaData["filename"]))
	return uuid.New().String() + ext
}
