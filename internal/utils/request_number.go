// internal/utils/request_number.go
package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const draftNumberPrefix = "RASCUNHO-"

// GenerateDraftNumber builds the temporary placeholder number a draft
// carries until submission.
func GenerateDraftNumber() string {
	id := uuid.New()
	return fmt.Sprintf("%s%s", draftNumberPrefix, strings.ToUpper(id.String()[:8]))
}

// GenerateRequestNumber builds the final year-stamped request number
// assigned at submission. Numbers are synthesized locally; no external
// numbering authority is involved.
func GenerateRequestNumber(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("AET-%d-%s", now.Year(), strings.ToUpper(id.String()[:6]))
}

// IsDraftNumber reports whether number is a draft placeholder.
func IsDraftNumber(number string) bool {
	return strings.HasPrefix(number, draftNumberPrefix)
}
