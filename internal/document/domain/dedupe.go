package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// DedupeStatus is the outcome of a dedup check for one key.
type DedupeStatus int

const (
	// DedupeFresh means the key has never been committed, success or failure.
	DedupeFresh DedupeStatus = iota
	// DedupeExists means a result was already committed for this key.
	DedupeExists
	// DedupePermanentlyFailed means a previous run recorded the key as
	// unextractable; it is never retried without an explicit reset.
	DedupePermanentlyFailed
)

// DedupeKey derives the stable identity of one (message, attachment,
// page-range) unit. Pure and deterministic: identical inputs yield the
// identical key across process restarts, which is what makes at-most-once
// processing possible across repeated batch runs.
func DedupeKey(sourceEmailID, attachmentFilename string, pageRangeStart int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s_%d", sourceEmailID, attachmentFilename, pageRangeStart)))
	return hex.EncodeToString(sum[:])
}
