package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/zavalabs/prodsearch/core"
)

// Key prefixes for different data types. The category index shares the
// product prefix so a single prefix scan covers both, with index keys
// skipped explicitly.
const (
	productPrefix         = "prodrec"
	productCategoryPrefix = "prodrecc"
	checkpointPrefix      = "chkpt"
)

// makeProductKey generates a key for a product by ID.
func makeProductKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", productPrefix, id))
}

// makeCategoryKey generates a composite key for the category index.
// Format: prefix:category:id
func makeCategoryKey(category string, id core.ID) []byte {
	prefix := productCategoryPrefix + ":"
	totalSize := len(prefix) + len(category) + 1 + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, []byte(prefix))
	offset += copy(buf[offset:], []byte(category))
	buf[offset] = ':'
	offset++
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialCategoryKey generates a partial key for category queries.
// Format: prefix:category:
func makePartialCategoryKey(category string) []byte {
	prefix := productCategoryPrefix + ":"
	totalSize := len(prefix) + len(category) + 1
	buf := make([]byte, totalSize)
	offset := copy(buf, []byte(prefix))
	offset += copy(buf[offset:], []byte(category))
	buf[offset] = ':'
	return buf
}

// categoryFromIndexKey extracts the category name from a category index key.
func categoryFromIndexKey(key []byte) string {
	prefixLen := len(productCategoryPrefix) + 1
	if len(key) < prefixLen+1+8 {
		return ""
	}
	return string(key[prefixLen : len(key)-9])
}

// makeCheckpointKey generates a key for job checkpoints.
func makeCheckpointKey(job string) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, job))
}
