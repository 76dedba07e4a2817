package inherit

import "github.com/Retype15/axes/pkg/cachefile"

func readRecord(path string, rec *cacheRecord) error {
	return cachefile.Read(path, rec)
}
