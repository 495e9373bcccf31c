package internal

import (
	"fmt"
	"strconv"
	"time"
)

var (
	commitVersion string = "v0.1"       // May be updated using build flags
	commitDate    string = "1700000000" // commitDate in Epoch seconds (may be overridden using build flags)
)

// GetVersion - get version and also commitDate if inserted via ldflags
func GetVersion() string {
	seconds, _ := strconv.Atoi(commitDate)
	if commitDate != "" {
		t := time.Unix(int64(seconds), 0)
		return fmt.Sprintf("%s, date: %s", commitVersion, t.Format("2006-01-02"))
	}
	return commitVersion
}
