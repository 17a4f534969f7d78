package watcher

import (
	"os"
	"time"
)

func fileInfo(path string) (os.FileInfo, error) { return os.Stat(path) }

func msToDuration(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }
