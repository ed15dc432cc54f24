//go:build !linux

package walker

import "os"

func adviseWillNeed(f *os.File) {}
