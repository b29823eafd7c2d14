//go:build !unix && !windows

package install

func isCrossDevice(err error) bool {
	return false
}
