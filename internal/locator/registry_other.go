//go:build !windows

package locator

func (r Registry) lookup() string {
	return ""
}
