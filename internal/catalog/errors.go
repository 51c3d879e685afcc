package catalog

import "fmt"

// CatalogFormatError reports a malformed catalog document.
type CatalogFormatError struct {
	Field  string
	Reason string
	Err    error
}

func (e *CatalogFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("补丁配置格式错误 (%s): %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("补丁配置格式错误 (%s): %s", e.Field, e.Reason)
}

func (e *CatalogFormatError) Unwrap() error {
	return e.Err
}
