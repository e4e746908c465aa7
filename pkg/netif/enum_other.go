//go:build !linux && !darwin

package netif

import "github.com/irctrakz/systatd/pkg/core"

type unsupportedEnumerator struct{}

// NewSystemEnumerator returns the enumerator for the running platform.
func NewSystemEnumerator() core.Enumerator { return unsupportedEnumerator{} }

func (unsupportedEnumerator) Enumerate() ([]core.InterfaceRecord, error) {
	return nil, &core.EnumerationError{Op: "enumerate", Err: core.ErrUnsupportedPlatform}
}
