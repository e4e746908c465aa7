// Package netif resolves live byte counters of host network interfaces.
package netif

import (
	"errors"
	"fmt"

	"github.com/irctrakz/systatd/pkg/core"
	"github.com/irctrakz/systatd/pkg/logging"
	"github.com/sirupsen/logrus"
)

// Resolver looks up interface counters through an Enumerator. It keeps no
// state between calls: every lookup enumerates the host afresh.
type Resolver struct {
	enum core.Enumerator
}

// NewResolver returns a Resolver backed by enum. A nil enum selects the
// platform enumerator.
func NewResolver(enum core.Enumerator) *Resolver {
	if enum == nil {
		enum = NewSystemEnumerator()
	}
	return &Resolver{enum: enum}
}

// TxBytes returns the transmitted-byte counter of the named interface.
func (r *Resolver) TxBytes(name string) (uint64, error) {
	return r.Lookup(core.InterfaceQuery{Name: name, Metric: core.MetricTxBytes})
}

// Lookup returns the counter selected by q. It fails with an error
// wrapping core.ErrNotFound when no link-layer record carries q.Name, and
// with *core.EnumerationError when the interface table cannot be read.
func (r *Resolver) Lookup(q core.InterfaceQuery) (uint64, error) {
	recs, err := r.enum.Enumerate()
	if err != nil {
		var ee *core.EnumerationError
		if !errors.As(err, &ee) {
			ee = &core.EnumerationError{Err: err}
		}
		logging.Critf(logrus.Fields{
			"interface": q.Name,
			"errno":     int(ee.Errno()),
		}, "netif: %v", ee)
		return 0, ee
	}

	for i := range recs {
		rec := &recs[i]
		if rec.Family != core.FamilyLinkLayer || rec.Stats == nil {
			continue
		}
		if rec.Name != q.Name {
			continue
		}
		v := rec.Stats.Counter(q.Metric)
		logging.Debugf("netif: %s %s=%d (index %d)", rec.Name, q.Metric, v, rec.Index)
		return v, nil
	}
	return 0, fmt.Errorf("%w: %q", core.ErrNotFound, q.Name)
}
