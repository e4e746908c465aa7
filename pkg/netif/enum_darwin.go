//go:build darwin

package netif

import (
	"encoding/binary"
	"unsafe"

	"github.com/irctrakz/systatd/pkg/core"
	"golang.org/x/net/route"
	"golang.org/x/sys/unix"
)

// routeEnumerator reads the NET_RT_IFLIST sysctl for names and address
// families, and NET_RT_IFLIST2 for the 64-bit if_data64 byte counters.
// RTM_NEWADDR messages are network-address records without statistics.
type routeEnumerator struct{}

// NewSystemEnumerator returns the enumerator for the running platform.
func NewSystemEnumerator() core.Enumerator { return routeEnumerator{} }

func (routeEnumerator) Enumerate() ([]core.InterfaceRecord, error) {
	rib, err := route.FetchRIB(unix.AF_UNSPEC, route.RIBTypeInterface, 0)
	if err != nil {
		return nil, &core.EnumerationError{Op: "sysctl", Err: err}
	}
	msgs, err := route.ParseRIB(route.RIBTypeInterface, rib)
	if err != nil {
		return nil, &core.EnumerationError{Op: "parse", Err: err}
	}
	rib2, err := route.FetchRIB(unix.AF_UNSPEC, unix.NET_RT_IFLIST2, 0)
	if err != nil {
		return nil, &core.EnumerationError{Op: "sysctl", Err: err}
	}
	stats := ifData64ByIndex(rib2)

	names := make(map[int]string)
	recs := make([]core.InterfaceRecord, 0, len(msgs))
	for _, m := range msgs {
		switch m := m.(type) {
		case *route.InterfaceMessage:
			names[m.Index] = m.Name
			rec := core.InterfaceRecord{Name: m.Name, Index: m.Index, Family: core.FamilyOther}
			if _, ok := linkAddr(m.Addrs); ok {
				rec.Family = core.FamilyLinkLayer
			}
			if s, ok := stats[m.Index]; ok {
				rec.Stats = &s
			}
			recs = append(recs, rec)
		case *route.InterfaceAddrMessage:
			recs = append(recs, core.InterfaceRecord{Index: m.Index, Family: core.FamilyOther})
		}
	}
	for i := range recs {
		if recs[i].Name == "" {
			recs[i].Name = names[recs[i].Index]
		}
	}
	return recs, nil
}

func linkAddr(addrs []route.Addr) (*route.LinkAddr, bool) {
	if len(addrs) <= unix.RTAX_IFP {
		return nil, false
	}
	la, ok := addrs[unix.RTAX_IFP].(*route.LinkAddr)
	return la, ok
}

// ifData64ByIndex walks a NET_RT_IFLIST2 dump and collects the if_data64
// byte counters of every RTM_IFINFO2 message keyed by interface index.
func ifData64ByIndex(b []byte) map[int]core.LinkStats {
	out := make(map[int]core.LinkStats)
	for len(b) >= 4 {
		l := int(binary.NativeEndian.Uint16(b[0:2]))
		if l < 4 || l > len(b) {
			break
		}
		if b[3] == unix.RTM_IFINFO2 && l >= unix.SizeofIfMsghdr2 {
			var hdr unix.IfMsghdr2
			copy(unsafe.Slice((*byte)(unsafe.Pointer(&hdr)), unix.SizeofIfMsghdr2), b[:unix.SizeofIfMsghdr2])
			out[int(hdr.Index)] = core.LinkStats{
				TxBytes: hdr.Data.Obytes,
				RxBytes: hdr.Data.Ibytes,
			}
		}
		b = b[l:]
	}
	return out
}
