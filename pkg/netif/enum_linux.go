//go:build linux

package netif

import (
	"encoding/binary"
	"errors"
	"os"
	"sync/atomic"
	"syscall"

	"github.com/irctrakz/systatd/pkg/core"
	"golang.org/x/sys/unix"
)

// Offsets of the byte counters inside struct rtnl_link_stats64 and the
// legacy 32-bit struct rtnl_link_stats.
const (
	stats64RxBytesOff = 16
	stats64TxBytesOff = 24
	stats64MinLen     = 32

	stats32RxBytesOff = 8
	stats32TxBytesOff = 12
	stats32MinLen     = 16
)

const (
	recvBufSize = 64 * 1024
	nlaTypeMask = ^uint16(unix.NLA_F_NESTED | unix.NLA_F_NET_BYTEORDER)
)

var errMalformedDump = errors.New("malformed netlink message")

var nlSeq atomic.Uint32

// netlinkEnumerator dumps the kernel link table over rtnetlink. Every
// RTM_NEWLINK message is a link-layer record.
type netlinkEnumerator struct{}

// NewSystemEnumerator returns the enumerator for the running platform.
func NewSystemEnumerator() core.Enumerator { return netlinkEnumerator{} }

func (netlinkEnumerator) Enumerate() ([]core.InterfaceRecord, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_ROUTE)
	if err != nil {
		return nil, &core.EnumerationError{Op: "socket", Err: os.NewSyscallError("socket", err)}
	}
	defer unix.Close(fd)

	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		return nil, &core.EnumerationError{Op: "bind", Err: os.NewSyscallError("bind", err)}
	}
	lsa, err := unix.Getsockname(fd)
	if err != nil {
		return nil, &core.EnumerationError{Op: "getsockname", Err: os.NewSyscallError("getsockname", err)}
	}
	local, ok := lsa.(*unix.SockaddrNetlink)
	if !ok {
		return nil, &core.EnumerationError{Op: "getsockname", Err: syscall.EINVAL}
	}

	seq := nlSeq.Add(1)
	kernel := &unix.SockaddrNetlink{Family: unix.AF_NETLINK}
	if err := unix.Sendto(fd, newLinkDumpRequest(seq), 0, kernel); err != nil {
		return nil, &core.EnumerationError{Op: "sendto", Err: os.NewSyscallError("sendto", err)}
	}

	buf := make([]byte, recvBufSize)
	var recs []core.InterfaceRecord
	for {
		n, from, err := unix.Recvfrom(fd, buf, 0)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, &core.EnumerationError{Op: "recvfrom", Err: os.NewSyscallError("recvfrom", err)}
		}
		if src, ok := from.(*unix.SockaddrNetlink); !ok || src.Pid != 0 {
			continue
		}
		var done bool
		recs, done, err = parseLinkDump(buf[:n], seq, local.Pid, recs)
		if err != nil {
			return nil, &core.EnumerationError{Op: "netlink", Err: err}
		}
		if done {
			return recs, nil
		}
	}
}

// newLinkDumpRequest builds an RTM_GETLINK dump request for all families.
func newLinkDumpRequest(seq uint32) []byte {
	b := make([]byte, unix.NLMSG_HDRLEN+unix.SizeofIfInfomsg)
	ne := binary.NativeEndian
	ne.PutUint32(b[0:4], uint32(len(b)))
	ne.PutUint16(b[4:6], unix.RTM_GETLINK)
	ne.PutUint16(b[6:8], unix.NLM_F_REQUEST|unix.NLM_F_DUMP)
	ne.PutUint32(b[8:12], seq)
	return b
}

// parseLinkDump appends the records found in one datagram of a link dump
// to recs. done reports that NLMSG_DONE was seen. Messages belonging to
// another request are ignored.
func parseLinkDump(b []byte, seq, pid uint32, recs []core.InterfaceRecord) ([]core.InterfaceRecord, bool, error) {
	ne := binary.NativeEndian
	for len(b) >= unix.NLMSG_HDRLEN {
		l := int(ne.Uint32(b[0:4]))
		typ := ne.Uint16(b[4:6])
		mseq := ne.Uint32(b[8:12])
		mpid := ne.Uint32(b[12:16])
		if l < unix.NLMSG_HDRLEN || l > len(b) {
			return recs, false, errMalformedDump
		}
		data := b[unix.NLMSG_HDRLEN:l]
		b = b[min(nlmAlign(l), len(b)):]

		if mseq != seq || mpid != pid {
			continue
		}
		switch typ {
		case unix.NLMSG_DONE:
			return recs, true, nil
		case unix.NLMSG_ERROR:
			if len(data) < 4 {
				return recs, false, errMalformedDump
			}
			code := int32(ne.Uint32(data[0:4]))
			if code == 0 {
				continue
			}
			return recs, false, syscall.Errno(-code)
		case unix.RTM_NEWLINK:
			if rec, ok := parseLinkMessage(data); ok {
				recs = append(recs, rec)
			}
		}
	}
	return recs, false, nil
}

// parseLinkMessage decodes an ifinfomsg and its attributes.
func parseLinkMessage(data []byte) (core.InterfaceRecord, bool) {
	ne := binary.NativeEndian
	rec := core.InterfaceRecord{Family: core.FamilyLinkLayer}
	if len(data) < unix.SizeofIfInfomsg {
		return rec, false
	}
	rec.Index = int(int32(ne.Uint32(data[4:8])))

	var stats64, stats32 []byte
	attrs := data[unix.SizeofIfInfomsg:]
	for len(attrs) >= unix.SizeofRtAttr {
		alen := int(ne.Uint16(attrs[0:2]))
		atyp := ne.Uint16(attrs[2:4]) & nlaTypeMask
		if alen < unix.SizeofRtAttr || alen > len(attrs) {
			break
		}
		val := attrs[unix.SizeofRtAttr:alen]
		switch atyp {
		case unix.IFLA_IFNAME:
			rec.Name = cstring(val)
		case unix.IFLA_STATS64:
			stats64 = val
		case unix.IFLA_STATS:
			stats32 = val
		}
		attrs = attrs[min(rtaAlign(alen), len(attrs)):]
	}

	switch {
	case len(stats64) >= stats64MinLen:
		rec.Stats = &core.LinkStats{
			TxBytes: ne.Uint64(stats64[stats64TxBytesOff:]),
			RxBytes: ne.Uint64(stats64[stats64RxBytesOff:]),
		}
	case len(stats32) >= stats32MinLen:
		rec.Stats = &core.LinkStats{
			TxBytes: uint64(ne.Uint32(stats32[stats32TxBytesOff:])),
			RxBytes: uint64(ne.Uint32(stats32[stats32RxBytesOff:])),
		}
	}
	return rec, rec.Name != ""
}

func nlmAlign(n int) int { return (n + unix.NLMSG_ALIGNTO - 1) &^ (unix.NLMSG_ALIGNTO - 1) }

func rtaAlign(n int) int { return (n + unix.RTA_ALIGNTO - 1) &^ (unix.RTA_ALIGNTO - 1) }

func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
