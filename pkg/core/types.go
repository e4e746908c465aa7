package core

import "fmt"

// Metric selects which interface counter a resolver-mode location reports.
type Metric int

const (
	// MetricTxBytes is the cumulative transmitted-byte counter.
	MetricTxBytes Metric = iota
	// MetricRxBytes is the cumulative received-byte counter.
	MetricRxBytes
)

// ParseMetric maps a directive literal to a Metric.
func ParseMetric(s string) (Metric, bool) {
	switch s {
	case "tx_bytes":
		return MetricTxBytes, true
	case "rx_bytes":
		return MetricRxBytes, true
	}
	return 0, false
}

func (m Metric) String() string {
	switch m {
	case MetricTxBytes:
		return "tx_bytes"
	case MetricRxBytes:
		return "rx_bytes"
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// InterfaceQuery names the interface and counter a location reports.
// It is built once from configuration and never mutated.
type InterfaceQuery struct {
	Name   string
	Metric Metric
}

// AddressFamily tags an enumerated interface record.
type AddressFamily int

const (
	// FamilyOther covers network-address records (inet, inet6, ...).
	FamilyOther AddressFamily = iota
	// FamilyLinkLayer marks records carrying interface-level statistics.
	FamilyLinkLayer
)

func (f AddressFamily) String() string {
	if f == FamilyLinkLayer {
		return "link"
	}
	return "other"
}

// LinkStats holds the byte counters attached to a link-layer record.
type LinkStats struct {
	TxBytes uint64
	RxBytes uint64
}

// Counter returns the value selected by m.
func (s LinkStats) Counter(m Metric) uint64 {
	if m == MetricRxBytes {
		return s.RxBytes
	}
	return s.TxBytes
}

// InterfaceRecord is one entry of a host interface enumeration.
// Stats is nil when the platform reported no statistics for the entry.
type InterfaceRecord struct {
	Name   string
	Index  int
	Family AddressFamily
	Stats  *LinkStats
}

// Enumerator lists the host's network interfaces. Each call performs a
// fresh read of the operating system's interface table and releases any
// handle it acquired before returning.
type Enumerator interface {
	Enumerate() ([]InterfaceRecord, error)
}

// Format selects the content type of the static responder.
type Format int

const (
	FormatPlain Format = iota
	FormatXML
)

// ParseFormat maps a systat_format value to a Format.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "plain":
		return FormatPlain, true
	case "xml":
		return FormatXML, true
	}
	return 0, false
}

func (f Format) String() string {
	if f == FormatXML {
		return "xml"
	}
	return "plain"
}

// Content types written by the handlers.
const (
	ContentTypePlain = "text/plain"
	ContentTypeXML   = "text/xml; charset=utf-8"
)

// ContentType returns the header value for f.
func (f Format) ContentType() string {
	if f == FormatXML {
		return ContentTypeXML
	}
	return ContentTypePlain
}

// ResponseDocument is the payload a handler hands back for transmission.
type ResponseDocument struct {
	ContentType string
	Body        []byte
}
