package transport

import "time"

// AttributeReading is the decoded result of one attribute read, carried from
// the poll loop to every publish sink and the web/tui surfaces. It is the
// shared currency between transport.Client and the mqtt/kafka/valkey
// consumers; none of those packages import cip or eip directly.
type AttributeReading struct {
	Device    string      // configured device name
	Path      string      // human-readable EPATH, e.g. "class=0x01,instance=1"
	Value     interface{} // decoded Go value (struct, string, number)
	Raw       []byte      // undecoded attribute bytes as returned by the device
	Timestamp time.Time
	Err       error // non-nil if the read failed; Value/Raw are zero in that case
}
