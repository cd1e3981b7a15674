package misol

// PacketType classifies a byte buffer received from the sensor head.
type PacketType int

const (
	// WrongPacket is a buffer that failed sync, length, or primary checksum
	// validation and carries no usable data.
	WrongPacket PacketType = iota
	// BasicPacket is a validated 17-byte core reading.  Buffers longer than
	// 17 bytes whose pressure extension is truncated or fails its own
	// checksum also classify as BasicPacket.
	BasicPacket
	// BasicPacketWithPressure is a validated core reading whose 4-byte
	// pressure extension also validated.
	BasicPacketWithPressure
)

func (p PacketType) String() string {
	switch p {
	case BasicPacket:
		return "basic"
	case BasicPacketWithPressure:
		return "basic+pressure"
	default:
		return "wrong"
	}
}

// syncByte is the fixed first byte of every transmission.
const syncByte = 0x24

// ClassifyPacket validates a received byte buffer.  The primary 17 bytes are
// the self-contained core reading: a bad sync byte, short buffer, or failed
// primary checksum rejects the whole frame.  The pressure extension
// (bytes 17-20) is best-effort: if it is truncated or its checksum fails, the
// frame is still accepted as a basic packet and only the extension is dropped.
func ClassifyPacket(data []byte) PacketType {
	if len(data) < 17 {
		return WrongPacket
	}
	if data[0] != syncByte {
		return WrongPacket
	}

	// 8-bit truncating sum over bytes [0,16)
	var checksum uint8
	for _, b := range data[:16] {
		checksum += b
	}
	if checksum != data[16] {
		return WrongPacket
	}

	if len(data) > 17 {
		if len(data) < 21 {
			return BasicPacket
		}
		checksum = 0
		for _, b := range data[17:20] {
			checksum += b
		}
		if checksum != data[20] {
			return BasicPacket
		}
		return BasicPacketWithPressure
	}

	return BasicPacket
}
