package journal

import (
	"encoding/binary"
	"hash/crc32"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Event --------------------

// Event describes one value reaching a zero count.
type Event struct {
	Seq        uint64
	Type       string
	Label      string
	ReleasedAt time.Time
}

// EncodeEvent serializes the event body as a protobuf Struct. Seq lives
// in the record key and is not part of the payload.
func EncodeEvent(ev Event) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"type":        ev.Type,
		"label":       ev.Label,
		"released_at": ev.ReleasedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, errors.Wrap(err, "build event struct")
	}
	b, err := proto.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshal event")
	}
	return b, nil
}

func DecodeEvent(seq uint64, b []byte) (Event, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return Event{}, errors.Wrap(err, "unmarshal event")
	}
	f := s.GetFields()
	ev := Event{
		Seq:   seq,
		Type:  f["type"].GetStringValue(),
		Label: f["label"].GetStringValue(),
	}
	if ts := f["released_at"].GetStringValue(); ts != "" {
		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Event{}, errors.Wrap(err, "parse released_at")
		}
		ev.ReleasedAt = at
	}
	return ev, nil
}

// -------------------- Record --------------------

type Record struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// Event decodes the record payload.
func (r Record) Event() (Event, error) {
	return DecodeEvent(r.Seq, r.Payload)
}

var ErrCorrupt = errors.New("journal: corrupt record")

const headerLen = 1 + 4 + 8 + 4

// binary encoding: [state:1][retries:4][lastAttempt:8][crc:4][payload...]
// The CRC covers the payload only; the header is rewritten on every
// state change.
func encodeRecord(r Record) []byte {
	buf := make([]byte, headerLen+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	binary.BigEndian.PutUint32(buf[13:17], crc32.ChecksumIEEE(r.Payload))
	copy(buf[headerLen:], r.Payload)
	return buf
}

func decodeRecord(seq uint64, b []byte) (Record, error) {
	if len(b) < headerLen {
		return Record{}, errors.Wrapf(ErrCorrupt, "seq %d: length %d", seq, len(b))
	}
	if crc32.ChecksumIEEE(b[headerLen:]) != binary.BigEndian.Uint32(b[13:17]) {
		return Record{}, errors.Wrapf(ErrCorrupt, "seq %d: checksum mismatch", seq)
	}
	return Record{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte(nil), b[headerLen:]...),
	}, nil
}
