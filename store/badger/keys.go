package badger

import (
	"fmt"
	"time"

	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/store"
	"github.com/mus-format/mus-go/varint"
)

// Key prefixes for different data types
const (
	resultPrefix = "freq"
	snapshotName = "snapshot"
	metaName     = "meta"
)

// meta is the summary stored next to a snapshot.
type meta struct {
	info     *store.SnapshotInfo
	checksum core.ID
}

// makeSnapshotKey generates the key holding the JSON snapshot.
func makeSnapshotKey() []byte {
	return []byte(fmt.Sprintf("%s:%s", resultPrefix, snapshotName))
}

// makeMetaKey generates the key holding the snapshot summary.
func makeMetaKey() []byte {
	return []byte(fmt.Sprintf("%s:%s", resultPrefix, metaName))
}

// metaMUS encodes meta as varints: saved-at micros, groups, frequency
// and snapshot checksum.
var metaMUS = metaSer{}

type metaSer struct{}

func (metaSer) Marshal(m meta, bs []byte) (n int) {
	n = varint.Int64.Marshal(m.info.SavedAt.UnixMicro(), bs)
	n += varint.Int.Marshal(m.info.Groups, bs[n:])
	n += varint.Int.Marshal(m.info.Frequency, bs[n:])
	n += varint.Uint64.Marshal(uint64(m.checksum), bs[n:])
	return
}

func (metaSer) Unmarshal(bs []byte) (m meta, n int, err error) {
	var (
		micros   int64
		groups   int
		freq     int
		checksum uint64
		n1       int
	)
	if micros, n1, err = varint.Int64.Unmarshal(bs); err != nil {
		return
	}
	n += n1
	if groups, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if freq, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if checksum, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	m = meta{
		info: &store.SnapshotInfo{
			SavedAt:   time.UnixMicro(micros).UTC(),
			Groups:    groups,
			Frequency: freq,
		},
		checksum: core.ID(checksum),
	}
	return
}

func (metaSer) Size(m meta) (size int) {
	size = varint.Int64.Size(m.info.SavedAt.UnixMicro())
	size += varint.Int.Size(m.info.Groups)
	size += varint.Int.Size(m.info.Frequency)
	return size + varint.Uint64.Size(uint64(m.checksum))
}

// marshalMeta serializes m to bytes.
func marshalMeta(m meta) []byte {
	buf := make([]byte, metaMUS.Size(m))
	metaMUS.Marshal(m, buf)
	return buf
}

// unmarshalMeta deserializes a meta record, rejecting trailing bytes.
func unmarshalMeta(data []byte) (meta, error) {
	m, n, err := metaMUS.Unmarshal(data)
	if err != nil {
		return meta{}, fmt.Errorf("%w: meta: %v", store.ErrSerializationFailed, err)
	}
	if n != len(data) {
		return meta{}, fmt.Errorf("%w: meta has %d trailing bytes", store.ErrSerializationFailed, len(data)-n)
	}
	return m, nil
}

// snapshotChecksum hashes the encoded snapshot.
func snapshotChecksum(data []byte) core.ID {
	return core.IDFromContent(string(data))
}
