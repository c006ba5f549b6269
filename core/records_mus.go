package core

import (
	"math"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Serializers for the binary record format stored in badger. Timestamps are
// encoded as Unix microseconds.
var (
	IDMUS            = idMUS{}
	SongMUS          = songMUS{}
	SongEmbeddingMUS = songEmbeddingMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type songMUS struct{}

func songText(v *Song) []*string {
	return []*string{&v.Title, &v.Artist, &v.Album, &v.Genre, &v.Description, &v.SourceDate, &v.Lyrics}
}

func (songMUS) Marshal(v Song, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	for _, field := range songText(&v) {
		n += ord.String.Marshal(*field, bs[n:])
	}
	n += varint.Int.Marshal(v.ReleaseYear, bs[n:])
	n += marshalStrings(v.Tags, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (songMUS) Unmarshal(bs []byte) (v Song, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	for _, field := range songText(&v) {
		*field, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.ReleaseYear, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Tags, n1, err = unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (songMUS) Size(v Song) (size int) {
	size = IDMUS.Size(v.Id)
	for _, field := range songText(&v) {
		size += ord.String.Size(*field)
	}
	size += varint.Int.Size(v.ReleaseYear)
	size += sizeStrings(v.Tags)
	size += sizeTime(v.InsertedAt)
	return size + sizeTime(v.UpdatedAt)
}

func (s songMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type songEmbeddingMUS struct{}

func (songEmbeddingMUS) Marshal(v SongEmbedding, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.SongId, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += marshalMetadata(v.Metadata, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	return n
}

func (songEmbeddingMUS) Unmarshal(bs []byte) (v SongEmbedding, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.SongId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = unmarshalVector(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = unmarshalMetadata(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (songEmbeddingMUS) Size(v SongEmbedding) (size int) {
	size = IDMUS.Size(v.Id) + IDMUS.Size(v.SongId)
	size += ord.String.Size(v.Content)
	size += sizeVector(v.Vector)
	size += sizeMetadata(v.Metadata)
	return size + sizeTime(v.InsertedAt)
}

func (s songEmbeddingMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalStrings(values []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(values), bs)
	for _, s := range values {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (values []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length <= 0 {
		return nil, n, err
	}
	values = make([]string, length)
	for i := range values {
		var n1 int
		values[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return values, n, nil
}

func sizeStrings(values []string) (size int) {
	size = varint.Int.Size(len(values))
	for _, s := range values {
		size += ord.String.Size(s)
	}
	return size
}

func marshalVector(vector []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(vector), bs)
	for _, f := range vector {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (vector []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length <= 0 {
		return nil, n, err
	}
	vector = make([]float32, length)
	for i := range vector {
		bits, n1, err := varint.Uint32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		vector[i] = math.Float32frombits(bits)
	}
	return vector, n, nil
}

func sizeVector(vector []float32) (size int) {
	size = varint.Int.Size(len(vector))
	for _, f := range vector {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

// Metadata keys are written in sorted order so equal maps encode identically.
func marshalMetadata(metadata map[string]string, bs []byte) (n int) {
	keys := sortedKeys(metadata)
	n = varint.Int.Marshal(len(keys), bs)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(metadata[k], bs[n:])
	}
	return n
}

func unmarshalMetadata(bs []byte) (metadata map[string]string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length <= 0 {
		return nil, n, err
	}
	metadata = make(map[string]string, length)
	for range length {
		key, n1, err := ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		value, n1, err := ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		metadata[key] = value
	}
	return metadata, n, nil
}

func sizeMetadata(metadata map[string]string) (size int) {
	size = varint.Int.Size(len(metadata))
	for k, v := range metadata {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	return size
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
