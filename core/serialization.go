// Copyright 2025 Zava Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the domain types. Timestamps are
// encoded as unix microseconds, vectors as a varint length prefix
// followed by varint float32 elements.

// IDMUS serializes IDs.
var IDMUS = idMUS{}

// ProductMUS serializes Products.
var ProductMUS = productMUS{}

// CheckpointMUS serializes Checkpoints.
var CheckpointMUS = checkpointMUS{}

type idMUS struct{}

var _ mus.Serializer[ID] = idMUS{}

func (s idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (s idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (s idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (s idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type productMUS struct{}

var _ mus.Serializer[Product] = productMUS{}

func (s productMUS) Marshal(p Product, bs []byte) (n int) {
	n = IDMUS.Marshal(p.Id, bs)
	n += ord.String.Marshal(p.SKU, bs[n:])
	n += ord.String.Marshal(p.Name, bs[n:])
	n += ord.String.Marshal(p.Description, bs[n:])
	n += varint.Float64.Marshal(p.Price, bs[n:])
	n += varint.Int32.Marshal(p.StockLevel, bs[n:])
	n += marshalStrings(p.Categories, bs[n:])
	n += marshalVector(p.Vector, bs[n:])
	n += marshalTime(p.InsertedAt, bs[n:])
	n += marshalTime(p.UpdatedAt, bs[n:])
	return n
}

func (s productMUS) Unmarshal(bs []byte) (p Product, n int, err error) {
	var n1 int
	p.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	p.SKU, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Price, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.StockLevel, n1, err = varint.Int32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Categories, n1, err = unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Vector, n1, err = unmarshalVector(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s productMUS) Size(p Product) (size int) {
	size = IDMUS.Size(p.Id)
	size += ord.String.Size(p.SKU)
	size += ord.String.Size(p.Name)
	size += ord.String.Size(p.Description)
	size += varint.Float64.Size(p.Price)
	size += varint.Int32.Size(p.StockLevel)
	size += sizeStrings(p.Categories)
	size += sizeVector(p.Vector)
	size += sizeTime(p.InsertedAt)
	size += sizeTime(p.UpdatedAt)
	return size
}

func (s productMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type checkpointMUS struct{}

var _ mus.Serializer[Checkpoint] = checkpointMUS{}

func (s checkpointMUS) Marshal(c Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(c.Job, bs)
	n += IDMUS.Marshal(c.Position, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return n
}

func (s checkpointMUS) Unmarshal(bs []byte) (c Checkpoint, n int, err error) {
	var n1 int
	c.Job, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Position, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s checkpointMUS) Size(c Checkpoint) int {
	return ord.String.Size(c.Job) + IDMUS.Size(c.Position) + sizeTime(c.UpdatedAt)
}

func (s checkpointMUS) Skip(bs []byte) (n int, err error) {
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

func marshalStrings(vs []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(vs), bs)
	for _, v := range vs {
		n += ord.String.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (vs []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	// Every element occupies at least one byte, so a count beyond the
	// remaining data means the record is corrupt. Catching it here keeps
	// a bad length prefix from driving a huge allocation.
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrInvalidLengthPrefix
	}
	vs = make([]string, length)
	var n1 int
	for i := 0; i < length; i++ {
		vs[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return vs, n, nil
}

func sizeStrings(vs []string) (size int) {
	size = varint.Int.Size(len(vs))
	for _, v := range vs {
		size += ord.String.Size(v)
	}
	return size
}

func marshalVector(vec []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(vec), bs)
	for _, v := range vec {
		n += varint.Float32.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (vec []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrInvalidLengthPrefix
	}
	vec = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		vec[i], n1, err = varint.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return vec, n, nil
}

func sizeVector(vec []float32) (size int) {
	size = varint.Int.Size(len(vec))
	for _, v := range vec {
		size += varint.Float32.Size(v)
	}
	return size
}
